// Package requestlog is the timing and access-log stage of the HTTP pipeline.
//
// Every response passing through Middleware carries an X-Process-Time header
// holding the elapsed seconds with six decimals. Responses declared as
// application/json are held in memory until the handler returns: the bytes are
// indented for the log line (truncated to DefaultSnippetLimit characters plus
// "...") and then sent to the client exactly as the handler produced them. A
// body that is not valid JSON is dropped, the client receives an empty body
// with the original status and headers, and the log line records the parse
// error. Other content types are streamed through untouched.
package requestlog
