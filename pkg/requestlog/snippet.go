package requestlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// DefaultSnippetLimit is the number of characters of a pretty-printed body
// kept in the log line.
const DefaultSnippetLimit = 500

const ellipsis = "..."

var errEmptyBody = errors.New("unexpected end of JSON input")

// prettySnippet indents raw with two spaces, keeping key order, shows escaped
// printable characters literally and cuts the result to limit characters
// followed by "...".
func prettySnippet(raw []byte, limit int) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", errEmptyBody
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	out, err := unescapeStrings(buf.Bytes())
	if err != nil {
		return "", err
	}
	return truncate(string(out), limit), nil
}

// unescapeStrings re-encodes every string literal of valid JSON src that
// contains a \u escape, so "\u00fc" and "\u003c" read as "ü" and "<".
// Control characters stay escaped.
func unescapeStrings(src []byte) ([]byte, error) {
	if !bytes.Contains(src, []byte(`\u`)) {
		return src, nil
	}

	var out, lit bytes.Buffer
	out.Grow(len(src))
	enc := json.NewEncoder(&lit)
	enc.SetEscapeHTML(false)

	for i := 0; i < len(src); {
		if src[i] != '"' {
			out.WriteByte(src[i])
			i++
			continue
		}

		end := i + 1
		for end < len(src) && src[end] != '"' {
			if src[end] == '\\' {
				end++
			}
			end++
		}
		end = min(end+1, len(src))
		token := src[i:end]
		i = end

		if !bytes.Contains(token, []byte(`\u`)) {
			out.Write(token)
			continue
		}
		var s string
		if err := json.Unmarshal(token, &s); err != nil {
			return nil, err
		}
		lit.Reset()
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimSuffix(lit.Bytes(), []byte("\n")))
	}
	return out.Bytes(), nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}
