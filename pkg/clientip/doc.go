// Package clientip resolves the client address recorded in request logs.
//
// Host only looks at the transport address and substitutes "unknown" so log
// lines always carry a value.
package clientip
