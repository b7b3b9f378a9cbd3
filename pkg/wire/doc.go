// Package wire implements the two transports the connection pipeline
// speaks: the native length-prefixed document framing and
// the HTTP/1.x adapter that translates a request into a
// native command document and a pretty-JSON response body.
package wire
