// Package pipeline implements the per-connection stage state machine
//: Pre, Authentication, HTTP-Adapt and Execution, each
// advancing to a successor stage or terminating the connection. The
// driver owns exactly one connection; it has no knowledge of how that
// connection was accepted or pooled (see package server for that).
package pipeline
