package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/resultset"
	"github.com/logjamd/logjamd/pkg/wire"
)

// ResultEntry is one top-level result-set a script surfaced during a
// command's execution, shaped to populate the `results` array of an
// Execution response.
type ResultEntry struct {
	Cmd   string
	Costs []resultset.CostEntry
	Items []*document.Document
}

// ExecutionResult is what a script dispatch produces: the lines it
// printed, in emission order, and every top-level result-set it
// surfaced via send_set.
type ExecutionResult struct {
	Output  []string
	Results []ResultEntry
}

// Executor dispatches one command string, already authenticated as
// user, to the scripting runtime. The
// pipeline package does not depend on any scripting language directly;
// package hostapi supplies the concrete implementation.
type Executor interface {
	Execute(user auth.User, command string) (ExecutionResult, error)
}

// Session drives one connection through the pipeline's stages. The
// zero value is not usable; construct with New.
type Session struct {
	rw       io.ReadWriter
	br       *bufio.Reader
	registry *auth.Registry
	executor Executor

	anonymousHTTP auth.User

	user      auth.User
	authFails int
}

// New returns a Session ready to drive rw through the pipeline. reg
// resolves credentials documents (Authentication stage); exec
// dispatches command documents (Execution stage); anonymousHTTP is the
// identity bound to HTTP requests that carry no `~/` prefix.
func New(rw io.ReadWriter, reg *auth.Registry, exec Executor, anonymousHTTP auth.User) *Session {
	return &Session{
		rw:            rw,
		br:            bufio.NewReaderSize(rw, 4096),
		registry:      reg,
		executor:      exec,
		anonymousHTTP: anonymousHTTP,
	}
}

// stageFunc advances the session one step, returning the next stage to
// run or nil to terminate the connection.
type stageFunc func(*Session) (stageFunc, error)

// Run drives the session from the Pre stage until a stage terminates
// the connection or an unrecoverable error occurs. A clean termination
// (unknown prefix, an HTTP request answered, three authentication
// failures, or the peer closing the stream) is reported as a nil error;
// a malformed native frame is returned as an error wrapping
// wire.ErrProtocolError.
func (s *Session) Run() error {
	stage := stagePre
	for stage != nil {
		next, err := stage(s)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrTooManyFailures) {
				return nil
			}
			return err
		}
		stage = next
	}
	return nil
}

// stagePre reads up to 4 bytes (or until whitespace) and classifies the
// connection's protocol. A literal `BSON` token marks the
// native binary protocol and is consumed as a handshake sentinel, since
// it is not itself part of the following length-prefixed document. An
// HTTP method token is left unconsumed, since HTTP-Adapt needs to parse
// the full request line starting at the method. Anything else writes a
// single Pre-connection error frame and terminates.
func stagePre(s *Session) (stageFunc, error) {
	prefix, err := wire.SniffPrefix(s.br, 4)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(prefix) {
	case "BSON":
		if _, err := s.br.Discard(len(prefix)); err != nil {
			return nil, err
		}
		return stageAuthentication, nil
	case "GET", "POST", "HEAD", "PUT":
		return stageHTTPAdapt, nil
	default:
		resp := document.New()
		resp.Set("success", document.NewBool(false))
		resp.Set("stage", document.NewString("Pre-connection"))
		resp.Set("message", document.NewString(fmt.Sprintf("Unknown mode: %s", prefix)))
		if werr := wire.WriteFrame(s.rw, resp); werr != nil {
			return nil, werr
		}
		return nil, nil
	}
}

// stageAuthentication implements the native Authentication stage:
// reads one `{method, provider, data}` frame, resolves it
// against the registry, and either transitions to Execution or writes a
// retriable failure and stays in Authentication. Three consecutive
// failures terminate the connection.
func stageAuthentication(s *Session) (stageFunc, error) {
	req, err := wire.ReadFrame(s.br)
	if err != nil {
		return nil, err
	}

	method := req.Get("method").AsString()
	provider := req.Get("provider").AsString()
	data := req.Get("data").AsDocument()

	user, authErr := s.registry.Authenticate(provider, method, data)
	if authErr != nil {
		s.authFails++
		resp := document.New()
		resp.Set("success", document.NewBool(false))
		resp.Set("stage", document.NewString("Authentication"))
		resp.Set("message", document.NewString("Authentication failed."))
		if werr := wire.WriteFrame(s.rw, resp); werr != nil {
			return nil, werr
		}
		if s.authFails >= maxAuthFailures {
			return nil, ErrTooManyFailures
		}
		return stageAuthentication, nil
	}

	s.user = user
	s.authFails = 0
	resp := document.New()
	resp.Set("success", document.NewBool(true))
	resp.Set("stage", document.NewString("Authentication"))
	if werr := wire.WriteFrame(s.rw, resp); werr != nil {
		return nil, werr
	}
	return stageExecution, nil
}

// stageExecution implements the Execution stage:
// reads one `{command, language}` frame, dispatches it to the
// executor, and writes a full command response. A dispatch error
// (script error, not-permitted, etc.) is reported in the response and
// the connection stays in Execution; a malformed incoming document is
// reported the same way; a wire-level protocol error terminates
// it.
func stageExecution(s *Session) (stageFunc, error) {
	req, err := wire.ReadFrame(s.br)
	if err != nil {
		if errors.Is(err, wire.ErrProtocolError) {
			return nil, err
		}
		return writeExecutionError(s, err)
	}

	command := req.Get("command").AsString()
	resp := s.buildExecutionResponse(s.user, command)

	if werr := wire.WriteFrame(s.rw, resp); werr != nil {
		return nil, werr
	}
	return stageExecution, nil
}

// buildExecutionResponse dispatches command as user and assembles the
// command response document, shared by the native
// Execution stage and the HTTP adapter's locally-scoped one.
func (s *Session) buildExecutionResponse(user auth.User, command string) *document.Document {
	start := time.Now()
	result, execErr := s.executor.Execute(user, command)
	elapsed := time.Since(start)

	resp := document.New()
	resp.Set("stage", document.NewString("Execution"))
	resp.Set("time/elapsed_usecs", document.NewInt64(elapsed.Microseconds()))
	for _, line := range result.Output {
		resp.Push("output", document.NewString(line))
	}
	for _, entry := range result.Results {
		resp.Push("results", document.NewDocumentNode(resultEntryDocument(entry)))
	}

	if execErr != nil {
		resp.Set("success", document.NewBool(false))
		resp.Set("message", document.NewString(execErr.Error()))
	} else {
		resp.Set("success", document.NewBool(true))
	}
	return resp
}

// writeExecutionError reports a non-protocol read failure (a malformed
// document arrived correctly framed but failed to decode) without
// terminating the connection, and stays in Execution for the next
// attempt.
func writeExecutionError(s *Session, readErr error) (stageFunc, error) {
	resp := document.New()
	resp.Set("success", document.NewBool(false))
	resp.Set("stage", document.NewString("Execution"))
	resp.Set("message", document.NewString(readErr.Error()))
	if werr := wire.WriteFrame(s.rw, resp); werr != nil {
		return nil, werr
	}
	return stageExecution, nil
}

func resultEntryDocument(entry ResultEntry) *document.Document {
	d := document.New()
	d.Set("cmd", document.NewString(entry.Cmd))
	for _, c := range entry.Costs {
		cd := document.New()
		cd.Set("command", document.NewString(c.Command))
		cd.Set("elapsed_usecs", document.NewInt64(c.Elapsed.Microseconds()))
		cd.Set("pre_size", document.NewInt32(int32(c.PreSize)))
		cd.Set("post_size", document.NewInt32(int32(c.PostSize)))
		d.Push("costs", document.NewDocumentNode(cd))
	}
	for _, item := range entry.Items {
		d.Push("items", document.NewDocumentNode(item))
	}
	return d
}
