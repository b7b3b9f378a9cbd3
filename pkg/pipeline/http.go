package pipeline

import (
	"bufio"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/wire"
)

// stageHTTPAdapt implements the HTTP-Adapt stage: it
// parses one HTTP/1.x request, resolves an identity (Basic credentials
// for a `~/`-prefixed URI, otherwise the anonymous HTTP identity),
// dispatches the mapped command through a locally-scoped Execution, and
// writes a single HTTP response. The connection always terminates
// after one request.
func stageHTTPAdapt(s *Session) (stageFunc, error) {
	req, err := wire.ParseRequest(bufio.NewReader(s.br))
	if err != nil {
		writeHTTPUnhandled(s, err)
		return nil, nil
	}

	user, status, wwwAuthenticate, ok := s.resolveHTTPIdentity(req)
	if !ok {
		headers := map[string]string{}
		if wwwAuthenticate != "" {
			headers["WWW-Authenticate"] = wwwAuthenticate
		}
		_ = wire.WriteResponse(s.rw, wire.Response{Status: status, Headers: headers, Body: ""})
		return nil, nil
	}

	command, err := req.Command()
	if err != nil {
		writeHTTPUnhandled(s, err)
		return nil, nil
	}

	resp := s.buildExecutionResponse(user, command)
	_ = wire.WriteResponse(s.rw, wire.Response{Status: 200, Body: resp.ToJSON()})
	return nil, nil
}

// resolveHTTPIdentity implements the HTTP adapter's credential mapping: a
// request whose URI carries no `~/` prefix is always anonymous; one
// that does requires a valid `Authorization: Basic` header. ok is false
// when the adapter must reject the request outright (status and, for a
// missing/invalid header, a WWW-Authenticate challenge are then set).
func (s *Session) resolveHTTPIdentity(req *wire.Request) (user auth.User, status int, wwwAuthenticate string, ok bool) {
	if !wire.RequiresAuth(req.URI) {
		return s.anonymousHTTP, 200, "", true
	}

	login, password, hasAuth := req.BasicAuth()
	if !hasAuth {
		return auth.Nil, 401, `Basic realm="Secure Command Execution"`, false
	}

	data := document.New()
	data.Set("login", document.NewString(login))
	data.Set("password", document.NewString(password))

	resolved, authErr := s.registry.Authenticate("local", "bcrypt", data)
	if authErr != nil {
		return auth.Nil, 401, `Basic realm="Secure Command Execution"`, false
	}
	if resolved.ID == s.anonymousHTTP.ID {
		return auth.Nil, 403, "", false
	}
	return resolved, 200, "", true
}

// writeHTTPUnhandled reports an unhandled internal error with a 500
// response whose body is the error's message verbatim, not a JSON
// envelope.
func writeHTTPUnhandled(s *Session, err error) {
	_ = wire.WriteResponse(s.rw, wire.Response{Status: 500, Body: err.Error()})
}
