package pipeline

import (
	"bufio"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/uid"
	"github.com/logjamd/logjamd/pkg/wire"
)

// echoExecutor is a minimal Executor stand-in: it reports the command
// string back as its single output line, so tests can assert on the
// pipeline's framing without depending on a scripting runtime.
type echoExecutor struct {
	lastUser auth.User
	failWith error
}

func (e *echoExecutor) Execute(user auth.User, command string) (ExecutionResult, error) {
	e.lastUser = user
	if e.failWith != nil {
		return ExecutionResult{}, e.failWith
	}
	return ExecutionResult{Output: []string{command}}, nil
}

func newTestRegistry(t *testing.T) (*auth.Registry, uid.ID) {
	t.Helper()
	reg := auth.NewRegistry()
	local := auth.NewLocalProvider()
	reg.Register(local)
	userID := uid.New()
	require.NoError(t, local.SetCredential("admin", userID, "1!aA2@Bb"))
	return reg, userID
}

func TestAuthenticationSuccessTransitionsToExecution(t *testing.T) {
	reg, userID := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	_, err := client.Write([]byte("BSON"))
	require.NoError(t, err)

	creds := document.New()
	creds.Set("method", document.NewString("bcrypt"))
	creds.Set("provider", document.NewString("local"))
	credData := document.New()
	credData.Set("login", document.NewString("admin"))
	credData.Set("password", document.NewString("1!aA2@Bb"))
	creds.Set("data", document.NewDocumentNode(credData))
	require.NoError(t, wire.WriteFrame(client, creds))

	resp, err := wire.ReadFrame(client)
	require.NoError(t, err)
	require.True(t, resp.Get("success").AsBool())
	require.Equal(t, "Authentication", resp.Get("stage").AsString())

	cmd := document.New()
	cmd.Set("command", document.NewString("print('hi')"))
	require.NoError(t, wire.WriteFrame(client, cmd))

	execResp, err := wire.ReadFrame(client)
	require.NoError(t, err)
	require.True(t, execResp.Get("success").AsBool())
	require.Equal(t, "Execution", execResp.Get("stage").AsString())
	require.Equal(t, "print('hi')", execResp.Get("output/0").AsString())
	require.Equal(t, userID, exec.lastUser.ID)

	client.Close()
	require.NoError(t, <-done)
}

func TestAuthenticationFailureRetriesThenTerminatesAfterThree(t *testing.T) {
	reg, _ := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	_, err := client.Write([]byte("BSON"))
	require.NoError(t, err)

	badCreds := document.New()
	badCreds.Set("method", document.NewString("bcrypt"))
	badCreds.Set("provider", document.NewString("local"))
	data := document.New()
	data.Set("login", document.NewString("admin"))
	data.Set("password", document.NewString("wrong"))
	badCreds.Set("data", document.NewDocumentNode(data))

	for i := 0; i < 3; i++ {
		require.NoError(t, wire.WriteFrame(client, badCreds))
		resp, err := wire.ReadFrame(client)
		require.NoError(t, err)
		require.False(t, resp.Get("success").AsBool())
		require.Equal(t, "Authentication", resp.Get("stage").AsString())
		require.Equal(t, "Authentication failed.", resp.Get("message").AsString())
	}

	require.NoError(t, <-done)
}

func TestUnknownPrefixWritesErrorAndTerminates(t *testing.T) {
	reg, _ := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	_, err := client.Write([]byte("rtmp "))
	require.NoError(t, err)

	resp, err := wire.ReadFrame(client)
	require.NoError(t, err)
	require.False(t, resp.Get("success").AsBool())
	require.Equal(t, "Pre-connection", resp.Get("stage").AsString())
	require.Equal(t, "Unknown mode: rtmp", resp.Get("message").AsString())

	require.NoError(t, <-done)
}

func TestHTTPGetAnonymousExecutesCommand(t *testing.T) {
	reg, _ := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	req := "GET /print('Hello,%20world') HTTP/1.0\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	br := bufio.NewReader(client)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "200 OK")

	require.Equal(t, auth.AnonymousHTTP.ID, exec.lastUser.ID)
	require.NoError(t, <-done)
}

func TestHTTPPostAnonymousFormBody(t *testing.T) {
	reg, _ := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	body := "cmd=print('Hello,+world')"
	req := "POST / HTTP/1.0\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	br := bufio.NewReader(client)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "200 OK")

	require.NoError(t, <-done)
}

func TestHTTPRequiresAuthMissingHeaderReturns401(t *testing.T) {
	reg, _ := newTestRegistry(t)
	exec := &echoExecutor{}
	client, server := net.Pipe()
	defer client.Close()

	s := New(server, reg, exec, auth.AnonymousHTTP)
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	req := "GET /~/secure HTTP/1.1\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	br := bufio.NewReader(client)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "401")

	require.NoError(t, <-done)
}
