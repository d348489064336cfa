package session

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return New(zap.NewNop().Sugar(), Config{OutputDir: t.TempDir()})
}

func TestExpectLoginSuccess(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"\r\nUsername: ",
		"Password:",
		"\r\nsw1>",
	}}
	s := newTestSession(t)

	require.NoError(t, s.expectLogin(ft, "admin", "secret", "sw1"))
	require.Equal(t, []string{"admin", "secret"}, ft.sent)
}

func TestExpectLoginAuthFailure(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"\r\nUsername: ",
		"Password:",
		"\r\nUsername: ",
	}}
	s := newTestSession(t)

	err := s.expectLogin(ft, "admin", "wrong", "sw1")
	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "sw1", cerr.Host)
}

func TestHopLoginSSH(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"Password:",
		"\r\nsw1#",
	}}
	s := newTestSession(t)

	require.NoError(t, s.hopLogin(ft, []string{"$"}, "sw1", "admin", "secret", false))
	require.Equal(t, []string{"secret"}, ft.sent)
}

func TestHopLoginTelnetAsksUsername(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"\r\nUsername:",
		"Password:",
		"\r\nsw1>",
	}}
	s := newTestSession(t)

	require.NoError(t, s.hopLogin(ft, []string{"$"}, "sw1", "admin", "secret", true))
	require.Equal(t, []string{"admin", "secret"}, ft.sent)
}

func TestHopLoginRejectedByTarget(t *testing.T) {
	// the jump-box prompt coming back means the hop never reached a login
	ft := &fakeTransport{replies: []string{
		"ssh: connect to host sw1 port 22: Connection refused\r\nbastion$",
	}}
	s := newTestSession(t)

	err := s.hopLogin(ft, []string{"$"}, "sw1", "admin", "secret", false)
	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
}

func TestHopLoginAuthFailure(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"Password:",
		"Permission denied, please try again.\r\nPassword:",
	}}
	s := newTestSession(t)

	err := s.hopLogin(ft, []string{"$"}, "sw1", "admin", "wrong", false)
	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
}

func TestHopLoginAcceptsHostKey(t *testing.T) {
	ft := &fakeTransport{replies: []string{
		"The authenticity of host 'sw1' can't be established.\r\nAre you sure you want to continue connecting (yes/no",
		"Password:",
		"\r\nsw1#",
	}}
	s := newTestSession(t)

	require.NoError(t, s.hopLogin(ft, []string{"$"}, "sw1", "admin", "secret", false))
	require.Equal(t, []string{"yes", "secret"}, ft.sent)
}

func TestIsConnectedLifecycle(t *testing.T) {
	s := newTestSession(t)
	require.False(t, s.IsConnected())

	s.term = &fakeTransport{}
	require.True(t, s.IsConnected())

	require.NoError(t, s.Disconnect(nil))
	require.False(t, s.IsConnected())
}

func TestConnectRejectsUnknownProtocol(t *testing.T) {
	s := newTestSession(t)
	err := s.Connect(nil, "sw1", "admin", "secret", "serial")
	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
	require.False(t, s.IsConnected())
}
