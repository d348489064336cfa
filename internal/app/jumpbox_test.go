package app

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp(t *testing.T, settingsPath, stdinLines string) *App {
	t.Helper()
	s, err := OpenSettings(settingsPath)
	require.NoError(t, err)
	return &App{
		Logger:       zap.NewNop().Sugar(),
		Settings:     s,
		stdin:        bufio.NewReader(strings.NewReader(stdinLines)),
		stdout:       io.Discard,
		readPassword: func() (string, error) { return "jump-secret", nil },
	}
}

func TestResolveJumpboxDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	a := testApp(t, path, "")

	jb, err := a.ResolveJumpbox()
	require.NoError(t, err)
	require.Nil(t, jb)
}

func TestResolveJumpboxPromptsAndPersistsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	a := testApp(t, path, "bastion01\nops\n$\n")
	require.NoError(t, a.Settings.Update(KeyUseJumpbox, "true"))

	jb, err := a.ResolveJumpbox()
	require.NoError(t, err)
	require.Equal(t, "bastion01", jb.Host)
	require.Equal(t, "ops", jb.Username)
	require.Equal(t, "$", jb.PromptEnd)
	require.Equal(t, "jump-secret", jb.Password)

	// host, user and prompt ending are written back
	reopened, err := OpenSettings(path)
	require.NoError(t, err)
	require.Equal(t, "bastion01", reopened.Get(KeyJumpboxHost))
	require.Equal(t, "ops", reopened.Get(KeyJumpboxUser))
	require.Equal(t, "$", reopened.Get(KeyJumpboxPromptEnd))
}

func TestResolveJumpboxNeverPersistsPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	a := testApp(t, path, "bastion01\nops\n$\n")
	require.NoError(t, a.Settings.Update(KeyUseJumpbox, "true"))

	_, err := a.ResolveJumpbox()
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "jump-secret")
}

func TestResolveJumpboxUsesPersistedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	seed := testApp(t, path, "")
	require.NoError(t, seed.Settings.Update(KeyUseJumpbox, "true"))
	require.NoError(t, seed.Settings.Update(KeyJumpboxHost, "bastion01"))
	require.NoError(t, seed.Settings.Update(KeyJumpboxUser, "ops"))
	require.NoError(t, seed.Settings.Update(KeyJumpboxPromptEnd, "$"))

	// no stdin lines available: only the password may be asked for
	a := testApp(t, path, "")
	jb, err := a.ResolveJumpbox()
	require.NoError(t, err)
	require.Equal(t, "bastion01", jb.Host)
	require.Equal(t, "ops", jb.Username)
	require.Equal(t, "$", jb.PromptEnd)
	require.Equal(t, "jump-secret", jb.Password)
}
