package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKeepsCSVOrder(t *testing.T) {
	csv := `hostname,protocol,username,password,enable
core-sw01,ssh,admin,secret1,en1
edge-rtr01,ssh2,admin,secret2,
legacy-sw05,telnet,ops,secret3,en3
`
	devices, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, devices, 3)

	require.Equal(t, "core-sw01", devices[0].Hostname)
	require.Equal(t, "edge-rtr01", devices[1].Hostname)
	require.Equal(t, "legacy-sw05", devices[2].Hostname)

	require.Equal(t, "admin", devices[0].Username)
	require.Equal(t, "secret2", devices[1].Password)
	require.Equal(t, "", devices[1].Enable)
	require.Equal(t, "en3", devices[2].Enable)
}

func TestLoadHeaderOnly(t *testing.T) {
	devices, err := Load(strings.NewReader("hostname,protocol,username,password,enable\n"))
	require.NoError(t, err)
	require.Empty(t, devices)
}

func TestLoadBadInput(t *testing.T) {
	_, err := Load(strings.NewReader(`hostname,protocol
"unterminated`))
	require.Error(t, err)
}

func TestProtocolHelpers(t *testing.T) {
	require.True(t, (&Device{Protocol: "ssh"}).UsesSSH())
	require.True(t, (&Device{Protocol: "SSH2"}).UsesSSH())
	require.True(t, (&Device{Protocol: "ssh1"}).UsesSSH())
	require.False(t, (&Device{Protocol: "telnet"}).UsesSSH())

	require.True(t, (&Device{Protocol: "Telnet"}).UsesTelnet())
	require.False(t, (&Device{Protocol: "ssh"}).UsesTelnet())

	require.True(t, (&Device{Protocol: "ssh"}).KnownProtocol())
	require.True(t, (&Device{Protocol: "telnet"}).KnownProtocol())
	require.False(t, (&Device{Protocol: "serial"}).KnownProtocol())
}
