package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithDefaultPort(t *testing.T) {
	require.Equal(t, "10.0.0.1:23", withDefaultPort("10.0.0.1", "23"))
	require.Equal(t, "10.0.0.1:2323", withDefaultPort("10.0.0.1:2323", "23"))
	require.Equal(t, "bastion:22", withDefaultPort("bastion", "22"))
}

func TestLastLine(t *testing.T) {
	require.Equal(t, "sw1#", lastLine("show ver\r\noutput\r\nsw1#"))
	require.Equal(t, "sw1>", lastLine("sw1>"))
}

func TestMatchedSuffix(t *testing.T) {
	require.Equal(t, "#", matchedSuffix("sw1#", []string{"#", ">"}))
	require.Equal(t, ">", matchedSuffix("sw1>", []string{"#", ">"}))
	require.Equal(t, "", matchedSuffix("Password:", []string{"#", ">"}))
	require.Equal(t, "", matchedSuffix("sw1#", []string{""}))
}

func TestErrorKindsUnwrap(t *testing.T) {
	cause := errors.New("refused")
	var err error = &ConnectError{Host: "sw1", Err: cause}
	require.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("hop: %w", err)
	var cerr *ConnectError
	require.ErrorAs(t, wrapped, &cerr)
	require.Equal(t, "sw1", cerr.Host)

	var ierr *InteractionError
	require.False(t, errors.As(wrapped, &ierr))
}
