package session

import "fmt"

// ConnectError reports a failure to establish a connection or a tunnel to a
// device or jump box.
type ConnectError struct {
	Host string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("unable to connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// InteractionError reports a failure while talking to an already
// established session.
type InteractionError struct {
	Host string
	Err  error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("interaction with %s failed: %v", e.Host, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

func connectErr(host string, format string, args ...any) error {
	return &ConnectError{Host: host, Err: fmt.Errorf(format, args...)}
}

func interactionErr(host string, format string, args ...any) error {
	return &InteractionError{Host: host, Err: fmt.Errorf(format, args...)}
}
