package session

import (
	"time"

	"github.com/ziutek/telnet"
)

// telnetTransport adapts a ziutek/telnet connection to the transport
// interface used by the expect logic.
type telnetTransport struct {
	conn    *telnet.Conn
	timeout time.Duration
}

func dialTelnet(addr string, timeout time.Duration) (*telnetTransport, error) {
	conn, err := telnet.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	conn.SetUnixWriteMode(true)
	return &telnetTransport{conn: conn, timeout: timeout}, nil
}

func (t *telnetTransport) readUntil(patterns ...string) (string, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return "", err
	}
	data, err := t.conn.ReadUntil(patterns...)
	return string(data), err
}

func (t *telnetTransport) sendLine(line string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return err
	}
	buf := make([]byte, len(line)+1)
	copy(buf, line)
	buf[len(line)] = '\n'
	_, err := t.conn.Write(buf)
	return err
}

func (t *telnetTransport) close() error {
	return t.conn.Close()
}
