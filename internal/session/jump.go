package session

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// jumpShell is an interactive PTY shell on the jump box. Device hops are
// typed into this shell the same way an operator would, so it also serves
// as the transport while a hop is active.
type jumpShell struct {
	client     *ssh.Client
	sess       *ssh.Session
	stdin      io.WriteCloser
	pw         *io.PipeWriter
	out        *bufio.Reader
	promptEnds []string
}

func dialJumpShell(addr, user, pass string, promptEnds []string, timeout time.Duration) (*jumpShell, error) {
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(pass)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, err
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}

	// stdout and stderr share one stream, the same way the operator sees
	// them in a terminal.
	pr, pw := io.Pipe()
	sess.Stdout = pw
	sess.Stderr = pw

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("vt100", 80, 24, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}

	j := &jumpShell{
		client:     client,
		sess:       sess,
		stdin:      stdin,
		pw:         pw,
		out:        bufio.NewReader(pr),
		promptEnds: promptEnds,
	}
	// wait for the first jump-box prompt before handing the shell out
	if _, err := j.readUntil(promptEnds...); err != nil {
		j.close()
		return nil, err
	}
	return j, nil
}

func (j *jumpShell) readUntil(patterns ...string) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := j.out.ReadByte()
		if err != nil {
			return buf.String(), err
		}
		buf.WriteByte(b)
		for _, p := range patterns {
			if p != "" && strings.HasSuffix(buf.String(), p) {
				return buf.String(), nil
			}
		}
	}
}

func (j *jumpShell) sendLine(line string) error {
	_, err := io.WriteString(j.stdin, line+"\n")
	return err
}

func (j *jumpShell) close() error {
	// best effort to leave the remote shell cleanly
	_, _ = io.WriteString(j.stdin, "exit\n")
	_ = j.stdin.Close()
	_ = j.pw.Close()
	_ = j.sess.Close()
	return j.client.Close()
}
