package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bondar-aleksandr/netrasp/pkg/netrasp"
	"go.uber.org/zap"
)

// Config carries the connection knobs the session layer needs.
type Config struct {
	OutputDir         string
	Timeout           time.Duration
	LegacyKeyExchange string
	LegacyAlgorithm   string
}

// Session is one live terminal connection, direct or via a jump box. It is
// owned by the connection loop for the duration of one device and must not
// be shared.
type Session struct {
	logger *zap.SugaredLogger
	cfg    Config

	host   string // device currently connected to
	prompt string // discovered CLI prompt, set by StartCiscoSession
	paging bool   // paging was turned off and should be restored

	rasp    netrasp.Platform // direct ssh transport
	term    transport        // expect transport (telnet or active jump hop)
	jump    *jumpShell       // jump-box shell, reused across devices
	viaJump bool             // term currently points at a hop on jump
}

func New(logger *zap.SugaredLogger, cfg Config) *Session {
	return &Session{logger: logger, cfg: cfg}
}

// IsConnected reports whether any transport is live.
func (s *Session) IsConnected() bool {
	return s.rasp != nil || s.term != nil || s.jump != nil
}

// Connect establishes a direct connection to a device, choosing the
// transport from the protocol column of the inventory.
func (s *Session) Connect(ctx context.Context, host, user, pass, protocol string) error {
	if s.rasp != nil || s.term != nil {
		return errors.New("session already connected")
	}
	switch {
	case strings.Contains(strings.ToLower(protocol), "ssh"):
		return s.connectNetrasp(ctx, host, user, pass, false)
	case strings.EqualFold(protocol, "telnet"):
		return s.connectTelnet(host, user, pass)
	default:
		return connectErr(host, "unsupported protocol %q", protocol)
	}
}

// this func connects to device over ssh with netrasp, retrying once with
// legacy ciphers in case of algorithm mismatch
func (s *Session) connectNetrasp(ctx context.Context, host, user, pass string, legacy bool) error {
	device, err := netrasp.New(host,
		netrasp.WithUsernamePassword(user, pass),
		netrasp.WithDriver("ios"), netrasp.WithInsecureIgnoreHostKey(),
		netrasp.WithDialTimeout(s.cfg.Timeout),
	)
	if legacy {
		device, err = netrasp.New(host,
			netrasp.WithUsernamePassword(user, pass),
			netrasp.WithDriver("ios"), netrasp.WithInsecureIgnoreHostKey(),
			netrasp.WithDialTimeout(s.cfg.Timeout),
			netrasp.WithSSHKeyExchange(s.cfg.LegacyKeyExchange),
			netrasp.WithSSHCipher(s.cfg.LegacyAlgorithm),
		)
	}
	if err != nil {
		return &ConnectError{Host: host, Err: err}
	}

	if err := device.Dial(ctx); err != nil {
		if strings.Contains(err.Error(), "no common algorithm") && !legacy {
			s.logger.Warnf("Need to lower SSH ciphers for the device %s, retrying...", host)
			return s.connectNetrasp(ctx, host, user, pass, true)
		}
		return &ConnectError{Host: host, Err: err}
	}
	s.rasp = device
	s.host = host
	return nil
}

// this func connects to device over telnet and walks the login dialog
func (s *Session) connectTelnet(host, user, pass string) error {
	t, err := dialTelnet(withDefaultPort(host, "23"), s.cfg.Timeout)
	if err != nil {
		return &ConnectError{Host: host, Err: err}
	}

	if err := s.expectLogin(t, user, pass, host); err != nil {
		t.close()
		return err
	}
	s.term = t
	s.host = host
	return nil
}

// expectLogin answers the username/password dialog on t and verifies a CLI
// prompt comes back instead of another login prompt.
func (s *Session) expectLogin(t transport, user, pass, host string) error {
	loginPrompts := []string{"sername: ", "ogin: ", "sername:", "ogin:"}

	if _, err := t.readUntil(loginPrompts...); err != nil {
		return connectErr(host, "no login prompt: %w", err)
	}
	if err := t.sendLine(user); err != nil {
		return &ConnectError{Host: host, Err: err}
	}
	if _, err := t.readUntil("ssword:"); err != nil {
		return connectErr(host, "no password prompt: %w", err)
	}
	if err := t.sendLine(pass); err != nil {
		return &ConnectError{Host: host, Err: err}
	}

	out, err := t.readUntil(append([]string{"#", ">"}, loginPrompts...)...)
	if err != nil {
		return connectErr(host, "no CLI prompt after login: %w", err)
	}
	switch matchedSuffix(out, []string{"#", ">"}) {
	case "#", ">":
		return nil
	default:
		return connectErr(host, "authentication failed for user %q", user)
	}
}

// ConnectSSH opens the jump-box shell and waits for one of the given
// prompt endings. The shell stays up across devices until Disconnect.
func (s *Session) ConnectSSH(host, user, pass string, promptEndings []string) error {
	if s.jump != nil {
		return errors.New("jump-box session already connected")
	}
	j, err := dialJumpShell(withDefaultPort(host, "22"), user, pass, promptEndings, s.cfg.Timeout)
	if err != nil {
		return &ConnectError{Host: host, Err: err}
	}
	s.jump = j
	return nil
}

// SSHViaJump hops from the jump-box shell to a device with the ssh client
// on the jump box.
func (s *Session) SSHViaJump(host, user, pass string) error {
	if s.jump == nil {
		return errors.New("ssh via jump: no jump-box session")
	}
	if s.term != nil || s.rasp != nil {
		return errors.New("ssh via jump: already connected to a device")
	}

	hop := fmt.Sprintf("ssh -o StrictHostKeyChecking=no -l %s %s", user, host)
	if err := s.jump.sendLine(hop); err != nil {
		return &ConnectError{Host: host, Err: err}
	}
	if err := s.hopLogin(s.jump, s.jump.promptEnds, host, user, pass, false); err != nil {
		return err
	}
	s.term = s.jump
	s.viaJump = true
	s.host = host
	return nil
}

// TelnetViaJump hops from the jump-box shell to a device with the telnet
// client on the jump box.
func (s *Session) TelnetViaJump(host, user, pass string) error {
	if s.jump == nil {
		return errors.New("telnet via jump: no jump-box session")
	}
	if s.term != nil || s.rasp != nil {
		return errors.New("telnet via jump: already connected to a device")
	}

	if err := s.jump.sendLine("telnet " + host); err != nil {
		return &ConnectError{Host: host, Err: err}
	}
	if err := s.hopLogin(s.jump, s.jump.promptEnds, host, user, pass, true); err != nil {
		return err
	}
	s.term = s.jump
	s.viaJump = true
	s.host = host
	return nil
}

// hopLogin drives the login dialog of a hop typed into the jump shell.
// Telnet hops ask for a username first, ssh hops only for the password.
// Seeing the jump-box prompt again means the hop died.
func (s *Session) hopLogin(j transport, jumpEnds []string, host, user, pass string, wantUsername bool) error {
	if wantUsername {
		out, err := j.readUntil(append([]string{"sername:", "ogin:"}, jumpEnds...)...)
		if err != nil {
			return connectErr(host, "no login prompt via jump: %w", err)
		}
		if matchedSuffix(out, jumpEnds) != "" {
			return connectErr(host, "hop rejected by target: %s", lastLine(out))
		}
		if err := j.sendLine(user); err != nil {
			return &ConnectError{Host: host, Err: err}
		}
	}

	out, err := j.readUntil(append([]string{"ssword:", "(yes/no"}, jumpEnds...)...)
	if err != nil {
		return connectErr(host, "no password prompt via jump: %w", err)
	}
	if strings.HasSuffix(out, "(yes/no") {
		// unknown host key on the jump box, accept it
		if err := j.sendLine("yes"); err != nil {
			return &ConnectError{Host: host, Err: err}
		}
		out, err = j.readUntil(append([]string{"ssword:"}, jumpEnds...)...)
		if err != nil {
			return connectErr(host, "no password prompt via jump: %w", err)
		}
	}
	if matchedSuffix(out, jumpEnds) != "" {
		return connectErr(host, "hop rejected by target: %s", lastLine(out))
	}
	if err := j.sendLine(pass); err != nil {
		return &ConnectError{Host: host, Err: err}
	}

	out, err = j.readUntil(append([]string{"#", ">", "ssword:"}, jumpEnds...)...)
	if err != nil {
		return connectErr(host, "no CLI prompt via jump: %w", err)
	}
	switch {
	case strings.HasSuffix(out, "ssword:"):
		return connectErr(host, "authentication failed for user %q", user)
	case matchedSuffix(out, jumpEnds) != "":
		return connectErr(host, "hop closed before login: %s", lastLine(out))
	}
	return nil
}

// DisconnectViaJump leaves the device hop but keeps the jump-box shell up
// for the next device.
func (s *Session) DisconnectViaJump() error {
	if s.jump == nil || !s.viaJump {
		return errors.New("disconnect via jump: no hop active")
	}
	host := s.host
	s.term = nil
	s.viaJump = false
	s.host = ""
	s.prompt = ""

	if err := s.jump.sendLine("exit"); err != nil {
		return &InteractionError{Host: host, Err: err}
	}
	if _, err := s.jump.readUntil(s.jump.promptEnds...); err != nil {
		return interactionErr(host, "jump-box prompt did not return: %w", err)
	}
	return nil
}

// Disconnect tears down every live transport, including the jump-box
// shell.
func (s *Session) Disconnect(ctx context.Context) error {
	var firstErr error

	if s.rasp != nil {
		if err := s.rasp.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		s.rasp = nil
	}
	if s.term != nil && !s.viaJump {
		if err := s.term.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.term = nil
	s.viaJump = false
	if s.jump != nil {
		if err := s.jump.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.jump = nil
	}
	s.host = ""
	s.prompt = ""
	s.paging = false
	return firstErr
}
