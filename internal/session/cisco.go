package session

import (
	"context"
	"errors"
	"os"
	"strings"
)

// StartCiscoSession brings the connected device CLI into a usable state:
// prompt discovery, optional enable escalation, paging off.
//
// On the netrasp transport the driver owns the prompt loop, so an
// interactive enable exchange cannot be typed through it; direct-ssh
// sessions assume the login user already lands in privileged exec.
func (s *Session) StartCiscoSession(ctx context.Context, enableSecret string) error {
	switch {
	case s.rasp != nil:
		if enableSecret != "" {
			s.logger.Warnf("Device %s: enable secret ignored on direct ssh, login user must be privileged", s.host)
		}
		if _, err := s.rasp.Run(ctx, "terminal length 0"); err != nil {
			return interactionErr(s.host, "unable to disable paging: %w", err)
		}
		s.paging = true
		return nil
	case s.term != nil:
		return s.startCiscoExpect(enableSecret)
	default:
		return errors.New("start cisco session: not connected")
	}
}

func (s *Session) startCiscoExpect(enableSecret string) error {
	t := s.term

	// nudge the device into re-printing its prompt so we learn it
	if err := t.sendLine(""); err != nil {
		return &InteractionError{Host: s.host, Err: err}
	}
	out, err := t.readUntil("#", ">")
	if err != nil {
		return interactionErr(s.host, "CLI prompt not found: %w", err)
	}
	prompt := lastLine(out)

	if strings.HasSuffix(prompt, ">") && enableSecret != "" {
		if err := t.sendLine("enable"); err != nil {
			return &InteractionError{Host: s.host, Err: err}
		}
		if _, err := t.readUntil("ssword:"); err != nil {
			return interactionErr(s.host, "no enable password prompt: %w", err)
		}
		if err := t.sendLine(enableSecret); err != nil {
			return &InteractionError{Host: s.host, Err: err}
		}
		out, err := t.readUntil("#", ">")
		if err != nil {
			return interactionErr(s.host, "no prompt after enable: %w", err)
		}
		prompt = lastLine(out)
		if !strings.HasSuffix(prompt, "#") {
			return interactionErr(s.host, "enable escalation refused")
		}
	}
	s.prompt = prompt

	if _, err := s.runExpect("terminal length 0"); err != nil {
		return interactionErr(s.host, "unable to disable paging: %w", err)
	}
	s.paging = true
	return nil
}

// EndCiscoSession restores paging and forgets the discovered prompt. The
// transport itself stays up for the caller to tear down.
func (s *Session) EndCiscoSession(ctx context.Context) error {
	defer func() {
		s.prompt = ""
		s.paging = false
	}()
	if !s.paging {
		return nil
	}
	switch {
	case s.rasp != nil:
		if _, err := s.rasp.Run(ctx, "terminal length 24"); err != nil {
			return interactionErr(s.host, "unable to restore paging: %w", err)
		}
	case s.term != nil:
		if _, err := s.runExpect("terminal length 24"); err != nil {
			return interactionErr(s.host, "unable to restore paging: %w", err)
		}
	}
	return nil
}

// WriteOutputToFile runs command on the connected device and writes the
// captured output to path.
func (s *Session) WriteOutputToFile(ctx context.Context, command, path string) error {
	var out string
	var err error

	switch {
	case s.rasp != nil:
		out, err = s.rasp.Run(ctx, command)
	case s.term != nil:
		out, err = s.runExpect(command)
	default:
		return errors.New("write output: not connected")
	}
	if err != nil {
		return interactionErr(s.host, "unable to run command %q: %w", command, err)
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return interactionErr(s.host, "unable to store output: %w", err)
	}
	s.logger.Infof("Stored output of %q for device %s in %s", command, s.host, path)
	return nil
}

// runExpect sends one command on the expect transport and captures
// everything up to the next prompt, stripped of the echo and the prompt
// line itself.
func (s *Session) runExpect(cmd string) (string, error) {
	if s.prompt == "" {
		return "", errors.New("cisco session not started")
	}
	if err := s.term.sendLine(cmd); err != nil {
		return "", err
	}
	out, err := s.term.readUntil(s.prompt)
	if err != nil {
		return "", err
	}
	return cleanOutput(out, cmd, s.prompt), nil
}

// cleanOutput drops the echoed command from the head and the prompt from
// the tail of a captured terminal read.
func cleanOutput(out, cmd, prompt string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	lines := strings.Split(out, "\n")

	if len(lines) > 0 && strings.Contains(lines[0], cmd) {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.HasSuffix(strings.TrimSpace(lines[n-1]), prompt) {
		lines = lines[:n-1]
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
