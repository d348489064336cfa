package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"netgrab/internal/app"
	"netgrab/internal/device"
	"netgrab/internal/session"
)

// Terminal is the slice of the session surface the connection loop drives.
// It matches internal/session and lets tests substitute a fake.
type Terminal interface {
	IsConnected() bool
	Connect(ctx context.Context, host, user, pass, protocol string) error
	ConnectSSH(host, user, pass string, promptEndings []string) error
	SSHViaJump(host, user, pass string) error
	TelnetViaJump(host, user, pass string) error
	DisconnectViaJump() error
	Disconnect(ctx context.Context) error
	StartCiscoSession(ctx context.Context, enableSecret string) error
	EndCiscoSession(ctx context.Context) error
	CreateOutputFilename(name string, includeHostname bool) string
	WriteOutputToFile(ctx context.Context, command, path string) error
}

// Runner walks the device list strictly in order, one device at a time,
// over a direct or jump-mediated session.
type Runner struct {
	term    Terminal
	logger  *zap.SugaredLogger
	command string
	jumpbox *app.Jumpbox // nil means direct connections

	scriptName string
	failLog    string
	jumpUp     bool
}

func NewRunner(term Terminal, logger *zap.SugaredLogger, command, scriptName string, jumpbox *app.Jumpbox) *Runner {
	return &Runner{
		term:       term,
		logger:     logger,
		command:    command,
		scriptName: scriptName,
		jumpbox:    jumpbox,
	}
}

// Run processes every device. An already-connected session is a
// precondition failure and aborts the whole run; an empty list or command
// returns without connecting anywhere.
func (r *Runner) Run(ctx context.Context, devices []*device.Device) error {
	if r.term.IsConnected() {
		return errors.New("runner must be started on a disconnected session")
	}
	if len(devices) == 0 || r.command == "" {
		return nil
	}

	r.failLog = r.term.CreateOutputFilename(r.scriptName+"-LOG", false)

	for _, d := range devices {
		select {
		case <-ctx.Done():
			r.logger.Warn("Run cancelled, stopping device loop")
			d.State = device.Skipped
			continue
		default:
		}

		if r.jumpbox != nil {
			r.runViaJump(ctx, d)
		} else {
			r.runDirect(ctx, d)
		}
	}

	if r.jumpUp {
		if err := r.term.Disconnect(ctx); err != nil {
			r.logger.Warnf("Error while closing jump-box session: %s", err)
		}
		r.jumpUp = false
	}
	return nil
}

// runDirect handles one device over a direct connection.
func (r *Runner) runDirect(ctx context.Context, d *device.Device) {
	if !d.KnownProtocol() {
		r.logger.Warnf("Device %s skipped: unsupported protocol %q", d.Hostname, d.Protocol)
		r.appendFailure(fmt.Sprintf("Connect to %s failed: unsupported protocol %q", d.Hostname, d.Protocol))
		d.State = device.BadProtocol
		return
	}

	r.logger.Infof("Connecting to device %s...", d.Hostname)
	if err := r.term.Connect(ctx, d.Hostname, d.Username, d.Password, d.Protocol); err != nil {
		r.logger.Warnf("unable to connect to device %s, err: %v", d.Hostname, err)
		r.appendFailure(failureLine(d.Hostname, err))
		d.State = device.Unreachable
		return
	}
	r.logger.Infof("Connected to device %s successfully", d.Hostname)

	if err := r.perDeviceWork(ctx, d); err != nil {
		r.logger.Warnf("Failure on device %s: %v", d.Hostname, err)
		r.appendFailure(failureLine(d.Hostname, err))
		d.State = device.InteractionFailed
		_ = r.term.Disconnect(ctx)
		return
	}

	if err := r.term.Disconnect(ctx); err != nil {
		r.logger.Warnf("Error while disconnecting from %s: %s", d.Hostname, err)
	}
	d.State = device.Ok
}

// runViaJump handles one device through the jump box, re-using the jump
// session across devices and rebuilding it after any failure.
func (r *Runner) runViaJump(ctx context.Context, d *device.Device) {
	var hop func() error
	switch {
	case d.UsesSSH():
		hop = func() error { return r.term.SSHViaJump(d.Hostname, d.Username, d.Password) }
	case d.UsesTelnet():
		hop = func() error { return r.term.TelnetViaJump(d.Hostname, d.Username, d.Password) }
	default:
		r.logger.Warnf("Device %s skipped: unsupported protocol %q", d.Hostname, d.Protocol)
		r.appendFailure(fmt.Sprintf("Connect to %s failed: unsupported protocol %q", d.Hostname, d.Protocol))
		d.State = device.BadProtocol
		return
	}

	err := func() error {
		if !r.jumpUp {
			r.logger.Infof("Connecting to jumpbox %s...", r.jumpbox.Host)
			if err := r.term.ConnectSSH(r.jumpbox.Host, r.jumpbox.Username, r.jumpbox.Password,
				[]string{r.jumpbox.PromptEnd}); err != nil {
				return err
			}
			r.jumpUp = true
		}
		r.logger.Infof("Connecting to device %s via jumpbox...", d.Hostname)
		if err := hop(); err != nil {
			return err
		}
		if err := r.perDeviceWork(ctx, d); err != nil {
			return err
		}
		return r.term.DisconnectViaJump()
	}()

	if err != nil {
		r.logger.Warnf("Device %s via jumpbox failed: %v", d.Hostname, err)
		r.appendFailure(failureLine(d.Hostname, err))
		var cerr *session.ConnectError
		if errors.As(err, &cerr) {
			d.State = device.Unreachable
		} else {
			d.State = device.InteractionFailed
		}
		// any failure invalidates the whole chain, jump session included
		_ = r.term.Disconnect(ctx)
		r.jumpUp = false
		return
	}
	d.State = device.Ok
}

// perDeviceWork is the fixed sequence run against every connected device:
// start the vendor CLI session, capture the command to a file, end the
// session.
func (r *Runner) perDeviceWork(ctx context.Context, d *device.Device) error {
	if err := r.term.StartCiscoSession(ctx, d.Enable); err != nil {
		return err
	}
	outFile := r.term.CreateOutputFilename(r.command, true)
	if err := r.term.WriteOutputToFile(ctx, r.command, outFile); err != nil {
		return err
	}
	return r.term.EndCiscoSession(ctx)
}

// appendFailure adds one line to the shared failure log.
func (r *Runner) appendFailure(line string) {
	f, err := os.OpenFile(r.failLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Errorf("Unable to open failure log %q because of: %s", r.failLog, err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, line); err != nil {
		r.logger.Errorf("Unable to write failure log %q because of: %s", r.failLog, err)
	}
}

// failureLine formats one failure-log entry, distinguishing connect
// failures from interaction failures.
func failureLine(hostname string, err error) string {
	msg := strings.TrimSpace(err.Error())
	var cerr *session.ConnectError
	if errors.As(err, &cerr) {
		return fmt.Sprintf("Connect to %s failed: %s", hostname, msg)
	}
	return fmt.Sprintf("Failure on %s: %s", hostname, msg)
}
