package device

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// describes entry in csv device file
type Device struct {
	Hostname string `csv:"hostname"`
	Protocol string `csv:"protocol"`
	Username string `csv:"username"`
	Password string `csv:"password"`
	Enable   string `csv:"enable"`
	State    string `csv:"-"`
}

const (
	Ok                = "Success"
	Unreachable       = "Unreachable"
	InteractionFailed = "Interaction failure"
	BadProtocol       = "Unsupported protocol"
	Skipped           = "Skipped"
)

// UsesSSH reports whether the device is reached over ssh (any version).
func (d *Device) UsesSSH() bool {
	return strings.Contains(strings.ToLower(d.Protocol), "ssh")
}

// UsesTelnet reports whether the device is reached over telnet.
func (d *Device) UsesTelnet() bool {
	return strings.EqualFold(d.Protocol, "telnet")
}

// KnownProtocol reports whether the protocol column holds something the
// session layer can handle.
func (d *Device) KnownProtocol() bool {
	return d.UsesSSH() || d.UsesTelnet()
}

// Load decodes the operator-supplied CSV inventory. Rows keep file order.
func Load(r io.Reader) ([]*Device, error) {
	var devices []*Device
	if err := gocsv.Unmarshal(r, &devices); err != nil {
		return nil, fmt.Errorf("cannot unmarshal device CSV: %w", err)
	}
	return devices, nil
}
