package session

import (
	"net"
	"strings"
)

// transport is one live terminal stream to a device or jump box.
type transport interface {
	// readUntil consumes the stream until it ends with any of the given
	// patterns, returning everything read including the match.
	readUntil(patterns ...string) (string, error)
	// sendLine writes line followed by a newline.
	sendLine(line string) error
	close() error
}

// matchedSuffix returns the pattern the accumulated output ended with, or
// "" when none matched (read error case).
func matchedSuffix(out string, patterns []string) string {
	for _, p := range patterns {
		if p != "" && strings.HasSuffix(out, p) {
			return p
		}
	}
	return ""
}

// lastLine returns the trimmed final line of a terminal read, which after a
// readUntil on prompt characters is the device prompt itself.
func lastLine(out string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r", ""), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// withDefaultPort appends port unless host already carries one.
func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, port)
}
