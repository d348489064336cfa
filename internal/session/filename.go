package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// characters that never belong in an output filename
var filenameReplacer = strings.NewReplacer(
	" ", "_",
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// CreateOutputFilename derives a file path in the output folder from a
// command or log name, optionally prefixed with the connected hostname,
// suffixed with a timestamp.
func (s *Session) CreateOutputFilename(name string, includeHostname bool) string {
	base := filenameReplacer.Replace(strings.TrimSpace(name))
	if includeHostname && s.host != "" {
		base = s.host + "-" + base
	}
	stamp := time.Now().Format("2006-01-02-15.04.05")
	return filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s-%s.txt", base, stamp))
}
