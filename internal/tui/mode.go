package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode selects how command results and progress are presented.
type OutputMode int

const (
	// ModeTUI renders live progress through bubbletea.
	ModeTUI OutputMode = iota
	// ModePlain prints a static summary once work finishes.
	ModePlain
	// ModeJSON emits machine-readable output only.
	ModeJSON
)

// DetectMode picks the presentation for out. Explicit flags win; otherwise
// the TUI runs only on an interactive terminal.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress:
		return ModePlain
	case interactive(out):
		return ModeTUI
	}
	return ModePlain
}

func interactive(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && !strings.EqualFold(term, "dumb")
}
