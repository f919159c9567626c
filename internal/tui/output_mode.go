package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how a command presents its results.
type OutputMode int

// Output modes.
const (
	OutputModePlain OutputMode = iota
	OutputModeStyled
	OutputModeInteractive
)

func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

//nolint:gochecknoglobals // replaced in tests
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DetectOutputMode picks the output mode for stdout. plain always wins;
// NO_COLOR and TERM=dumb disable styling; CI gets styled but never
// interactive output.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	if plain {
		return OutputModePlain
	}
	if noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return OutputModePlain
	}
	if !isTerminal() {
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	}
	if os.Getenv("CI") != "" {
		return OutputModeStyled
	}
	return OutputModeInteractive
}
