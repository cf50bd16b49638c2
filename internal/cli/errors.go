package cli

import (
	"errors"
	"os/exec"
	"strings"
	"unicode"

	"github.com/aretw0/snk/internal/presentation/tui"
	"github.com/aretw0/snk/pkg/domain"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

// ExitCode maps a command error to a process exit status, printing it through
// p unless it was already reported. A command run inside an environment passes
// its own exit status through.
func ExitCode(p *tui.Printer, err error) int {
	if err == nil {
		return 0
	}
	// A failed conda frontend is also an *exec.ExitError; only the user's
	// command passes its status through.
	var exitErr *exec.ExitError
	if !errors.Is(err, domain.ErrCreationFailed) && errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
		return 1
	}
	if !errors.Is(err, errReported) {
		p.Error("%s", sentence(err.Error()))
	}
	return 1
}

// sentence capitalizes msg and ends it with "!" the way success messages read.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	first, rest, _ := strings.Cut(msg, "\n")
	runes := []rune(first)
	if len(runes) == 0 {
		return msg
	}
	runes[0] = unicode.ToUpper(runes[0])
	first = string(runes)
	if !strings.HasSuffix(first, "!") && !strings.HasSuffix(first, ".") {
		first += "!"
	}
	if rest != "" {
		return first + "\n" + rest
	}
	return first
}
