//go:build !unix

package audio

import (
	"errors"
	"os"
	"os/exec"
)

func suspend(*os.Process) error { return errors.ErrUnsupported }

func resume(*os.Process) error { return errors.ErrUnsupported }

// isKilled reports whether err is the exit of a process that was killed.
// Without signals, a killed process reports exit code 1 like any other
// failure, so only a missing exit status counts.
func isKilled(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == -1
}
