// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra "error:"
// line — the command has already printed its own report. Used for
// the exit-status contract: non-zero on any FAILED report or an
// apply-mode phantom without skip-phantoms, even though the run
// itself completed without a Go error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface to
// distinguish a handled non-zero exit from an unexpected error.
func (e *ExitError) ExitCode() int {
	return e.Code
}
