package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful run
	ExitFailure      = 1 // Invariant violation or failed I/O
	ExitCommandError = 2 // Usage error (bad arguments, unknown direction, bad flags)
)

// ExitError represents an error with a specific exit code that has already
// been reported to the user.
type ExitError struct {
	Code int   // Exit code (ExitFailure or ExitCommandError)
	Err  error // Underlying error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics in text mode (defaults to Writer)
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string       `json:"status"`          // "ok" or "error"
	Data   *gpat.Report `json:"data,omitempty"`  // success payload
	Error  *CLIError    `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    errors.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success outputs a finished run in the configured format.
func (f *OutputFormatter) Success(report *gpat.Report) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: report})
	}

	_, err := fmt.Fprintln(f.Writer, summarize(report))
	return err
}

// Error outputs a failed run in the configured format.
func (f *OutputFormatter) Error(err error) error {
	code := errors.CodeOf(err)

	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: err.Error(),
				Details: details(err),
			},
		})
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	_, werr := fmt.Fprintf(w, "error [%s]: %v\n", code, err)
	return werr
}

// details collects the structured context of err, including where a sync
// run stopped.
func details(err error) map[string]interface{} {
	out := errors.ContextOf(err)

	var syncErr *gpat.SyncError
	if errors.As(err, &syncErr) {
		out["direction"] = syncErr.Direction
		out["phase"] = syncErr.Phase
		if syncErr.Position > 0 {
			out["position"] = syncErr.Position
			out["timestamp"] = syncErr.Timestamp
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// summarize renders a report as one line of text.
func summarize(r *gpat.Report) string {
	var parts []string

	switch r.Direction {
	case gpat.DirectionExport:
		parts = append(parts,
			fmt.Sprintf("%d verified", r.Verified),
			fmt.Sprintf("%d written", r.Written))
	case gpat.DirectionImport:
		parts = append(parts,
			fmt.Sprintf("%d skipped", r.Skipped),
			fmt.Sprintf("%d committed", r.Committed))
	default:
		parts = append(parts, fmt.Sprintf("%d verified", r.Verified))
	}

	line := fmt.Sprintf("%s: %s", r.Direction, strings.Join(parts, ", "))
	if r.Branch != "" {
		line += fmt.Sprintf(" (%s at %s)", r.Branch, r.Head)
	}
	if r.DryRun {
		line += " [dry run]"
	}
	return line
}
