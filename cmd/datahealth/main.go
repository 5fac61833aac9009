package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Evaluation ran and the overall status passed the policy
	ExitThreshold = 1 // Evaluation ran but the overall status met --fail-on
	ExitError     = 2 // Configuration or runtime error
)

// ThresholdError indicates that the evaluation itself succeeded, but the
// overall status met or exceeded the --fail-on threshold.
type ThresholdError struct {
	Message string
}

func (e *ThresholdError) Error() string {
	return e.Message
}

func main() {
	// Cloud credentials (storage accounts, AWS) commonly live in a local
	// .env during development. A missing file is not an error.
	_ = godotenv.Load()

	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var thresholdErr *ThresholdError
		if errors.As(err, &thresholdErr) {
			os.Exit(ExitThreshold)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
