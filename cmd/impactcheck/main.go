package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes: 0 pass, 1 threshold exceeded, 2 config or revision errors.
const (
	exitThreshold = 1
	exitFatal     = 2
)

// ExitError carries a specific process exit code past cobra's error handling.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func main() {
	if err := run(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFatal)
	}
}

func run() error {
	if err := createRootCommand().Execute(); err != nil {
		return err
	}
	return nil
}
