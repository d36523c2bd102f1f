package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	shutdown()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			if jsonOutput {
				printJSON(map[string]interface{}{
					"success": false,
					"error":   err.Error(),
					"code":    models.ErrorCode(err),
				})
			} else {
				printError("Error: %v", err)
			}
		}
		os.Exit(1)
	}
}

// reportedError marks an error the command already printed.
type reportedError struct {
	error
}

func (e *reportedError) Unwrap() error {
	return e.error
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err}
}
