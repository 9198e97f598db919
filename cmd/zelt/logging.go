package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando-incubator/zelt/internal/logging"
)

// ExitCodeError carries the exit code of a subprocess, e.g. a local locust run.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// withCmdRunLogger implements the Span pattern for CLI command logging.
// It emits a start log line and returns a context with logger attributes attached,
// plus a cleanup function to emit the success or failure log line.
//
// Usage:
//
//	ctx, cleanup := withCmdRunLogger(ctx, "rescale", manifestsDir)
//	defer func() { cleanup(err) }()
//
// Log message format:
// - Start:   CMD:<operation>/S (with resourceId in logger attributes)
// - Success: CMD:<operation>/EOK (with err, elapsed in logger attributes)
// - Failure: CMD:<operation>/EFAIL (with err, elapsed in logger attributes)
//
// ExitCodeError is treated as EOK since it propagates a subprocess exit code.
// The runId is inherited from the context logger (set in PersistentPreRunE).
func withCmdRunLogger(ctx context.Context, operation, resourceID string) (context.Context, func(err error)) {
	startAt := time.Now()

	logger := logging.FromContext(ctx).With("resourceId", resourceID)
	ctx = logging.WithLogger(ctx, logger)

	logger.Info(ctx, "CMD:"+operation+"/S")

	cleanup := func(err error) {
		elapsed := time.Since(startAt).Seconds()

		var exitCodeErr ExitCodeError
		isExitCodeErr := errors.As(err, &exitCodeErr)

		switch {
		case isExitCodeErr:
			logger.Info(ctx, "CMD:"+operation+"/EOK", "err", "", "exitCode", exitCodeErr.Code, "elapsed", elapsed)
		case err == nil:
			logger.Info(ctx, "CMD:"+operation+"/EOK", "err", "", "elapsed", elapsed)
		default:
			errStr := err.Error()
			if len(errStr) > 32 {
				errStr = errStr[:32] + "..."
			}
			logger.Info(ctx, "CMD:"+operation+"/EFAIL", "err", errStr, "elapsed", elapsed)
		}
	}

	return ctx, cleanup
}
