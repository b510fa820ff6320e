package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "hubexport/pkg/errors"
	"hubexport/pkg/logger"
)

func TestReportExportFailureReturnsTransportError(t *testing.T) {
	log := logger.NewTestLogger()

	inner := &errs.Error{
		Type:    errs.ErrorTypeServerError,
		Message: "server error",
		Code:    500,
	}
	err := reportExportFailure(log, &errs.TransportError{Attempts: 5, Last: inner})

	// The error must come back to cobra so deferred cleanup in the
	// command runs before the process exits.
	require.Error(t, err)
	var transportErr *errs.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 5, transportErr.Attempts)
	assert.True(t, log.HasMessage("transport retries exhausted"))
}

func TestReportExportFailurePassesOtherErrorsThrough(t *testing.T) {
	log := logger.NewTestLogger()

	plain := errors.New("database is locked")
	err := reportExportFailure(log, plain)

	assert.Equal(t, plain, err)
	assert.False(t, log.HasMessage("transport retries exhausted"))
}
