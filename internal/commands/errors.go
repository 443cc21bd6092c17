package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to failed chart commands. Hosts mount the handlers
// on their own dispatchers and map these to transport responses, so they
// are exported rather than kept internal to the wrapping helpers.
const (
	CodeCommandValidation = "CHART_COMMAND_VALIDATION"
	CodeCommandCanceled   = "CHART_COMMAND_CANCELED"
	CodeCommandTimeout    = "CHART_COMMAND_TIMEOUT"
	CodeCommandContext    = "CHART_COMMAND_CONTEXT"
	CodeCommandFailed     = "CHART_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "chart command rejected by validation").
		WithTextCode(CodeCommandValidation)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "chart command canceled").
			WithTextCode(CodeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "chart command deadline exceeded").
			WithTextCode(CodeCommandTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "chart command context error").
			WithTextCode(CodeCommandContext)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "chart command failed").
		WithTextCode(CodeCommandFailed)
}
