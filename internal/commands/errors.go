package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/models"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
	commandInvalidInput     = "COMMAND_INVALID_INPUT"
	commandRecordNotFound   = "COMMAND_RECORD_NOT_FOUND"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError categorises handler failures. Domain input errors such as a
// taken shortname are validation failures; everything else is a command failure.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case models.IsInvalid(err):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command input rejected").
			WithTextCode(commandInvalidInput)
	case models.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command target not found").
			WithTextCode(commandRecordNotFound)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(commandExecuteFailed)
	}
}
