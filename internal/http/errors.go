package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/common"
	"github.com/okx/WEB3-DEX/internal/engine"
	"github.com/okx/WEB3-DEX/internal/http/httputil"
)

// handleEngineError maps an engine failure onto an HTTP response. Every
// engine error means the execution was fully unwound, so nothing here is a
// partial-failure state.
func handleEngineError(c *gin.Context, err error) {
	he := engineHTTPError(err)
	httputil.Error(c, he.StatusCode, he.Message)
}

func engineHTTPError(err error) *common.HttpError {
	switch {
	case errors.Is(err, engine.ErrMinReturnNotMet):
		return common.HTTPErrorUnprocessable(err.Error())
	case errors.Is(err, adapters.ErrAdapterNotFound),
		errors.Is(err, adapters.ErrPoolNotFound):
		return common.HTTPErrorNotFound(err.Error())
	case errors.Is(err, engine.ErrDeadlineExpired),
		errors.Is(err, engine.ErrZeroAmount),
		errors.Is(err, engine.ErrLengthMismatch),
		errors.Is(err, engine.ErrWeightOverflow),
		errors.Is(err, engine.ErrZeroAddress),
		errors.Is(err, engine.ErrInvalidSourceForInvest),
		errors.Is(err, engine.ErrInvalidPath),
		errors.Is(err, engine.ErrInvalidCommission),
		errors.Is(err, engine.ErrInsufficientBalance):
		return common.HTTPErrorBadRequest(err.Error())
	default:
		return common.HTTPErrorInternalError(err.Error())
	}
}
