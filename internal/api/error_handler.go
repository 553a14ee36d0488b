package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := domain.ErrorResponse{
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	}

	var (
		coded *constants.CodedError
		he    *echo.HTTPError
		ve    *validationError
	)
	switch {
	case errors.As(err, &coded):
		resp.Code = coded.Code()
	case errors.As(err, &he):
		resp.Code = he.Code
		resp.Message = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			resp.Message = msg
		}
	}
	if errors.As(err, &ve) {
		resp.Errors = ve.problems
	}

	ctx := c.Request().Context()
	if resp.Code >= http.StatusInternalServerError {
		logger.Errorf(ctx, "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	} else {
		logger.Debugf(ctx, "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(resp.Code)
		return
	}
	_ = c.JSON(resp.Code, resp)
}
