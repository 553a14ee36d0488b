package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

// GetExchangeRate answers with the stored rate even when today's refresh
// failed; the response is then flagged as stale.
func (c *Controller) GetExchangeRate(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	res, err := c.exchange.Lookup(rctx, ctx.Param("code"))
	if res == nil {
		return err
	}
	if err != nil {
		logger.Warnf(rctx, "serving stale rate for %s: %s", res.Code, err.Error())
	}
	if !res.Found {
		if err != nil {
			return err
		}
		return fmt.Errorf("currency %s: %w", res.Code, constants.ErrDBNotFound)
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) RefreshExchangeRates(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	if err := c.exchange.Refresh(rctx); err != nil {
		return err
	}

	rates, err := c.exchange.List(rctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rates)
}

func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
