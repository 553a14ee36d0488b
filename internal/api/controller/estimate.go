package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/service/estimate"
)

func (c *Controller) Estimate(ctx echo.Context) error {
	return c.estimateWith(ctx, false)
}

func (c *Controller) EstimateDetail(ctx echo.Context) error {
	return c.estimateWith(ctx, true)
}

func (c *Controller) estimateWith(ctx echo.Context, detail bool) error {
	var req estimate.Request
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	res, err := c.estimate.Estimate(ctx.Request().Context(), &req, detail)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) SaveEstimate(ctx echo.Context) error {
	var req estimate.SaveRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	gen, err := c.estimate.SaveEstimate(ctx.Request().Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, gen)
}

func (c *Controller) GetSavedEstimate(ctx echo.Context) error {
	projectID, err := strconv.ParseInt(ctx.Param("project_id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: project id %q", constants.ErrInvalidInput, ctx.Param("project_id"))
	}

	saved, err := c.estimate.GetSavedEstimate(ctx.Request().Context(), projectID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, saved)
}
