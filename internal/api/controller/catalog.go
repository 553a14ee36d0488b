package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

func (c *Controller) GetCatalog(ctx echo.Context) error {
	withSubcategories, _ := strconv.ParseBool(ctx.QueryParam("subcategories"))

	catalog, err := c.catalog.GetCatalog(ctx.Request().Context(), withSubcategories)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, catalog)
}

func (c *Controller) GetCategory(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: category id %q", constants.ErrInvalidInput, ctx.Param("id"))
	}

	category, err := c.catalog.GetCategory(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, category)
}

func (c *Controller) SetDefaultCountry(ctx echo.Context) error {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	country, err := c.catalog.SetDefaultCountry(ctx.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, country)
}

func (c *Controller) DeleteCountry(ctx echo.Context) error {
	if err := c.catalog.DeleteCountry(ctx.Request().Context(), ctx.Param("name")); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) ResetCatalog(ctx echo.Context) error {
	if err := c.catalog.Reset(ctx.Request().Context()); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
