package controller

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

const uploadField = "file"

func readUpload(ctx echo.Context) (string, []byte, error) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return "", nil, fmt.Errorf("%w: multipart field %q: %v", constants.ErrInvalidInput, uploadField, err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}

	return fh.Filename, body, nil
}

func (c *Controller) UploadCatalog(ctx echo.Context) error {
	name, body, err := readUpload(ctx)
	if err != nil {
		return err
	}

	report, err := c.catalog.Upload(ctx.Request().Context(), name, body)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, report)
}

func (c *Controller) UploadDesign(ctx echo.Context) error {
	name, body, err := readUpload(ctx)
	if err != nil {
		return err
	}

	designs, err := c.catalog.UploadDesign(ctx.Request().Context(), name, body)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, designs)
}
