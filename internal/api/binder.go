package api

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

// binder binds like echo's default binder and validates the result.
type binder struct {
	echo.DefaultBinder
}

func NewBinder() echo.Binder {
	return &binder{}
}

func (b *binder) Bind(i interface{}, c echo.Context) error {
	if err := b.DefaultBinder.Bind(i, c); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return fmt.Errorf("%w: %v", constants.ErrInvalidInput, he.Message)
		}
		return fmt.Errorf("%w: %v", constants.ErrInvalidInput, err)
	}
	return c.Validate(i)
}

// jsonSerializer encodes and decodes bodies with sonic.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	var (
		b   []byte
		err error
	)
	if indent != "" {
		b, err = sonic.ConfigStd.MarshalIndent(i, "", indent)
	} else {
		b, err = sonic.Marshal(i)
	}
	if err != nil {
		return err
	}
	_, err = c.Response().Write(b)
	return err
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body: "+err.Error()).SetInternal(err)
	}
	return nil
}
