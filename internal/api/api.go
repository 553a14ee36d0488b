package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/wys-platform/prices/internal/api/controller"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/service/catalog"
	"github.com/wys-platform/prices/internal/service/estimate"
	"github.com/wys-platform/prices/internal/service/exchange"
)

type Config struct {
	AllowOrigins []string
	BodyLimit    string
	// Debug lowers echo's own log level.
	Debug bool
}

type Services struct {
	Catalog  *catalog.Service
	Estimate *estimate.Service
	Exchange *exchange.Service
}

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func (svc *APIService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

func NewAPIService(cfg Config, services Services) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Logger.SetLevel(log.WARN)
	if cfg.Debug {
		svc.router.Logger.SetLevel(log.DEBUG)
	}

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = jsonSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler

	svc.router.Use(middleware.Recover())
	svc.router.Use(svc.RequestContext)
	svc.router.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infof(c.Request().Context(), "%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	if cfg.BodyLimit != "" {
		svc.router.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	cntrl := controller.NewController(services.Catalog, services.Estimate, services.Exchange)

	api := svc.router.Group("/api/prices")
	api.GET("/health", cntrl.Health)

	prices := api.Group("", svc.AuthMiddleware)
	prices.POST("", cntrl.Estimate)
	prices.POST("/detail", cntrl.EstimateDetail)
	prices.POST("/save", cntrl.SaveEstimate)
	prices.GET("/saved/:project_id", cntrl.GetSavedEstimate)

	prices.POST("/upload", cntrl.UploadCatalog)
	prices.POST("/design/upload", cntrl.UploadDesign)
	prices.GET("/create", cntrl.GetCatalog)
	prices.GET("/categories/:id", cntrl.GetCategory)
	prices.PUT("/countries/default", cntrl.SetDefaultCountry)
	prices.DELETE("/countries/:name", cntrl.DeleteCountry)
	prices.DELETE("/catalog", cntrl.ResetCatalog)

	prices.GET("/exchange/:code", cntrl.GetExchangeRate)
	prices.POST("/exchange/refresh", cntrl.RefreshExchangeRates)

	return svc, nil
}
