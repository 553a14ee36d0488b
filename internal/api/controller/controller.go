package controller

import (
	"github.com/wys-platform/prices/internal/service/catalog"
	"github.com/wys-platform/prices/internal/service/estimate"
	"github.com/wys-platform/prices/internal/service/exchange"
)

type Controller struct {
	catalog  *catalog.Service
	estimate *estimate.Service
	exchange *exchange.Service
}

func NewController(catalog *catalog.Service, estimate *estimate.Service, exchange *exchange.Service) *Controller {
	return &Controller{catalog: catalog, estimate: estimate, exchange: exchange}
}
