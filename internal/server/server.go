package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルート登録に必要なhandler一式。
type Handlers struct {
	Auth     *handler.AuthHandler
	Stock    *handler.StockHandler
	Product  *handler.ProductHandler
	Purchase *handler.PurchaseHandler
}

// Newはechoを組み立ててルートを登録する。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	//アクセスログとpanic回復
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	h.Auth.RegisterRoutes(e, cfg)
	h.Stock.RegisterRoutes(e, cfg)
	h.Product.RegisterRoutes(e, cfg)
	h.Purchase.RegisterRoutes(e, cfg)

	return e
}
