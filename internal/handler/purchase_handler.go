package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// alarm_messageは発注ラインを割っていないときnull。
type PurchaseResponse struct {
	Message      string  `json:"message"`
	AlarmMessage *string `json:"alarm_message"`
}

// /purchase の購入API
type PurchaseHandler struct {
	uc *usecase.PurchaseUsecase
}

// DI
func NewPurchaseHandler(uc *usecase.PurchaseUsecase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

func (h *PurchaseHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/purchase/:id", h.purchase, middleware.AuthJWT(cfg))
}

func (h *PurchaseHandler) purchase(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid id"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	out, err := h.uc.Purchase(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}

	res := PurchaseResponse{Message: "Product purchased successfully"}
	if out.AlarmTriggered {
		msg := fmt.Sprintf("Alarm: Product %s quantity is below or at alarm level.", out.ProductName)
		res.AlarmMessage = &msg
	}

	return c.JSON(http.StatusOK, res)
}
