package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

// StockCreateRequest は商品登録の入力です。
type StockCreateRequest struct {
	Name      string  `json:"product_name" validate:"required,max=100"`
	Quantity  int64   `json:"quantity" validate:"gte=0"`
	AlarmAt   int64   `json:"alarm_at" validate:"gte=0"`
	Price     float64 `json:"price" validate:"gte=0"`
	ImagePath string  `json:"image_path"`
}

// StockUpdateRequest は部分更新の入力。指定しなかった項目は変更しない。
type StockUpdateRequest struct {
	Name      *string  `json:"product_name"`
	Quantity  *int64   `json:"quantity"`
	AlarmAt   *int64   `json:"alarm_at"`
	Price     *float64 `json:"price"`
	ImagePath *string  `json:"image_path"`
}

type StockCreateResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

// /stock（管理者専用）をまとめる
type StockHandler struct {
	uc *usecase.StockUsecase
}

// DI
func NewStockHandler(uc *usecase.StockUsecase) *StockHandler {
	return &StockHandler{uc: uc}
}

// 在庫管理のルートを登録。role checkはルートごとに書かず
// グループのguardに寄せる。
func (h *StockHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	stock := e.Group("/stock")

	stock.Use(middleware.AuthJWT(cfg))
	stock.Use(middleware.AdminRoleGuard())

	stock.POST("", h.createStock)
	stock.GET("", h.listStock)
	stock.PUT("/:id", h.updateStock)
	stock.DELETE("/:id", h.deleteStock)
}

func (h *StockHandler) createStock(c echo.Context) error {
	var req StockCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid body"})
	}

	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: validator.FirstErrorMessage(errs)})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	productID, err := h.uc.AdminCreateProduct(
		c.Request().Context(),
		adminID,
		usecase.CreateStockInput{
			Name:      req.Name,
			Quantity:  req.Quantity,
			AlarmAt:   req.AlarmAt,
			Price:     req.Price,
			ImagePath: req.ImagePath,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, StockCreateResponse{
		Message:   "Product added successfully",
		ProductID: productID,
	})
}

func (h *StockHandler) updateStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid id"})
	}

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	err = h.uc.AdminUpdateProduct(
		c.Request().Context(),
		adminID,
		id,
		usecase.UpdateStockInput{
			Name:      req.Name,
			Quantity:  req.Quantity,
			AlarmAt:   req.AlarmAt,
			Price:     req.Price,
			ImagePath: req.ImagePath,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Product updated successfully"})
}

func (h *StockHandler) deleteStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func (h *StockHandler) listStock(c echo.Context) error {
	products, err := h.uc.AdminListStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, products)
}
