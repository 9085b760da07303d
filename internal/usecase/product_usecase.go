package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 一般ユーザー向けの商品閲覧。
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// 公開用のフィールドだけを返すDTO。
// created_at/updated_atは管理者一覧（/stock）にしか出さない。
type PublicProduct struct {
	ID        int64   `json:"id"`
	Name      string  `json:"product_name"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	AlarmAt   int64   `json:"alarm_at"`
	Status    string  `json:"status"`
	ImagePath string  `json:"image_path"`
}

// 削除済みを除いた商品一覧を公開フィールドで返す
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]PublicProduct, error) {
	products, err := u.productRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]PublicProduct, 0, len(products))
	for _, p := range products {
		out = append(out, toPublicProduct(p))
	}
	return out, nil
}

func toPublicProduct(p model.Product) PublicProduct {
	return PublicProduct{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price,
		AlarmAt:   p.AlarmAt,
		Status:    p.Status,
		ImagePath: p.ImagePath,
	}
}
