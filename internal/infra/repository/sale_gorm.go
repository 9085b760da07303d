package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type SaleGormRepository struct {
	db *gorm.DB
}

// DI
func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

// 台帳へ1行追記
func (r *SaleGormRepository) Create(ctx context.Context, sale *model.Sale) error {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return err
	}
	return nil
}

// 商品ごとの販売履歴を新しい順に返す
func (r *SaleGormRepository) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
