package repository

import (
	"context"

	"app/internal/domain/model"
)

// 販売台帳への追記を約束。更新・削除は存在しない。
type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	//商品ごとの販売履歴（新しい順）
	ListByProductID(ctx context.Context, productID int64, limit int) ([]model.Sale, error)
}
