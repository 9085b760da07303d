package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products repo.ProductRepository
	sales    repo.SaleRepository
}

func (r *txReposGorm) Products() repo.ProductRepository { return r.products }
func (r *txReposGorm) Sales() repo.SaleRepository       { return r.sales }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnの中の全操作を1トランザクションで実行する。
// fnがerrorを返せばロールバック、nilならコミット。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			products: NewProductGormRepository(tx),
			sales:    NewSaleGormRepository(tx),
		}
		return fn(r)
	})
}
