package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// 購入1回分の結果。
type PurchaseOutput struct {
	ProductName    string
	NewQuantity    int64
	Price          float64
	AlarmTriggered bool
}

// 購入処理の本体。在庫減算と販売記録を1トランザクションで行う。
type PurchaseUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewPurchaseUsecase(tx repo.TransactionManager) *PurchaseUsecase {
	return &PurchaseUsecase{tx: tx}
}

// 1点購入する。
//   - 在庫減算は条件付きUPDATE（quantity > 0のときだけ）なので
//     同時購入が重なっても在庫は負にならない。
//   - 減算とSale追記は同一トランザクション。片方だけ残ることはない。
//   - Sale.Priceは購入時点の商品価格を写す。
func (u *PurchaseUsecase) Purchase(ctx context.Context, userID int64, productID int64) (PurchaseOutput, error) {
	if userID <= 0 {
		return PurchaseOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return PurchaseOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out PurchaseOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//在庫があるときだけ1減らす
		ok, err := r.Products().DecrementStock(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			//減らせなかった＝商品がないのか在庫切れなのかを区別する
			_, err := r.Products().FindByID(ctx, productID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return NewHTTPError(http.StatusBadRequest, "Product out of stock")
		}

		//減算後の値を同一トランザクション内で読み直す
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//台帳へ追記（価格は今この時点のもの）
		sale := &model.Sale{
			UserID:    userID,
			ProductID: productID,
			Price:     p.Price,
			Quantity:  1,
		}
		if err := r.Sales().Create(ctx, sale); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = PurchaseOutput{
			ProductName:    p.Name,
			NewQuantity:    p.Quantity,
			Price:          p.Price,
			AlarmTriggered: p.Quantity <= p.AlarmAt,
		}
		return nil
	})
	if err != nil {
		return PurchaseOutput{}, err
	}

	if out.AlarmTriggered {
		log.WithFields(log.Fields{
			"product_id":   productID,
			"product_name": out.ProductName,
			"quantity":     out.NewQuantity,
		}).Warn("Low stock alarm")
	}

	return out, nil
}
