package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
// ソフトデリート済みの商品は一覧にも取得にも出てこない。
type ProductRepository interface {
	//削除されていない商品を全件返す
	ListActive(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	//指定カラムだけ更新する（部分更新）。updated_atはGORMが面倒を見る。
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64) error

	// 在庫が1以上のときだけ1減らし、is_alarmも同じUPDATEで更新する。
	// 減らせたらtrue。読んでから書くのではなく条件付きUPDATE1本で行う
	//（同時購入で在庫が負になるのを防ぐ）。
	DecrementStock(ctx context.Context, id int64) (bool, error)
}
