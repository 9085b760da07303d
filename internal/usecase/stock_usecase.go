package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理者向けの在庫CRUD。
// 変更系は必ず監査ログを残す。
type StockUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
}

// DI
func NewStockUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
) *StockUsecase {
	return &StockUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
	}
}

type CreateStockInput struct {
	Name      string
	Quantity  int64
	AlarmAt   int64
	Price     float64
	ImagePath string
}

// 部分更新。nilのフィールドは触らない。
type UpdateStockInput struct {
	Name      *string
	Quantity  *int64
	AlarmAt   *int64
	Price     *float64
	ImagePath *string
}

func (u *StockUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in CreateStockInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "product_name required")
	}
	if in.Quantity < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	if in.AlarmAt < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "alarm_at must be >= 0")
	}
	if in.Price < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:      strings.TrimSpace(in.Name),
		Quantity:  in.Quantity,
		AlarmAt:   in.AlarmAt,
		IsAlarm:   in.Quantity <= in.AlarmAt,
		Price:     in.Price,
		Status:    model.ProductStatusActive,
		ImagePath: in.ImagePath,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（登録）
	if err := u.writeAudit(ctx, adminUserID, model.AuditActionCreateProduct, p.ID, nil, &p); err != nil {
		return 0, err
	}

	return p.ID, nil
}

func (u *StockUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in UpdateStockInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	//変更前のスナップショット（監査用）
	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//渡されたフィールドだけ更新対象にする
	fields := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, "product_name required")
		}
		fields["product_name"] = strings.TrimSpace(*in.Name)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
		}
		fields["quantity"] = *in.Quantity
		//在庫を直したらアラームも引き直す
		alarmAt := before.AlarmAt
		if in.AlarmAt != nil {
			alarmAt = *in.AlarmAt
		}
		fields["is_alarm"] = *in.Quantity <= alarmAt
	}
	if in.AlarmAt != nil {
		if *in.AlarmAt < 0 {
			return NewHTTPError(http.StatusBadRequest, "alarm_at must be >= 0")
		}
		fields["alarm_at"] = *in.AlarmAt
		if in.Quantity == nil {
			fields["is_alarm"] = before.Quantity <= *in.AlarmAt
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		fields["price"] = *in.Price
	}
	if in.ImagePath != nil {
		fields["image_path"] = *in.ImagePath
	}

	if len(fields) == 0 {
		//何も指定されなければ何もしない（updated_atも動かない）
		return nil
	}

	if err := u.productRepo.UpdateFields(ctx, productID, fields); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（編集）
	if err := u.writeAudit(ctx, adminUserID, model.AuditActionUpdateProduct, productID, &before, &after); err != nil {
		return err
	}

	return nil
}

func (u *StockUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//行は消さずdeleted_atを立てる。過去のSaleからの参照は生きたまま。
	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（削除）
	if err := u.writeAudit(ctx, adminUserID, model.AuditActionDeleteProduct, productID, &before, nil); err != nil {
		return err
	}

	return nil
}

// 管理者向けの一覧。削除済みは出ない。
func (u *StockUsecase) AdminListStock(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func (u *StockUsecase) writeAudit(ctx context.Context, actorID int64, action model.AuditAction, productID int64, before, after *model.Product) error {
	var beforeJSON, afterJSON string
	if before != nil {
		b, _ := json.Marshal(before)
		beforeJSON = string(b)
	}
	if after != nil {
		b, _ := json.Marshal(after)
		afterJSON = string(b)
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
