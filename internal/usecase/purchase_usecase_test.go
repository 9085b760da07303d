package usecase_test

import (
	"context"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type PurchaseProductRepoMock struct{ mock.Mock }

func (m *PurchaseProductRepoMock) ListActive(ctx context.Context) ([]model.Product, error) {
	panic("not used in PurchaseUsecase tests")
}

func (m *PurchaseProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *PurchaseProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in PurchaseUsecase tests")
}

func (m *PurchaseProductRepoMock) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	panic("not used in PurchaseUsecase tests")
}

func (m *PurchaseProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in PurchaseUsecase tests")
}

func (m *PurchaseProductRepoMock) DecrementStock(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type PurchaseSaleRepoMock struct{ mock.Mock }

func (m *PurchaseSaleRepoMock) Create(ctx context.Context, sale *model.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *PurchaseSaleRepoMock) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.Sale, error) {
	panic("not used in PurchaseUsecase tests")
}

// txReposStubはモックをTxReposの形に束ねる
type txReposStub struct {
	products repo.ProductRepository
	sales    repo.SaleRepository
}

func (r *txReposStub) Products() repo.ProductRepository { return r.products }
func (r *txReposStub) Sales() repo.SaleRepository       { return r.sales }

// txManagerStubはトランザクションを張らずにfnを即実行する
type txManagerStub struct {
	repos repo.TxRepos
}

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

func newPurchaseUsecase(pRepo repo.ProductRepository, sRepo repo.SaleRepository) *usecase.PurchaseUsecase {
	return usecase.NewPurchaseUsecase(&txManagerStub{repos: &txReposStub{products: pRepo, sales: sRepo}})
}

// =====================
// Tests
// =====================

func TestPurchase_Success_DecrementsAndRecordsSale(t *testing.T) {
	ctx := context.Background()

	pRepo := new(PurchaseProductRepoMock)
	sRepo := new(PurchaseSaleRepoMock)
	uc := newPurchaseUsecase(pRepo, sRepo)

	//減算後の姿（quantity=9、アラームラインより上）
	after := model.Product{
		ID: 1, Name: "Coffee Beans", Quantity: 9, AlarmAt: 3, Price: 1200,
	}

	pRepo.On("DecrementStock", mock.Anything, int64(1)).Return(true, nil)
	pRepo.On("FindByID", mock.Anything, int64(1)).Return(after, nil)
	sRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Sale) bool {
		//台帳には数量1・購入時点の価格で記録される
		return s.UserID == 42 && s.ProductID == 1 && s.Quantity == 1 && s.Price == 1200
	})).Return(nil)

	out, err := uc.Purchase(ctx, 42, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), out.NewQuantity)
	assert.False(t, out.AlarmTriggered)
	assert.Equal(t, "Coffee Beans", out.ProductName)

	pRepo.AssertExpectations(t)
	sRepo.AssertExpectations(t)
}

func TestPurchase_AlarmTriggered_AtBoundary(t *testing.T) {
	ctx := context.Background()

	pRepo := new(PurchaseProductRepoMock)
	sRepo := new(PurchaseSaleRepoMock)
	uc := newPurchaseUsecase(pRepo, sRepo)

	//quantity=5, alarm_at=5 のとき購入後はnew_quantity=4でアラーム
	after := model.Product{ID: 2, Name: "Tea", Quantity: 4, AlarmAt: 5, Price: 500}

	pRepo.On("DecrementStock", mock.Anything, int64(2)).Return(true, nil)
	pRepo.On("FindByID", mock.Anything, int64(2)).Return(after, nil)
	sRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Purchase(ctx, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), out.NewQuantity)
	assert.True(t, out.AlarmTriggered)
}

func TestPurchase_OutOfStock_NoSaleCreated(t *testing.T) {
	ctx := context.Background()

	pRepo := new(PurchaseProductRepoMock)
	sRepo := new(PurchaseSaleRepoMock)
	uc := newPurchaseUsecase(pRepo, sRepo)

	//減算できず、商品自体は存在する＝在庫切れ
	pRepo.On("DecrementStock", mock.Anything, int64(3)).Return(false, nil)
	pRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.Product{ID: 3, Quantity: 0}, nil)

	_, err := uc.Purchase(ctx, 1, 3)
	assert.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "Product out of stock", he.Message)

	sRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPurchase_ProductNotFound(t *testing.T) {
	ctx := context.Background()

	pRepo := new(PurchaseProductRepoMock)
	sRepo := new(PurchaseSaleRepoMock)
	uc := newPurchaseUsecase(pRepo, sRepo)

	pRepo.On("DecrementStock", mock.Anything, int64(99)).Return(false, nil)
	pRepo.On("FindByID", mock.Anything, int64(99)).
		Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Purchase(ctx, 1, 99)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)

	sRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPurchase_SaleInsertFailure_PropagatesError(t *testing.T) {
	ctx := context.Background()

	pRepo := new(PurchaseProductRepoMock)
	sRepo := new(PurchaseSaleRepoMock)
	uc := newPurchaseUsecase(pRepo, sRepo)

	pRepo.On("DecrementStock", mock.Anything, int64(1)).Return(true, nil)
	pRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Quantity: 1, AlarmAt: 0, Price: 100}, nil)
	sRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	//Sale追記に失敗したらエラー（txManagerが両方ロールバックする）
	_, err := uc.Purchase(ctx, 1, 1)
	assert.Error(t, err)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
}

func TestPurchase_InvalidArgs(t *testing.T) {
	uc := newPurchaseUsecase(new(PurchaseProductRepoMock), new(PurchaseSaleRepoMock))

	_, err := uc.Purchase(context.Background(), 0, 1)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, 401, he.Status)

	_, err = uc.Purchase(context.Background(), 1, 0)
	he, _ = usecase.AsHTTPError(err)
	assert.Equal(t, 400, he.Status)
}

// =====================
// 同時購入（在庫1にN並列）
// =====================

// fakeStockStoreは条件付きUPDATE相当の減算をメモリ上で再現する。
type fakeStockStore struct {
	mu      sync.Mutex
	product model.Product
	sales   []model.Sale
}

func (s *fakeStockStore) ListActive(ctx context.Context) ([]model.Product, error) {
	panic("not used")
}

func (s *fakeStockStore) FindByID(ctx context.Context, id int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.product.ID {
		return model.Product{}, repo.ErrNotFound
	}
	return s.product, nil
}

func (s *fakeStockStore) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used")
}

func (s *fakeStockStore) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	panic("not used")
}

func (s *fakeStockStore) SoftDelete(ctx context.Context, id int64) error {
	panic("not used")
}

// 条件チェックと減算をひとつのクリティカルセクションで行う
//（DBの条件付きUPDATEが持つ原子性に対応する）。
func (s *fakeStockStore) DecrementStock(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.product.ID || s.product.Quantity <= 0 {
		return false, nil
	}
	s.product.Quantity--
	s.product.IsAlarm = s.product.Quantity <= s.product.AlarmAt
	return true, nil
}

func (s *fakeStockStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, *sale)
	return nil
}

type fakeSaleRepo struct{ store *fakeStockStore }

func (r *fakeSaleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.store.CreateSale(ctx, sale)
}

func (r *fakeSaleRepo) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.Sale, error) {
	panic("not used")
}

func TestPurchase_Concurrent_LastUnitSoldExactlyOnce(t *testing.T) {
	store := &fakeStockStore{
		product: model.Product{ID: 7, Name: "Last One", Quantity: 1, AlarmAt: 0, Price: 300},
	}
	uc := newPurchaseUsecase(store, &fakeSaleRepo{store: store})

	const n = 20
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Purchase(context.Background(), int64(i+1), 7)
			results[i] = err
		}(i)
	}
	wg.Wait()

	//成功はちょうど1回、残りは在庫切れ
	successes := 0
	outOfStock := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if he, ok := usecase.AsHTTPError(err); ok && he.Message == "Product out of stock" {
			outOfStock++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, outOfStock)
	assert.Equal(t, int64(0), store.product.Quantity)
	assert.Len(t, store.sales, 1)
}
