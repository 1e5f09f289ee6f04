package services

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"storeadmin/internal/logging"
	"storeadmin/internal/models"
)

// fakeClient implements client.Client for unit-testing the services.
// Behavior is configured through the *Err/*Ret fields; call counters and
// last-argument captures support assertions.
type fakeClient struct {
	CloseErr error

	LoginRet  *models.User
	LoginErr  error
	LoginHook func() // runs while the login call is "in flight"

	RegisterRet *models.User
	RegisterErr error

	LogoutErr error

	RefreshRet   *models.User
	RefreshErr   error
	RefreshCalls int32

	HealthErr error

	ProductsRet      []models.Product
	ProductsErr      error
	GetProductRet    *models.Product
	GetProductErr    error
	CreateProductRet *models.Product
	CreateProductErr error
	UpdateProductErr error
	DeleteProductErr error

	CategoriesRet     []models.Category
	CategoriesErr     error
	CreateCategoryRet *models.Category
	CreateCategoryErr error
	UpdateCategoryErr error
	DeleteCategoryErr error

	LastLoginUser      string
	LastLoginPassword  string
	LastCreateCategory models.Category
	LastUpdateProduct  models.Product
	LastDeleteProduct  int64
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	f.LastLoginUser = username
	f.LastLoginPassword = password
	if f.LoginHook != nil {
		f.LoginHook()
	}
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, username, email, password, avatarURL string) (*models.User, error) {
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context) error { return f.LogoutErr }

func (f *fakeClient) Refresh(ctx context.Context) (*models.User, error) {
	atomic.AddInt32(&f.RefreshCalls, 1)
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) Health(ctx context.Context) error { return f.HealthErr }

func (f *fakeClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return f.ProductsRet, f.ProductsErr
}

func (f *fakeClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return f.GetProductRet, f.GetProductErr
}

func (f *fakeClient) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	return f.CreateProductRet, f.CreateProductErr
}

func (f *fakeClient) UpdateProduct(ctx context.Context, p models.Product) error {
	f.LastUpdateProduct = p
	return f.UpdateProductErr
}

func (f *fakeClient) DeleteProduct(ctx context.Context, id int64) error {
	f.LastDeleteProduct = id
	return f.DeleteProductErr
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.CategoriesRet, f.CategoriesErr
}

func (f *fakeClient) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	f.LastCreateCategory = c
	if f.CreateCategoryRet == nil && f.CreateCategoryErr == nil {
		created := c
		created.ID = 100
		return &created, nil
	}
	return f.CreateCategoryRet, f.CreateCategoryErr
}

func (f *fakeClient) UpdateCategory(ctx context.Context, c models.Category) error {
	return f.UpdateCategoryErr
}

func (f *fakeClient) DeleteCategory(ctx context.Context, id int64) error {
	return f.DeleteCategoryErr
}

// fakeSessions counts forced re-authentication requests.
type fakeSessions struct {
	calls int
}

func (f *fakeSessions) EndSession(ctx context.Context) { f.calls++ }

// fakeCreds is an in-memory credential slot.
type fakeCreds struct {
	token string
}

func (f *fakeCreds) Get(ctx context.Context) (string, error)     { return f.token, nil }
func (f *fakeCreds) Set(ctx context.Context, token string) error { f.token = token; return nil }
func (f *fakeCreds) Clear(ctx context.Context) error             { f.token = ""; return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
