package client

import (
	"context"

	"storeadmin/internal/models"
)

// Client is the remote storefront API surface the services depend on.
// Implementations attach the persisted bearer credential to every call and
// are responsible for the single refresh-and-retry on authorization failure.
type Client interface {
	Close() error

	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, email, password, avatarURL string) (*models.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*models.User, error)
	Health(ctx context.Context) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}
