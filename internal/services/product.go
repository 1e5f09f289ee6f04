package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storeadmin/internal/client"
	"storeadmin/internal/logging"
	"storeadmin/internal/models"
)

// Filters are the three catalog predicates, combined conjunctively:
// case-insensitive name substring, in-stock only, exact category match.
// Zero values disable the corresponding predicate.
type Filters struct {
	Search   string
	InStock  bool
	Category string
}

// ProductService mirrors the remote product catalog in memory and applies
// mutations in two phases: a local patch staged under a change ID, then
// committed on server confirmation or rolled back on failure. Additions are
// applied only after the server confirms.
type ProductService interface {
	Fetch(ctx context.Context) error
	All() []models.Product
	Filtered() []models.Product
	SetFilters(f Filters)
	ResetFilters()
	CurrentFilters() Filters
	Page(page, perPage int) ([]models.Product, int)

	Get(ctx context.Context, id int64) (*models.Product, error)
	Add(ctx context.Context, p models.Product) (*models.Product, error)
	Update(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id int64) error
}

type pendingProduct struct {
	index  int
	before *models.Product // nil when the change removed nothing
}

type productService struct {
	client   client.Client
	sessions sessionEnder
	log      logging.Logger

	mu       sync.RWMutex
	products []models.Product
	filters  Filters
	pending  map[string]pendingProduct
}

func NewProductService(c client.Client, sessions sessionEnder, log logging.Logger) ProductService {
	return &productService{
		client:   c,
		sessions: sessions,
		log:      log.With("component", "products"),
		pending:  make(map[string]pendingProduct),
	}
}

func (s *productService) Fetch(ctx context.Context) error {
	items, err := s.client.ListProducts(ctx)
	if err != nil {
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("product fetch error: %w", err)
	}
	s.mu.Lock()
	s.products = items
	s.mu.Unlock()
	return nil
}

func (s *productService) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Filtered applies the active predicates in order: search, in-stock,
// category. An empty filter set returns the whole collection.
func (s *productService) Filtered() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	query := strings.ToLower(s.filters.Search)
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if s.filters.InStock && !p.InStock() {
			continue
		}
		if s.filters.Category != "" && p.Category != s.filters.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *productService) SetFilters(f Filters) {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

func (s *productService) ResetFilters() {
	s.SetFilters(Filters{})
}

func (s *productService) CurrentFilters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Page slices the filtered view. Pages are 1-based; an out-of-range page
// clamps into the valid span. The second result is the total page count.
func (s *productService) Page(page, perPage int) ([]models.Product, int) {
	items := s.Filtered()
	if perPage <= 0 || len(items) == 0 {
		return nil, 0
	}

	totalPages := (len(items) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := min(start+perPage, len(items))
	return items[start:end], totalPages
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.client.GetProduct(ctx, id)
	if err != nil {
		endSessionIfExpired(ctx, s.sessions, err)
		return nil, fmt.Errorf("product fetch error: %w", err)
	}
	return p, nil
}

// Add confirms with the server first; the local collection only sees the
// item once the server assigned it an ID.
func (s *productService) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	created, err := s.client.CreateProduct(ctx, p)
	if err != nil {
		endSessionIfExpired(ctx, s.sessions, err)
		return nil, fmt.Errorf("product add error: %w", err)
	}

	s.mu.Lock()
	s.products = append(s.products, *created)
	s.mu.Unlock()
	return created, nil
}

func (s *productService) Update(ctx context.Context, p models.Product) error {
	changeID := s.stageReplace(p)

	if err := s.client.UpdateProduct(ctx, p); err != nil {
		s.rollback(changeID)
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("product update error: %w", err)
	}
	s.commit(changeID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	changeID := s.stageRemove(id)

	if err := s.client.DeleteProduct(ctx, id); err != nil {
		s.rollback(changeID)
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("product delete error: %w", err)
	}
	s.commit(changeID)
	return nil
}

// stageReplace applies the new version locally and records the prior one
// under a fresh change ID so a failed server call can be undone. When the
// item is not in the local mirror there is nothing to undo and the empty
// change ID is returned.
func (s *productService) stageReplace(p models.Product) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == p.ID {
			before := s.products[i]
			s.products[i] = p
			changeID := uuid.NewString()
			s.pending[changeID] = pendingProduct{index: i, before: &before}
			return changeID
		}
	}
	return ""
}

func (s *productService) stageRemove(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			before := s.products[i]
			s.products = append(s.products[:i], s.products[i+1:]...)
			changeID := uuid.NewString()
			s.pending[changeID] = pendingProduct{index: i, before: &before}
			return changeID
		}
	}
	return ""
}

func (s *productService) commit(changeID string) {
	if changeID == "" {
		return
	}
	s.mu.Lock()
	delete(s.pending, changeID)
	s.mu.Unlock()
}

// rollback restores the staged prior state for this change only; other
// in-flight changes keep their own snapshots.
func (s *productService) rollback(changeID string) {
	if changeID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	change, ok := s.pending[changeID]
	if !ok {
		return
	}
	delete(s.pending, changeID)

	for i := range s.products {
		if s.products[i].ID == change.before.ID {
			s.products[i] = *change.before
			return
		}
	}
	// The item was removed locally; put it back near where it was.
	idx := min(change.index, len(s.products))
	s.products = append(s.products[:idx], append([]models.Product{*change.before}, s.products[idx:]...)...)
}
