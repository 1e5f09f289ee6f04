package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storeadmin/internal/client"
	"storeadmin/internal/logging"
	"storeadmin/internal/models"
)

// CategoryService mirrors the remote category list with the same two-phase
// mutation discipline as products. Creating a category without allowed
// groups stores it as admin-only.
type CategoryService interface {
	Fetch(ctx context.Context) error
	All() []models.Category

	Add(ctx context.Context, c models.Category) (*models.Category, error)
	Update(ctx context.Context, c models.Category) error
	Delete(ctx context.Context, id int64) error
}

type pendingCategory struct {
	index  int
	before *models.Category
}

type categoryService struct {
	client   client.Client
	sessions sessionEnder
	log      logging.Logger

	mu         sync.RWMutex
	categories []models.Category
	pending    map[string]pendingCategory
}

func NewCategoryService(c client.Client, sessions sessionEnder, log logging.Logger) CategoryService {
	return &categoryService{
		client:   c,
		sessions: sessions,
		log:      log.With("component", "categories"),
		pending:  make(map[string]pendingCategory),
	}
}

func (s *categoryService) Fetch(ctx context.Context) error {
	items, err := s.client.ListCategories(ctx)
	if err != nil {
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("category fetch error: %w", err)
	}
	s.mu.Lock()
	s.categories = items
	s.mu.Unlock()
	return nil
}

func (s *categoryService) All() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.categories...)
}

// Add normalizes an absent allowed-group list to admin-only before asking
// the server, and mirrors the created category only after confirmation.
func (s *categoryService) Add(ctx context.Context, c models.Category) (*models.Category, error) {
	if len(c.AllowedGroups) == 0 {
		c.AllowedGroups = []models.Group{models.GroupAdmin}
	}

	created, err := s.client.CreateCategory(ctx, c)
	if err != nil {
		endSessionIfExpired(ctx, s.sessions, err)
		return nil, fmt.Errorf("category add error: %w", err)
	}

	s.mu.Lock()
	s.categories = append(s.categories, *created)
	s.mu.Unlock()
	return created, nil
}

func (s *categoryService) Update(ctx context.Context, c models.Category) error {
	changeID := s.stageReplace(c)

	if err := s.client.UpdateCategory(ctx, c); err != nil {
		s.rollback(changeID)
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("category update error: %w", err)
	}
	s.commit(changeID)
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	changeID := s.stageRemove(id)

	if err := s.client.DeleteCategory(ctx, id); err != nil {
		s.rollback(changeID)
		endSessionIfExpired(ctx, s.sessions, err)
		return fmt.Errorf("category delete error: %w", err)
	}
	s.commit(changeID)
	return nil
}

func (s *categoryService) stageReplace(c models.Category) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			before := s.categories[i]
			s.categories[i] = c
			changeID := uuid.NewString()
			s.pending[changeID] = pendingCategory{index: i, before: &before}
			return changeID
		}
	}
	return ""
}

func (s *categoryService) stageRemove(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID == id {
			before := s.categories[i]
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			changeID := uuid.NewString()
			s.pending[changeID] = pendingCategory{index: i, before: &before}
			return changeID
		}
	}
	return ""
}

func (s *categoryService) commit(changeID string) {
	if changeID == "" {
		return
	}
	s.mu.Lock()
	delete(s.pending, changeID)
	s.mu.Unlock()
}

func (s *categoryService) rollback(changeID string) {
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

	for i := range s.categories {
		if s.categories[i].ID == change.before.ID {
			s.categories[i] = *change.before
			return
		}
	}
	idx := min(change.index, len(s.categories))
	s.categories = append(s.categories[:idx], append([]models.Category{*change.before}, s.categories[idx:]...)...)
}
