package service

import (
	"context"
	"math"
	"strings"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/events"
	"github.com/Skotchmaster/quickcart/internal/models"
	"github.com/Skotchmaster/quickcart/internal/repo"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

// ProductIndex mirrors products into a full-text search engine.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is optional; without it search falls back to the database.
	Index ProductIndex
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("name is required")
	}

	category := &models.Category{Name: name, Description: description}
	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCategories, category.ID, "category_created", category)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string, description *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("name is required")
	}

	category, err := s.Repo.ReplaceCategory(ctx, id, name, description)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCategories, category.ID, "category_updated", category)
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicCategories, id, "category_deleted", nil)
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) validateProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Validation("name is required")
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return domain.Validation("price must be a non-negative number")
	}
	if p.Stock < 0 {
		return domain.Validation("stock must be >= 0")
	}

	ok, err := s.Repo.CategoryExists(ctx, p.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Validation("category %d does not exist", p.CategoryID)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	p.ID = 0
	if err := s.validateProduct(ctx, &p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID, "product_created", p)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, p models.Product) (*models.Product, error) {
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, &p); err != nil {
		return nil, err
	}
	updated, err := s.Repo.ReplaceProduct(ctx, id, p)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, *updated)
	publish(ctx, s.Events, events.TopicProducts, updated.ID, "product_updated", updated)
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_unindex_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id, "product_deleted", nil)
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, domain.Validation("query is required")
	}
	if s.Index != nil {
		return s.Index.Search(ctx, query, offset, limit)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", p.ID, "error", err)
	}
}
