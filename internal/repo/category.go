package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/models"
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Category{}, "name = ?", c.Name)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateCategory
		}
		return tx.Create(c).Error
	})
	return duplicate(err, domain.ErrDuplicateCategory)
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id uint) (bool, error) {
	return exists(r.DB.WithContext(ctx), &models.Category{}, "id = ?", id)
}

func (r *GormRepo) ReplaceCategory(ctx context.Context, id uint, name string, description *string) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, domain.ErrCategoryNotFound)
		}

		taken, err := exists(tx, &models.Category{}, "name = ? AND id <> ?", name, id)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateCategory
		}

		category.Name = name
		category.Description = description
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, duplicate(err, domain.ErrDuplicateCategory)
	}
	return &category, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inUse, err := exists(tx, &models.Product{}, "category_id = ?", id)
		if err != nil {
			return err
		}
		if inUse {
			return domain.ErrCategoryInUse
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}
