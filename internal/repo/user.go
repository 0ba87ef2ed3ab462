package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.User{}, "username = ?", u.Username)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateUsername
		}

		if u.Role.IsAdmin() {
			adminTaken, err := exists(tx, &models.User{}, "role = ?", models.RoleAdmin)
			if err != nil {
				return err
			}
			if adminTaken {
				return domain.ErrAdminExists
			}
		}

		return tx.Create(u).Error
	})
	return duplicate(err, domain.ErrConflict)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ReplaceUser overwrites username, password hash and role of user id.
func (r *GormRepo) ReplaceUser(ctx context.Context, id uint, username, passwordHash string, role models.Role) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, domain.ErrUserNotFound)
		}

		taken, err := exists(tx, &models.User{}, "username = ? AND id <> ?", username, id)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateUsername
		}

		if role.IsAdmin() {
			otherAdmin, err := exists(tx, &models.User{}, "role = ? AND id <> ?", models.RoleAdmin, id)
			if err != nil {
				return err
			}
			if otherAdmin {
				return domain.ErrAdminExists
			}
		}

		user.Username = username
		user.PasswordHash = passwordHash
		user.Role = role
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, duplicate(err, domain.ErrConflict)
	}
	return &user, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
