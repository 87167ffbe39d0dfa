package services

import (
	"context"
	"errors"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"gorm.io/gorm"
)

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

// Get returns ErrUserNotFound for unknown ids.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("load user", err)
	}
	return &u, nil
}

// Exists checks the id without loading the profile.
func (s *UserService) Exists(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrUserNotFound
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return storageErr("check user", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
