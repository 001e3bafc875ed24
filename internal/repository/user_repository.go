package repository

import (
	"context"
	"errors"
	"fmt"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/pkg/utils"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error)
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error)
	GetUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error)
	CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error
	LinkTelegramChat(ctx context.Context, userID uint, chatID int64, opts ...utils.DBOption) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, dto.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, dto.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetUsersWithTelegram(ctx context.Context, opts ...utils.DBOption) ([]model.User, error) {
	var users []model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("telegram_chat_id IS NOT NULL").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(user).Error
}

// LinkTelegramChat sets the chat id only when the user has none yet.
// It reports false when the user was already linked.
func (r *userRepository) LinkTelegramChat(ctx context.Context, userID uint, chatID int64, opts ...utils.DBOption) (bool, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Model(&model.User{}).
		Where("id = ? AND telegram_chat_id IS NULL", userID).
		Update("telegram_chat_id", chatID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
