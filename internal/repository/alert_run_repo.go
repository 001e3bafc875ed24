package repository

import (
	"context"
	"wise-investing/internal/model"
	"wise-investing/pkg/utils"

	"gorm.io/gorm"
)

type AlertRunRepository interface {
	Create(ctx context.Context, run *model.AlertRun, opts ...utils.DBOption) error
	Update(ctx context.Context, run *model.AlertRun, opts ...utils.DBOption) error
}

type alertRunRepository struct {
	db *gorm.DB
}

func NewAlertRunRepository(db *gorm.DB) AlertRunRepository {
	return &alertRunRepository{db: db}
}

func (r *alertRunRepository) Create(ctx context.Context, run *model.AlertRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(run).Error
}

func (r *alertRunRepository) Update(ctx context.Context, run *model.AlertRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Save(run).Error
}
