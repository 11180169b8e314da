package workflow

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindTransitions(ctx context.Context, flow, state string, roles []string) ([]Transition, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindTransitions(ctx context.Context, flow, state string, roles []string) ([]Transition, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var transitions []Transition
	err := r.db.WithContext(ctx).
		Where("flow = ? AND state = ?", flow, state).
		Where("role IN ?", roles).
		Order("priority DESC, action ASC").
		Find(&transitions).Error
	return transitions, err
}
