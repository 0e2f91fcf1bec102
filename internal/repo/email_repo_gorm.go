package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"user-directory/internal/domain"
)

type EmailRepo struct{ db *gorm.DB }

func NewEmailRepo(db *gorm.DB) *EmailRepo { return &EmailRepo{db: db} }

var _ domain.EmailRepository = (*EmailRepo)(nil)

func (r *EmailRepo) Create(ctx context.Context, e *domain.Email) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmailRepo) FindByID(ctx context.Context, id uint) (*domain.Email, error) {
	var e domain.Email
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmailRepo) FindByValue(ctx context.Context, email string) (*domain.Email, error) {
	var es []domain.Email
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("id ASC").Limit(1).Find(&es).Error
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, nil
	}
	return &es[0], nil
}

func (r *EmailRepo) Update(ctx context.Context, e *domain.Email) error {
	return r.db.WithContext(ctx).
		Model(&domain.Email{}).
		Where("id = ?", e.ID).
		Update("email", e.Email).Error
}

func (r *EmailRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Email{})
	return res.RowsAffected, res.Error
}
