package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"user-directory/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

var _ domain.ContactRepository = (*ContactRepo)(nil)

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContactRepo) FindByID(ctx context.Context, id uint) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByValue returns the lowest-id contact with exactly this phone and zipcode.
func (r *ContactRepo) FindByValue(ctx context.Context, phone, zipcode string) (*domain.Contact, error) {
	var cs []domain.Contact
	err := r.db.WithContext(ctx).
		Where("phone = ? AND zipcode = ?", phone, zipcode).
		Order("id ASC").
		Limit(1).
		Find(&cs).Error
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, nil
	}
	return &cs[0], nil
}

func (r *ContactRepo) Update(ctx context.Context, c *domain.Contact) error {
	return r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{"phone": c.Phone, "zipcode": c.Zipcode}).Error
}

func (r *ContactRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contact{})
	return res.RowsAffected, res.Error
}
