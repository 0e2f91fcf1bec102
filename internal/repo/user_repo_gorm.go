package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-directory/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Create inserts the user row only; ContactID and EmailID must already be set.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// joinedRow is one users row with its contact and email columns; the joined
// side is nullable because the read uses LEFT JOIN.
type joinedRow struct {
	ID              uint
	Name            string
	Gender          string
	ContactID       uint
	EmailID         uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
	JoinedContactID *uint
	Phone           *string
	Zipcode         *string
	JoinedEmailID   *uint
	Email           *string
}

func (row joinedRow) toDomain() domain.User {
	u := domain.User{
		ID:        row.ID,
		Name:      row.Name,
		Gender:    row.Gender,
		ContactID: row.ContactID,
		EmailID:   row.EmailID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.JoinedContactID != nil {
		u.Contact = &domain.Contact{ID: *row.JoinedContactID, Phone: deref(row.Phone), Zipcode: deref(row.Zipcode)}
	}
	if row.JoinedEmailID != nil {
		u.Email = &domain.Email{ID: *row.JoinedEmailID, Email: deref(row.Email)}
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *UserRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users").
		Select(`users.id, users.name, users.gender, users.contact_id, users.email_id,
			users.created_at, users.updated_at,
			contacts.id AS joined_contact_id, contacts.phone, contacts.zipcode,
			emails.id AS joined_email_id, emails.email`).
		Joins("LEFT JOIN contacts ON contacts.id = users.contact_id").
		Joins("LEFT JOIN emails ON emails.id = users.email_id")
}

// FindJoined returns nil, nil when no user row matches.
func (r *UserRepo) FindJoined(ctx context.Context, id uint) (*domain.User, error) {
	var rows []joinedRow
	if err := r.joined(ctx).Where("users.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := rows[0].toDomain()
	return &u, nil
}

func (r *UserRepo) ListJoined(ctx context.Context) ([]domain.User, error) {
	var rows []joinedRow
	if err := r.joined(ctx).Order("users.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Repoint writes name, gender and both references; created_at is left alone.
func (r *UserRepo) Repoint(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":       u.Name,
			"gender":     u.Gender,
			"contact_id": u.ContactID,
			"email_id":   u.EmailID,
		}).Error
}

func (r *UserRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}

func (r *UserRepo) CountByContact(ctx context.Context, contactID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("contact_id = ?", contactID).Count(&n).Error
	return n, err
}

func (r *UserRepo) CountByEmail(ctx context.Context, emailID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email_id = ?", emailID).Count(&n).Error
	return n, err
}
