package domain

import "context"

type Email struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Email string `gorm:"size:191" json:"email"`
}

func (Email) TableName() string { return "emails" }

type EmailRepository interface {
	Create(ctx context.Context, e *Email) error
	FindByID(ctx context.Context, id uint) (*Email, error)
	FindByValue(ctx context.Context, email string) (*Email, error)
	Update(ctx context.Context, e *Email) error
	Delete(ctx context.Context, id uint) (int64, error)
}
