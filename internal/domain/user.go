package domain

import (
	"context"
	"time"
)

// User is the aggregate root. Contact and Email are filled by reads and may be
// nil when the referenced row is missing.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Gender    string    `gorm:"size:16" json:"gender"`
	ContactID uint      `gorm:"not null;index" json:"contactId"`
	EmailID   uint      `gorm:"not null;index" json:"emailId"`
	Contact   *Contact  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"contact"`
	Email     *Email    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindJoined(ctx context.Context, id uint) (*User, error)
	ListJoined(ctx context.Context) ([]User, error)
	Repoint(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) (int64, error)
	CountByContact(ctx context.Context, contactID uint) (int64, error)
	CountByEmail(ctx context.Context, emailID uint) (int64, error)
}

// AggregateStore is the contract the HTTP gateway consumes.
type AggregateStore interface {
	Create(ctx context.Context, in AggregateInput) (*User, error)
	Get(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uint, in AggregateInput) error
	Delete(ctx context.Context, id uint) error
}
