package domain

import "context"

type Contact struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Phone   string `gorm:"size:32" json:"phone"`
	Zipcode string `gorm:"size:16" json:"zipcode"`
}

func (Contact) TableName() string { return "contacts" }

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	FindByID(ctx context.Context, id uint) (*Contact, error)
	FindByValue(ctx context.Context, phone, zipcode string) (*Contact, error)
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id uint) (int64, error)
}
