package repo

import (
	"gorm.io/gorm"

	"user-directory/internal/domain"
)

// Set bundles the table repos bound to one handle, either the pool or a tx.
type Set struct {
	Users    domain.UserRepository
	Contacts domain.ContactRepository
	Emails   domain.EmailRepository
}

func NewSet(db *gorm.DB) Set {
	return Set{
		Users:    NewUserRepo(db),
		Contacts: NewContactRepo(db),
		Emails:   NewEmailRepo(db),
	}
}

// Models lists the tables in creation order for AutoMigrate.
func Models() []any {
	return []any{&domain.Contact{}, &domain.Email{}, &domain.User{}}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
