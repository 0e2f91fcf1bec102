// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-directory/internal/core/database"
	"user-directory/internal/domain"
	"user-directory/internal/repo"
)

var seq atomic.Int64

// DB returns a migrated in-memory SQLite handle private to tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close(db) })

	if err := repo.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zap.NewNop()
}

func Count(tb testing.TB, db *gorm.DB, model any) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count %T: %v", model, err)
	}
	return n
}

// SeedUser writes one aggregate directly through the repos, bypassing the service.
func SeedUser(tb testing.TB, db *gorm.DB, name, phone, zipcode, email string) *domain.User {
	tb.Helper()
	ctx := context.Background()
	set := repo.NewSet(db)

	c := &domain.Contact{Phone: phone, Zipcode: zipcode}
	if err := set.Contacts.Create(ctx, c); err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	e := &domain.Email{Email: email}
	if err := set.Emails.Create(ctx, e); err != nil {
		tb.Fatalf("seed email: %v", err)
	}
	u := &domain.User{Name: name, Gender: "F", ContactID: c.ID, EmailID: e.ID}
	if err := set.Users.Create(ctx, u); err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	u.Contact, u.Email = c, e
	return u
}
