package service

import (
	"context"
	"fmt"
	"strings"

	"user-directory/internal/domain"
	"user-directory/internal/repo"
)

const (
	StrategyFindOrCreate = "find_or_create"
	StrategyInPlace      = "in_place"
)

// UpdateStrategy decides which contact and email rows a user points at after
// an update. It always runs inside the update transaction.
type UpdateStrategy interface {
	Name() string
	Apply(ctx context.Context, repos repo.Set, u *domain.User, in domain.AggregateInput) error
}

// ParseUpdateStrategy maps a config value to a strategy; empty means find_or_create.
func ParseUpdateStrategy(name string) (UpdateStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyFindOrCreate:
		return FindOrCreate{}, nil
	case StrategyInPlace:
		return InPlace{}, nil
	default:
		return nil, fmt.Errorf("unknown update strategy %q", name)
	}
}

// FindOrCreate reuses an existing contact with the same (phone, zipcode) and an
// existing email with the same address, creating rows only when none match.
// Two users updated to the same values end up sharing one row. Rows left
// without any user are removed.
type FindOrCreate struct{}

func (FindOrCreate) Name() string { return StrategyFindOrCreate }

func (FindOrCreate) Apply(ctx context.Context, repos repo.Set, u *domain.User, in domain.AggregateInput) error {
	c, err := repos.Contacts.FindByValue(ctx, in.Phone, in.Zipcode)
	if err != nil {
		return err
	}
	if c == nil {
		c = &domain.Contact{Phone: in.Phone, Zipcode: in.Zipcode}
		if err := repos.Contacts.Create(ctx, c); err != nil {
			return err
		}
	}

	e, err := repos.Emails.FindByValue(ctx, in.Email)
	if err != nil {
		return err
	}
	if e == nil {
		e = &domain.Email{Email: in.Email}
		if err := repos.Emails.Create(ctx, e); err != nil {
			return err
		}
	}

	prevContact, prevEmail := u.ContactID, u.EmailID
	u.Name, u.Gender = in.Name, in.Gender
	u.ContactID, u.EmailID = c.ID, e.ID
	if err := repos.Users.Repoint(ctx, u); err != nil {
		return err
	}

	if prevContact != c.ID {
		if err := releaseContact(ctx, repos, prevContact); err != nil {
			return err
		}
	}
	if prevEmail != e.ID {
		if err := releaseEmail(ctx, repos, prevEmail); err != nil {
			return err
		}
	}
	u.Contact, u.Email = c, e
	return nil
}

// InPlace rewrites the rows the user already points at. A user sharing one of
// those rows sees the new values too. A missing row is recreated.
type InPlace struct{}

func (InPlace) Name() string { return StrategyInPlace }

func (InPlace) Apply(ctx context.Context, repos repo.Set, u *domain.User, in domain.AggregateInput) error {
	c, err := repos.Contacts.FindByID(ctx, u.ContactID)
	if err != nil {
		return err
	}
	if c == nil {
		c = &domain.Contact{Phone: in.Phone, Zipcode: in.Zipcode}
		if err := repos.Contacts.Create(ctx, c); err != nil {
			return err
		}
	} else {
		c.Phone, c.Zipcode = in.Phone, in.Zipcode
		if err := repos.Contacts.Update(ctx, c); err != nil {
			return err
		}
	}

	e, err := repos.Emails.FindByID(ctx, u.EmailID)
	if err != nil {
		return err
	}
	if e == nil {
		e = &domain.Email{Email: in.Email}
		if err := repos.Emails.Create(ctx, e); err != nil {
			return err
		}
	} else {
		e.Email = in.Email
		if err := repos.Emails.Update(ctx, e); err != nil {
			return err
		}
	}

	u.Name, u.Gender = in.Name, in.Gender
	u.ContactID, u.EmailID = c.ID, e.ID
	if err := repos.Users.Repoint(ctx, u); err != nil {
		return err
	}
	u.Contact, u.Email = c, e
	return nil
}

// releaseContact deletes the contact once no user references it.
func releaseContact(ctx context.Context, repos repo.Set, id uint) error {
	if id == 0 {
		return nil
	}
	n, err := repos.Users.CountByContact(ctx, id)
	if err != nil || n > 0 {
		return err
	}
	_, err = repos.Contacts.Delete(ctx, id)
	return err
}

func releaseEmail(ctx context.Context, repos repo.Set, id uint) error {
	if id == 0 {
		return nil
	}
	n, err := repos.Users.CountByEmail(ctx, id)
	if err != nil || n > 0 {
		return err
	}
	_, err = repos.Emails.Delete(ctx, id)
	return err
}
