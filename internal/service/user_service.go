package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-directory/internal/domain"
	"user-directory/internal/repo"
)

const (
	OpCreate = "user.create"
	OpGet    = "user.get"
	OpList   = "user.list"
	OpUpdate = "user.update"
	OpDelete = "user.delete"
)

type Deps struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Runner   TxRunner
	Hooks    Hooks
	Strategy UpdateStrategy
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Strategy == nil {
		d.Strategy = FindOrCreate{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// UserService is the aggregate store for users, contacts and emails.
type UserService struct {
	db       *gorm.DB
	log      *zap.Logger
	runner   TxRunner
	hooks    Hooks
	strategy UpdateStrategy
	validate *validator.Validate
}

var _ domain.AggregateStore = (*UserService)(nil)

func NewUserService(d Deps) *UserService {
	d = d.withDefaults()
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &UserService{
		db:       d.DB,
		log:      d.Log,
		runner:   d.Runner,
		hooks:    d.Hooks,
		strategy: d.Strategy,
		validate: v,
	}
}

func (s *UserService) Strategy() string { return s.strategy.Name() }

func (s *UserService) check(in domain.AggregateInput) (domain.AggregateInput, error) {
	in = in.Normalize()
	if err := s.validate.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}

// Create inserts contact, email and user in that order inside one transaction.
func (s *UserService) Create(ctx context.Context, in domain.AggregateInput) (out *domain.User, err error) {
	defer s.observe(OpCreate, time.Now(), &err)

	in, err = s.check(in)
	if err != nil {
		return nil, mapError(OpCreate, err)
	}

	err = s.runner.InTx(ctx, func(tx *gorm.DB) error {
		repos := repo.NewSet(tx)
		c := &domain.Contact{Phone: in.Phone, Zipcode: in.Zipcode}
		if err := repos.Contacts.Create(ctx, c); err != nil {
			return err
		}
		e := &domain.Email{Email: in.Email}
		if err := repos.Emails.Create(ctx, e); err != nil {
			return err
		}
		u := &domain.User{Name: in.Name, Gender: in.Gender, ContactID: c.ID, EmailID: e.ID}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		u.Contact, u.Email = c, e
		out = u
		return nil
	})
	if err != nil {
		return nil, mapError(OpCreate, err)
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (u *domain.User, err error) {
	defer s.observe(OpGet, time.Now(), &err)

	u, err = repo.NewUserRepo(s.db).FindJoined(ctx, id)
	if err != nil {
		return nil, mapError(OpGet, err)
	}
	if u == nil {
		return nil, notFound(OpGet, id)
	}
	return u, nil
}

// List returns every user ordered by id ascending.
func (s *UserService) List(ctx context.Context) (users []domain.User, err error) {
	defer s.observe(OpList, time.Now(), &err)

	users, err = repo.NewUserRepo(s.db).ListJoined(ctx)
	if err != nil {
		return nil, mapError(OpList, err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in domain.AggregateInput) (err error) {
	defer s.observe(OpUpdate, time.Now(), &err)

	in, err = s.check(in)
	if err != nil {
		return mapError(OpUpdate, err)
	}

	err = s.runner.InTx(ctx, func(tx *gorm.DB) error {
		repos := repo.NewSet(tx)
		u, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return notFound(OpUpdate, id)
		}
		return s.strategy.Apply(ctx, repos, u, in)
	})
	return mapError(OpUpdate, err)
}

// Delete removes the user, then its contact and email unless another user
// still references them. All of it commits or none of it does.
func (s *UserService) Delete(ctx context.Context, id uint) (err error) {
	defer s.observe(OpDelete, time.Now(), &err)

	err = s.runner.InTx(ctx, func(tx *gorm.DB) error {
		repos := repo.NewSet(tx)
		u, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return notFound(OpDelete, id)
		}
		n, err := repos.Users.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(OpDelete, id)
		}
		if err := releaseContact(ctx, repos, u.ContactID); err != nil {
			return err
		}
		return releaseEmail(ctx, repos, u.EmailID)
	})
	return mapError(OpDelete, err)
}

func (s *UserService) observe(op string, start time.Time, errp *error) {
	status := "success"
	if errp != nil && *errp != nil {
		status = string(domain.CodeOf(*errp))
		if status == "" {
			status = "failure"
		}
		if status == string(domain.CodePersistence) {
			s.log.Error("aggregate operation failed", zap.String("op", op), zap.Error(*errp))
		}
	}
	s.hooks.ObserveOperation(op, status, time.Since(start))
}
