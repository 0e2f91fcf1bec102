package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"user-directory/internal/domain"
	"user-directory/internal/repo/testutil"
)

type opEvent struct {
	op, status string
}

type hooksRecorder struct {
	mu     sync.Mutex
	events []opEvent
}

func (h *hooksRecorder) ObserveOperation(op, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, opEvent{op: op, status: status})
}

func (h *hooksRecorder) last() opEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return opEvent{}
	}
	return h.events[len(h.events)-1]
}

// rollbackRunner runs fn in a real transaction and then fails the commit.
type rollbackRunner struct {
	db  *gorm.DB
	err error
}

func (r rollbackRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return r.err
	})
}

func newService(t *testing.T, strategy UpdateStrategy) (*UserService, *gorm.DB, *hooksRecorder) {
	t.Helper()
	db := testutil.DB(t)
	hooks := &hooksRecorder{}
	svc := NewUserService(Deps{DB: db, Log: testutil.Logger(t), Hooks: hooks, Strategy: strategy})
	return svc, db, hooks
}

func ann() domain.AggregateInput {
	return domain.AggregateInput{Name: "Ann", Gender: "F", Phone: "555-1", Zipcode: "90001", Email: "ann@x.com"}
}

func TestCreateResolvesSubmittedContactAndEmail(t *testing.T) {
	svc, db, hooks := newService(t, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 || u.Name != "Ann" || u.Gender != "F" {
		t.Fatalf("created user: got=%+v", u)
	}
	if u.Contact == nil || u.Contact.ID != u.ContactID || u.Contact.Phone != "555-1" || u.Contact.Zipcode != "90001" {
		t.Fatalf("contact: got=%+v", u.Contact)
	}
	if u.Email == nil || u.Email.ID != u.EmailID || u.Email.Email != "ann@x.com" {
		t.Fatalf("email: got=%+v", u.Email)
	}
	if u.CreatedAt.IsZero() {
		t.Fatalf("created_at should be set by the store")
	}
	for model, want := range map[any]int64{&domain.Contact{}: 1, &domain.Email{}: 1, &domain.User{}: 1} {
		if got := testutil.Count(t, db, model); got != want {
			t.Fatalf("rows in %T: want=%d got=%d", model, want, got)
		}
	}
	if ev := hooks.last(); ev.op != OpCreate || ev.status != "success" {
		t.Fatalf("hook: got=%+v", ev)
	}
}

func TestGetAfterCreateReturnsSubmittedFields(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	in := ann()
	if got.Name != in.Name || got.Gender != in.Gender {
		t.Fatalf("user fields: want=%s/%s got=%s/%s", in.Name, in.Gender, got.Name, got.Gender)
	}
	if got.Contact == nil || got.Contact.Phone != in.Phone || got.Contact.Zipcode != in.Zipcode {
		t.Fatalf("contact: got=%+v", got.Contact)
	}
	if got.Email == nil || got.Email.Email != in.Email {
		t.Fatalf("email: got=%+v", got.Email)
	}
	if got.ContactID != created.ContactID || got.EmailID != created.EmailID {
		t.Fatalf("refs: want=%d/%d got=%d/%d", created.ContactID, created.EmailID, got.ContactID, got.EmailID)
	}
}

func TestCreateTrimsInput(t *testing.T) {
	svc, _, _ := newService(t, nil)
	in := ann()
	in.Name = "  Ann  "
	in.Email = " ann@x.com "
	u, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Name != "Ann" || u.Email.Email != "ann@x.com" {
		t.Fatalf("trim: got name=%q email=%q", u.Name, u.Email.Email)
	}
}

func TestCreateRejectsInvalidInputBeforeStorage(t *testing.T) {
	svc, db, hooks := newService(t, nil)
	ctx := context.Background()

	cases := map[string]domain.AggregateInput{
		"missing name": {Gender: "F", Phone: "1", Zipcode: "2", Email: "a@x.com"},
		"bad email":    {Name: "Ann", Email: "not-an-email"},
		"long zipcode": {Name: "Ann", Zipcode: "12345678901234567"},
	}
	for name, in := range cases {
		_, err := svc.Create(ctx, in)
		if !domain.IsValidation(err) {
			t.Fatalf("%s: want validation error got %v", name, err)
		}
	}
	if n := testutil.Count(t, db, &domain.Contact{}); n != 0 {
		t.Fatalf("contacts written despite validation failure: %d", n)
	}
	if ev := hooks.last(); ev.status != string(domain.CodeValidation) {
		t.Fatalf("hook status: want=%q got=%q", domain.CodeValidation, ev.status)
	}
}

func TestValidationMessageUsesJSONFieldName(t *testing.T) {
	svc, _, _ := newService(t, nil)
	_, err := svc.Create(context.Background(), domain.AggregateInput{Email: "a@x.com"})
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("want *domain.Error got %T", err)
	}
	if de.Message != "name is required" {
		t.Fatalf("message: want=%q got=%q", "name is required", de.Message)
	}
}

func TestCreateIsAtomicWhenALaterInsertFails(t *testing.T) {
	svc, db, _ := newService(t, nil)
	if err := db.Migrator().DropTable(&domain.Email{}); err != nil {
		t.Fatalf("drop emails: %v", err)
	}

	_, err := svc.Create(context.Background(), ann())
	if !domain.IsPersistence(err) {
		t.Fatalf("want persistence error got %v", err)
	}
	if n := testutil.Count(t, db, &domain.Contact{}); n != 0 {
		t.Fatalf("contact insert should have rolled back, found %d rows", n)
	}
	if n := testutil.Count(t, db, &domain.User{}); n != 0 {
		t.Fatalf("users: want=0 got=%d", n)
	}
}

func TestCommitFailureSurfacesPersistenceError(t *testing.T) {
	db := testutil.DB(t)
	commitErr := errors.New("commit refused")
	svc := NewUserService(Deps{DB: db, Runner: rollbackRunner{db: db, err: commitErr}})

	_, err := svc.Create(context.Background(), ann())
	if !domain.IsPersistence(err) {
		t.Fatalf("want persistence error got %v", err)
	}
	if !errors.Is(err, commitErr) {
		t.Fatalf("cause should be kept, got %v", err)
	}
	for _, model := range []any{&domain.Contact{}, &domain.Email{}, &domain.User{}} {
		if n := testutil.Count(t, db, model); n != 0 {
			t.Fatalf("rows in %T after failed commit: %d", model, n)
		}
	}
}

func TestGetMissingUserIsNotFound(t *testing.T) {
	svc, _, hooks := newService(t, nil)
	_, err := svc.Get(context.Background(), 99)
	if !domain.IsNotFound(err) {
		t.Fatalf("want not_found got %v", err)
	}
	if ev := hooks.last(); ev.op != OpGet || ev.status != string(domain.CodeNotFound) {
		t.Fatalf("hook: got=%+v", ev)
	}
}

func TestGetKeepsUserWhoseContactRowIsGone(t *testing.T) {
	svc, db, _ := newService(t, nil)
	ctx := context.Background()
	u, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		t.Fatalf("pragma off: %v", err)
	}
	if err := db.Exec("DELETE FROM contacts WHERE id = ?", u.ContactID).Error; err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("pragma on: %v", err)
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Contact != nil {
		t.Fatalf("contact: want nil got=%+v", got.Contact)
	}
	if got.Email == nil || got.Email.Email != "ann@x.com" {
		t.Fatalf("email: got=%+v", got.Email)
	}

	users, err := svc.List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("List: want 1 user got=%d err=%v", len(users), err)
	}
}

func TestListOrdersByID(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("List empty: want empty non-nil slice got=%v", empty)
	}

	var ids []uint
	for _, name := range []string{"Cid", "Ann", "Bob"} {
		in := ann()
		in.Name = name
		u, err := svc.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		ids = append(ids, u.ID)
	}
	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len: want=3 got=%d", len(users))
	}
	for i, u := range users {
		if u.ID != ids[i] {
			t.Fatalf("order[%d]: want=%d got=%d", i, ids[i], u.ID)
		}
	}
}

func TestAnnScenario(t *testing.T) {
	svc, db, _ := newService(t, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Name != "Ann" || u.Contact == nil || u.Email == nil {
		t.Fatalf("created: got=%+v", u)
	}
	oldContact := u.ContactID

	upd := domain.AggregateInput{Name: "Ann", Gender: "F", Phone: "555-2", Zipcode: "90002", Email: "ann2@x.com"}
	if err := svc.Update(ctx, u.ID, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Contact.Phone != "555-2" || got.Contact.Zipcode != "90002" || got.Email.Email != "ann2@x.com" {
		t.Fatalf("updated values: contact=%+v email=%+v", got.Contact, got.Email)
	}
	if got.ContactID == oldContact {
		t.Fatalf("contact ref should change, still %d", oldContact)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("created_at changed: before=%v after=%v", u.CreatedAt, got.CreatedAt)
	}
	if n := testutil.Count(t, db, &domain.Contact{}); n != 1 {
		t.Fatalf("old contact should be released, contacts=%d", n)
	}

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, u.ID); !domain.IsNotFound(err) {
		t.Fatalf("Get after delete: want not_found got %v", err)
	}
	for _, model := range []any{&domain.Contact{}, &domain.Email{}, &domain.User{}} {
		if n := testutil.Count(t, db, model); n != 0 {
			t.Fatalf("dangling rows in %T: %d", model, n)
		}
	}
}

func TestFindOrCreateSharesMatchingContact(t *testing.T) {
	svc, db, _ := newService(t, FindOrCreate{})
	ctx := context.Background()

	a, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	bIn := domain.AggregateInput{Name: "Bob", Gender: "M", Phone: "555-7", Zipcode: "10001", Email: "bob@x.com"}
	b, err := svc.Create(ctx, bIn)
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}

	shared := domain.AggregateInput{Phone: "777-0", Zipcode: "20002"}
	shared.Name, shared.Email = "Ann", "ann@x.com"
	if err := svc.Update(ctx, a.ID, shared); err != nil {
		t.Fatalf("Update a: %v", err)
	}
	shared.Name, shared.Email = "Bob", "bob@x.com"
	if err := svc.Update(ctx, b.ID, shared); err != nil {
		t.Fatalf("Update b: %v", err)
	}

	ga, _ := svc.Get(ctx, a.ID)
	gb, _ := svc.Get(ctx, b.ID)
	if ga.ContactID != gb.ContactID {
		t.Fatalf("contact refs: want shared got a=%d b=%d", ga.ContactID, gb.ContactID)
	}
	if ga.EmailID == gb.EmailID {
		t.Fatalf("emails differ and must not be shared")
	}
	if n := testutil.Count(t, db, &domain.Contact{}); n != 1 {
		t.Fatalf("contacts: want=1 (no duplicate, old rows released) got=%d", n)
	}
}

func TestDeleteKeepsContactStillReferencedByAnotherUser(t *testing.T) {
	svc, db, _ := newService(t, FindOrCreate{})
	ctx := context.Background()

	a, _ := svc.Create(ctx, ann())
	bIn := ann()
	bIn.Name, bIn.Email = "Bob", "bob@x.com"
	b, _ := svc.Create(ctx, bIn)
	if err := svc.Update(ctx, b.ID, bIn); err != nil {
		t.Fatalf("Update b: %v", err)
	}
	gb, _ := svc.Get(ctx, b.ID)
	if gb.ContactID != a.ContactID {
		t.Fatalf("b should reuse a's contact: a=%d b=%d", a.ContactID, gb.ContactID)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete a: %v", err)
	}
	gb, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get b: %v", err)
	}
	if gb.Contact == nil || gb.Contact.Phone != "555-1" {
		t.Fatalf("shared contact must survive: got=%+v", gb.Contact)
	}

	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete b: %v", err)
	}
	for _, model := range []any{&domain.Contact{}, &domain.Email{}, &domain.User{}} {
		if n := testutil.Count(t, db, model); n != 0 {
			t.Fatalf("rows left in %T: %d", model, n)
		}
	}
}

func TestInPlaceMutatesLinkedRows(t *testing.T) {
	svc, db, _ := newService(t, InPlace{})
	ctx := context.Background()

	u, err := svc.Create(ctx, ann())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	upd := domain.AggregateInput{Name: "Anna", Gender: "F", Phone: "555-2", Zipcode: "90002", Email: "anna@x.com"}
	if err := svc.Update(ctx, u.ID, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContactID != u.ContactID || got.EmailID != u.EmailID {
		t.Fatalf("in_place must keep refs: want=%d/%d got=%d/%d", u.ContactID, u.EmailID, got.ContactID, got.EmailID)
	}
	if got.Name != "Anna" || got.Contact.Phone != "555-2" || got.Email.Email != "anna@x.com" {
		t.Fatalf("values: got=%+v contact=%+v email=%+v", got, got.Contact, got.Email)
	}
	if n := testutil.Count(t, db, &domain.Contact{}); n != 1 {
		t.Fatalf("contacts: want=1 got=%d", n)
	}
}

func TestUpdateAndDeleteMissingUser(t *testing.T) {
	for _, strategy := range []UpdateStrategy{FindOrCreate{}, InPlace{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			svc, db, _ := newService(t, strategy)
			ctx := context.Background()

			if err := svc.Update(ctx, 5, ann()); !domain.IsNotFound(err) {
				t.Fatalf("Update: want not_found got %v", err)
			}
			if n := testutil.Count(t, db, &domain.Contact{}); n != 0 {
				t.Fatalf("update of missing user wrote contacts: %d", n)
			}
			if err := svc.Delete(ctx, 5); !domain.IsNotFound(err) {
				t.Fatalf("Delete: want not_found got %v", err)
			}
		})
	}
}

func TestDeleteRollsBackWhenCommitFails(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	seeded := testutil.SeedUser(t, db, "Ann", "555-1", "90001", "ann@x.com")

	svc := NewUserService(Deps{DB: db, Runner: rollbackRunner{db: db, err: errors.New("disk gone")}})
	if err := svc.Delete(ctx, seeded.ID); !domain.IsPersistence(err) {
		t.Fatalf("Delete: want persistence got %v", err)
	}
	for _, model := range []any{&domain.Contact{}, &domain.Email{}, &domain.User{}} {
		if n := testutil.Count(t, db, model); n != 1 {
			t.Fatalf("rows in %T after rollback: want=1 got=%d", model, n)
		}
	}
}

func TestParseUpdateStrategy(t *testing.T) {
	cases := map[string]string{
		"":               StrategyFindOrCreate,
		"find_or_create": StrategyFindOrCreate,
		" IN_PLACE ":     StrategyInPlace,
	}
	for in, want := range cases {
		s, err := ParseUpdateStrategy(in)
		if err != nil {
			t.Fatalf("ParseUpdateStrategy(%q): %v", in, err)
		}
		if s.Name() != want {
			t.Fatalf("ParseUpdateStrategy(%q): want=%s got=%s", in, want, s.Name())
		}
	}
	if _, err := ParseUpdateStrategy("cascade"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
