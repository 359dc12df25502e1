// Package seed loads demo accounts and events from a JSON document.
package seed

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"eventease/internal/auth"
	"eventease/internal/model"
	"eventease/internal/repository"
)

// Account is a user to create, with the password given to the identity provider.
type Account struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// Event is an event to create for the account with OwnerEmail.
type Event struct {
	OwnerEmail  string            `json:"owner"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	Location    string            `json:"location"`
	Capacity    *int              `json:"capacity"`
	IsPaid      bool              `json:"isPaid"`
	Price       *decimal.Decimal  `json:"price"`
	Status      model.EventStatus `json:"status"`
}

// Document is the seed file layout.
type Document struct {
	Admin  *Account  `json:"admin"`
	Users  []Account `json:"users"`
	Events []Event   `json:"events"`
}

// Result counts what Apply created and skipped.
type Result struct {
	UsersCreated  int
	UsersSkipped  int
	EventsCreated int
	EventsSkipped int
}

// Load reads a document from a local path or an http(s) URL.
func Load(ctx context.Context, source string) (*Document, error) {
	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = fetch(ctx, source)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes a document.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}
	return &doc, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Apply creates the admin, users and events that do not exist yet. Accounts
// are matched by email and events by owner and title, so running it twice
// creates nothing the second time.
func Apply(ctx context.Context, idp auth.IdentityProvider, store repository.Store, doc *Document) (Result, error) {
	var res Result

	accounts := doc.Users
	if doc.Admin != nil {
		admin := *doc.Admin
		admin.Role = model.RoleAdmin
		accounts = append([]Account{admin}, accounts...)
	}

	for _, a := range accounts {
		created, err := ensureUser(ctx, idp, store.Users(), a)
		if err != nil {
			return res, err
		}
		if created {
			res.UsersCreated++
		} else {
			res.UsersSkipped++
		}
	}

	for _, e := range doc.Events {
		created, err := ensureEvent(ctx, store, e)
		if err != nil {
			return res, err
		}
		if created {
			res.EventsCreated++
		} else {
			res.EventsSkipped++
		}
	}
	return res, nil
}

func ensureUser(ctx context.Context, idp auth.IdentityProvider, users repository.UserRepository, a Account) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" {
		return false, fmt.Errorf("seed account %q has no email", a.Name)
	}
	role := a.Role
	if role == "" {
		role = model.RoleEventOwner
	}
	if !role.Valid() {
		return false, fmt.Errorf("seed account %s: invalid role %q", email, role)
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !goerrors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("error checking user %s: %w", email, err)
	}

	subject, _, err := idp.CreateUser(ctx, email, a.Password, a.Name)
	if err != nil {
		return false, fmt.Errorf("error creating credential for %s: %w", email, err)
	}
	user := &model.User{ID: subject, Email: email, Name: a.Name, Role: role}
	if err := users.Create(ctx, user); err != nil {
		_ = idp.DeleteUser(ctx, subject)
		return false, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return true, nil
}

func ensureEvent(ctx context.Context, store repository.Store, e Event) (bool, error) {
	owner, err := store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(e.OwnerEmail)))
	if err != nil {
		return false, fmt.Errorf("seed event %q: owner %s: %w", e.Title, e.OwnerEmail, err)
	}

	existing, err := store.Events().List(ctx, repository.EventFilter{OwnerID: owner.ID})
	if err != nil {
		return false, fmt.Errorf("error checking events of %s: %w", owner.Email, err)
	}
	for _, ev := range existing {
		if ev.Title == e.Title {
			return false, nil
		}
	}

	status := e.Status
	if status == "" {
		status = model.EventStatusPendingReview
	}
	if !status.Valid() {
		return false, fmt.Errorf("seed event %q: invalid status %q", e.Title, status)
	}

	event := &model.Event{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		IsPaid:      e.IsPaid,
		OwnerID:     owner.ID,
		Status:      status,
	}
	if e.Price != nil {
		event.Price = decimal.NewNullDecimal(*e.Price)
	}
	if err := store.Events().Create(ctx, event); err != nil {
		return false, fmt.Errorf("error creating event %q: %w", e.Title, err)
	}
	return true, nil
}
