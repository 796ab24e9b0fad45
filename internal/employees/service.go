// Package employees manages employee records and the account activation
// flow.
package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/almacen/internal/mail"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// Observer is notified about every delivery attempt.
type Observer interface {
	EmailSent(err error)
}

// Service creates employees and redeems their activation tokens.
type Service struct {
	db       *sql.DB
	sender   mail.Sender
	siteURL  string
	siteName string
	now      func() time.Time
	observer Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers a delivery observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithSiteName sets the product name used in emails.
func WithSiteName(name string) Option {
	return func(s *Service) { s.siteName = name }
}

// NewService returns a Service. siteURL is the public base URL used to build
// activation links.
func NewService(db *sql.DB, sender mail.Sender, siteURL string, opts ...Option) *Service {
	s := &Service{
		db:       db,
		sender:   sender,
		siteURL:  siteURL,
		siteName: "Almacen",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input holds the fields of a new employee.
type Input struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Position   string
	Department string
	HireDate   *time.Time
}

func (in *Input) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.Department = strings.TrimSpace(in.Department)

	switch {
	case in.FirstName == "":
		return invalid("first_name", "required")
	case in.LastName == "":
		return invalid("last_name", "required")
	case in.Email == "":
		return invalid("email", "required")
	}
	if _, err := netmail.ParseAddress(in.Email); err != nil {
		return invalid("email", "not a valid address")
	}
	return nil
}

// Create stores a new employee, issues an activation token and emails the
// invitation. When delivery fails the saved employee is returned together
// with a *MailError.
func (s *Service) Create(ctx context.Context, in Input) (*model.Employee, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	token, err := model.NewActivationToken()
	if err != nil {
		return nil, err
	}

	var e *model.Employee
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		created, err := store.CreateEmployee(ctx, tx, &model.Employee{
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Email:      in.Email,
			Phone:      in.Phone,
			Position:   in.Position,
			Department: in.Department,
			HireDate:   in.HireDate,
		})
		if errors.Is(err, store.ErrConflict) {
			return invalid("email", "an employee with this email or phone already exists")
		}
		if err != nil {
			return err
		}
		if err := store.SetActivationToken(ctx, tx, created.ID, token, s.now()); err != nil {
			return err
		}
		e, err = store.GetEmployee(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendInvitation(ctx, e); err != nil {
		return e, &MailError{EmployeeID: e.ID, Err: err}
	}
	return e, nil
}

// ResendInvitation issues a fresh token for an active employee without an
// account and emails it. The previous token stops working.
func (s *Service) ResendInvitation(ctx context.Context, id int64) (*model.Employee, error) {
	e, err := store.GetEmployee(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	switch {
	case e == nil:
		return nil, ErrNotFound
	case e.HasAccount():
		return nil, ErrAlreadyActivated
	case !e.IsActive:
		return nil, ErrInactive
	}

	token, err := model.NewActivationToken()
	if err != nil {
		return nil, err
	}
	if err := store.SetActivationToken(ctx, s.db, id, token, s.now()); err != nil {
		return nil, err
	}
	if e, err = store.GetEmployee(ctx, s.db, id); err != nil {
		return nil, err
	}

	if err := s.sendInvitation(ctx, e); err != nil {
		return e, &MailError{EmployeeID: e.ID, Err: err}
	}
	return e, nil
}

// Lookup returns the employee a token belongs to if it can still be
// redeemed.
func (s *Service) Lookup(ctx context.Context, token string) (*model.Employee, error) {
	e, err := store.GetEmployeeByToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	return e, s.check(e, token)
}

func (s *Service) check(e *model.Employee, token string) error {
	switch {
	case e == nil:
		return ErrTokenInvalid
	case e.HasAccount():
		return ErrAlreadyActivated
	case !e.IsActive:
		return ErrTokenInvalid
	case !e.TokenValid(token, s.now()):
		return ErrTokenInvalid
	}
	return nil
}

// Activate redeems token, creating a user account with the given
// credentials and linking it to the employee. The token is consumed.
func (s *Service) Activate(ctx context.Context, token, username, password, confirm string) (*model.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, invalid("username", "required")
	case password == "":
		return nil, invalid("password", "required")
	case password != confirm:
		return nil, invalid("confirm", "passwords do not match")
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, invalid("password", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var user *model.User
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := store.GetEmployeeByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if err := s.check(e, token); err != nil {
			return err
		}

		taken, err := store.UsernameTaken(ctx, tx, username)
		if err != nil {
			return err
		}
		if taken {
			return invalid("username", "already taken")
		}

		user, err = store.CreateUser(ctx, tx, username, string(hash), model.RoleUser)
		if errors.Is(err, store.ErrConflict) {
			return invalid("username", "already taken")
		}
		if err != nil {
			return err
		}
		if err := store.UpdateUserProfile(ctx, tx, user.ID, e.FirstName, e.LastName, e.Email); err != nil {
			return err
		}

		linked, err := store.LinkEmployeeUser(ctx, tx, e.ID, user.ID)
		if err != nil {
			return err
		}
		if !linked {
			return ErrAlreadyActivated
		}
		user, err = store.GetUser(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate marks the employee and its linked user inactive.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := store.GetEmployee(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrNotFound
		}
		if err := store.SetEmployeeActive(ctx, tx, id, false); err != nil {
			return err
		}
		if e.UserID != nil {
			return store.SetUserActive(ctx, tx, *e.UserID, false)
		}
		return nil
	})
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]model.Employee, error) {
	return store.ListEmployees(ctx, s.db)
}

// Status is the platform access label shown in employee lists.
func Status(e *model.Employee, now time.Time) string {
	switch {
	case !e.IsActive:
		return "Inactive"
	case e.HasAccount():
		return "Active"
	case e.TokenState(now) == model.TokenIssued:
		return "Pending"
	default:
		return "No access"
	}
}

func (s *Service) sendInvitation(ctx context.Context, e *model.Employee) error {
	err := s.deliver(ctx, e)
	if s.observer != nil {
		s.observer.EmailSent(err)
	}
	return err
}

func (s *Service) deliver(ctx context.Context, e *model.Employee) error {
	logo, err := store.GetLogo(ctx, s.db)
	if err != nil {
		return err
	}
	msg, err := mail.RenderActivation(mail.Activation{
		To:       e.Email,
		Name:     e.FullName(),
		Site:     s.siteName,
		SiteURL:  s.siteURL,
		Token:    e.ActivationToken,
		ValidFor: model.ActivationTokenTTL,
		Logo:     logo,
	})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}
