package app

import (
	"fmt"
	"strings"
	"time"

	"sermonbot/internal/util"
	"sermonbot/pkg/domain"
)

// CreateUser registers a user keyed by email. Creation is idempotent: if the
// email is already registered the existing record is returned untouched.
func (a *App) CreateUser(email, firstName, lastName, picture string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(firstName) == "" {
		return domain.User{}, fmt.Errorf("%w: first name required", domain.ErrInvalidInput)
	}
	existing, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if ok {
		return existing, nil
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:        util.NewID(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Picture:   picture,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUserByEmail looks up a user record.
func (a *App) GetUserByEmail(email string) (domain.User, error) {
	user, ok, err := a.store.GetUserByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	return user, nil
}

// GetUser looks up a user by ID.
func (a *App) GetUser(id string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

// UpdateUser applies a partial update. Unknown field names are rejected
// before anything is written.
func (a *App) UpdateUser(id string, fields map[string]any) (domain.User, error) {
	user, ok, err := a.store.UpdateUser(id, fields)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

// DeleteUser removes a user and revokes any live token.
func (a *App) DeleteUser(id string) error {
	removed, err := a.store.DeleteUser(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}
	if _, err := a.tokens.DeleteToken(id); err != nil {
		return fmt.Errorf("revoke token for deleted user: %w", err)
	}
	return nil
}
