package memory

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/credential"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
)

// GetClient returns a client by id.
func (s *Store) GetClient(_ context.Context, id uint) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *c
	return &out, nil
}

// GetClientByEmail returns the client registered with email.
func (s *Store) GetClientByEmail(_ context.Context, email string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientByEmailLocked(email)
}

func (s *Store) clientByEmailLocked(email string) (*model.Client, error) {
	email = store.NormalizeEmail(email)
	for _, c := range s.clients {
		if c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// ListClients returns every client.
func (s *Store) ListClients(_ context.Context) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.clients, nil), nil
}

// CreateClient registers a client; the email must be unique.
func (s *Store) CreateClient(_ context.Context, draft *model.Client) (*model.Client, error) {
	email := store.NormalizeEmail(draft.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", store.ErrInvalidInput)
	}
	hashed, err := credential.Hash(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.clientByEmailLocked(email); err == nil {
		return nil, fmt.Errorf("%w: email %s", store.ErrConflict, email)
	}

	c := *draft
	c.Email = email
	c.Password = hashed
	c.ID = s.allocate("client")
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.clients[c.ID] = &c

	out := c
	return &out, nil
}

// UpdateClient merges patch into the client, re-hashing a new password.
func (s *Store) UpdateClient(_ context.Context, id uint, patch model.ClientPatch) (*model.Client, error) {
	var hashed string
	if patch.Password != nil {
		h, err := credential.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		hashed = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(c)
	if hashed != "" {
		c.Password = hashed
	}
	c.UpdatedAt = s.now()

	out := *c
	return &out, nil
}

// AuthenticateClient returns the active client whose password matches secret.
func (s *Store) AuthenticateClient(ctx context.Context, email, secret string) (*model.Client, error) {
	c, err := s.GetClientByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !c.IsActive || !credential.Matches(c.Password, secret) {
		return nil, store.ErrNotFound
	}
	return c, nil
}

// GetUser returns a staff account by id.
func (s *Store) GetUser(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByUsername returns the staff account with username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// ListUsers returns every staff account.
func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.users, nil), nil
}

// CreateUser registers a staff account; the username must be unique.
func (s *Store) CreateUser(_ context.Context, draft *model.User) (*model.User, error) {
	if draft.Username == "" {
		return nil, fmt.Errorf("%w: username is required", store.ErrInvalidInput)
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	hashed, err := credential.Hash(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwnerLocked(draft); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Username == draft.Username {
			return nil, fmt.Errorf("%w: username %s", store.ErrConflict, draft.Username)
		}
	}

	u := *draft
	u.Password = hashed
	u.ID = s.allocate("user")
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = &u

	out := u
	return &out, nil
}

// UpdateUser merges patch into the staff account.
func (s *Store) UpdateUser(_ context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	var hashed string
	if patch.Password != nil {
		h, err := credential.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		hashed = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	updated := *u
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	if err := s.checkOwnerLocked(&updated); err != nil {
		return nil, err
	}
	if hashed != "" {
		updated.Password = hashed
	}
	updated.UpdatedAt = s.now()
	*u = updated

	out := updated
	return &out, nil
}

func (s *Store) checkOwnerLocked(u *model.User) error {
	if u.HotelID != nil {
		if _, ok := s.hotels[*u.HotelID]; !ok {
			return fmt.Errorf("%w: hotel %d", store.ErrInvalidReference, *u.HotelID)
		}
	}
	if u.MerchantID != nil {
		if _, ok := s.merchants[*u.MerchantID]; !ok {
			return fmt.Errorf("%w: merchant %d", store.ErrInvalidReference, *u.MerchantID)
		}
	}
	return nil
}

// AuthenticateUser returns the staff account whose password matches secret.
func (s *Store) AuthenticateUser(ctx context.Context, username, secret string) (*model.User, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !credential.Matches(u.Password, secret) {
		return nil, store.ErrNotFound
	}
	return u, nil
}
