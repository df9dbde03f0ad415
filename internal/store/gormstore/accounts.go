package gormstore

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/credential"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"gorm.io/gorm"
)

// GetClient returns a client by id.
func (s *Store) GetClient(ctx context.Context, id uint) (*model.Client, error) {
	var c model.Client
	if err := s.view(ctx, "get_client", func(db *gorm.DB) error {
		return db.First(&c, id).Error
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClientByEmail returns the client registered with email.
func (s *Store) GetClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	var c model.Client
	if err := s.view(ctx, "get_client_by_email", func(db *gorm.DB) error {
		return db.Where("email = ?", store.NormalizeEmail(email)).First(&c).Error
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClients returns every client.
func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.view(ctx, "list_clients", func(db *gorm.DB) error {
		return db.Order("id").Find(&clients).Error
	}); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient registers a client; the email must be unique.
func (s *Store) CreateClient(ctx context.Context, draft *model.Client) (*model.Client, error) {
	c := *draft
	c.ID = 0
	c.Email = store.NormalizeEmail(draft.Email)
	if c.Email == "" {
		return nil, fmt.Errorf("%w: email is required", store.ErrInvalidInput)
	}
	hashed, err := credential.Hash(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	c.Password = hashed
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt

	if err := s.write(ctx, "create_client", func(tx *gorm.DB) error {
		dup, err := taken(tx, &model.Client{}, "email = ?", c.Email)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: email %s", store.ErrConflict, c.Email)
		}
		return tx.Create(&c).Error
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClient merges patch into the client, re-hashing a new password.
func (s *Store) UpdateClient(ctx context.Context, id uint, patch model.ClientPatch) (*model.Client, error) {
	var hashed string
	if patch.Password != nil {
		h, err := credential.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		hashed = h
	}

	var c model.Client
	if err := s.write(ctx, "update_client", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&c, id).Error; err != nil {
			return err
		}
		patch.Apply(&c)
		if hashed != "" {
			c.Password = hashed
		}
		c.UpdatedAt = s.now()
		return tx.Save(&c).Error
	}); err != nil {
		return nil, err
	}
	return &c, nil
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
func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.view(ctx, "get_user", func(db *gorm.DB) error {
		return db.First(&u, id).Error
	}); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername returns the staff account with username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.view(ctx, "get_user_by_username", func(db *gorm.DB) error {
		return db.Where("username = ?", username).First(&u).Error
	}); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every staff account.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.view(ctx, "list_users", func(db *gorm.DB) error {
		return db.Order("id").Find(&users).Error
	}); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a staff account; the username must be unique.
func (s *Store) CreateUser(ctx context.Context, draft *model.User) (*model.User, error) {
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

	u := *draft
	u.ID = 0
	u.Password = hashed
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt

	if err := s.write(ctx, "create_user", func(tx *gorm.DB) error {
		if err := checkOwner(tx, &u); err != nil {
			return err
		}
		dup, err := taken(tx, &model.User{}, "username = ?", u.Username)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: username %s", store.ErrConflict, u.Username)
		}
		return tx.Create(&u).Error
	}); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser merges patch into the staff account.
func (s *Store) UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	var hashed string
	if patch.Password != nil {
		h, err := credential.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		hashed = h
	}

	var u model.User
	if err := s.write(ctx, "update_user", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&u, id).Error; err != nil {
			return err
		}
		patch.Apply(&u)
		if err := u.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		if err := checkOwner(tx, &u); err != nil {
			return err
		}
		if hashed != "" {
			u.Password = hashed
		}
		u.UpdatedAt = s.now()
		return tx.Save(&u).Error
	}); err != nil {
		return nil, err
	}
	return &u, nil
}

func checkOwner(tx *gorm.DB, u *model.User) error {
	if u.HotelID != nil {
		if err := mustExist(tx, &model.Hotel{}, "hotel", *u.HotelID); err != nil {
			return err
		}
	}
	if u.MerchantID != nil {
		if err := mustExist(tx, &model.Merchant{}, "merchant", *u.MerchantID); err != nil {
			return err
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
