package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/turmas-api/internal/models"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	List(ctx context.Context) []models.User
	// Create inserts the user unless another account already uses its email (ErrConflict).
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ListByType(ctx context.Context, userType models.UserType) []models.User
	Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	collectionRepo[models.User, *models.User]
}

// NormalizeEmail is the canonical form used for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailTaken(users []models.User, email, exceptID string) bool {
	for _, u := range users {
		if u.ID != exceptID && NormalizeEmail(u.Email) == email {
			return true
		}
	}
	return false
}

func (r *userRepository) List(ctx context.Context) []models.User {
	return r.list(ctx)
}

func (r *userRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	user.Email = NormalizeEmail(user.Email)
	return r.createChecked(ctx, user, func(users []models.User) error {
		if emailTaken(users, user.Email, "") {
			return ErrConflict
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.get(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	normalized := NormalizeEmail(email)
	matches := r.filter(ctx, func(u models.User) bool { return NormalizeEmail(u.Email) == normalized })
	if len(matches) == 0 {
		return models.User{}, ErrNotFound
	}
	return matches[0], nil
}

func (r *userRepository) ListByType(ctx context.Context, userType models.UserType) []models.User {
	return r.filter(ctx, func(u models.User) bool { return u.Type == userType })
}

func (r *userRepository) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	return r.update(ctx, id, func(user *models.User, all []models.User) error {
		if patch.Email != nil {
			email := NormalizeEmail(*patch.Email)
			if emailTaken(all, email, user.ID) {
				return ErrConflict
			}
			user.Email = email
		}
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.PasswordHash != nil {
			user.PasswordHash = *patch.PasswordHash
		}
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
