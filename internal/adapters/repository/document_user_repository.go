package repository

import (
	"context"
	"time"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/recordstore"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const UsersDocument = "users.json"

// userRecord is the stored form of a user. domain.User hides the password
// hash from JSON, which the document has to keep.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type usersDoc struct {
	Users []userRecord `json:"users"`
}

var _ domain.UserRepository = (*DocumentUserRepository)(nil)

type DocumentUserRepository struct {
	store recordstore.Store
}

func NewDocumentUserRepository(store recordstore.Store) *DocumentUserRepository {
	return &DocumentUserRepository{store: store}
}

func (r *DocumentUserRepository) Create(ctx context.Context, user *domain.User) error {
	var doc usersDoc
	return r.store.Update(ctx, UsersDocument, &doc, func(bool) (bool, error) {
		for _, u := range doc.Users {
			if u.Email == user.Email {
				return false, domain.ErrEmailAlreadyExists
			}
		}
		doc.Users = append(doc.Users, userRecord{
			ID:           user.ID,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		})
		return true, nil
	})
}

func (r *DocumentUserRepository) find(ctx context.Context, match func(userRecord) bool) (*domain.User, error) {
	doc, err := recordstore.ReadOr(ctx, r.store, UsersDocument, usersDoc{})
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if match(u) {
			return u.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *DocumentUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	return r.find(ctx, func(u userRecord) bool { return u.Email == email })
}

func (r *DocumentUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u userRecord) bool { return u.ID == id })
}
