package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

func (store *FirestoreStore) CreateUser(ctx context.Context, user User) (User, error) {
	now := store.now()
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := store.collection(CollectionUsers).Doc(user.ID).Create(ctx, user)
	if err != nil {
		return User{}, translateError(err)
	}

	return user, nil
}

func (store *FirestoreStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	return getDocument[User](ctx, store.collection(CollectionUsers).Doc(userID))
}

func (store *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	iter := store.collection(CollectionUsers).
		Where("email", "==", NormalizeEmail(email)).
		Limit(1).
		Documents(ctx)

	users, err := collectDocuments[User](iter)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrRecordNotFound
	}

	return users[0], nil
}

type UpdateUserParams struct {
	UserID      string
	FullName    *string
	PhoneNumber *string
	AvatarURL   *string
	Wilaya      *string
	Address     *string
	Role        *UserRole
	Disabled    *bool
}

func (arg UpdateUserParams) updates(now time.Time) []firestore.Update {
	updates := []firestore.Update{{Path: "updatedAt", Value: now}}

	if arg.FullName != nil {
		updates = append(updates, firestore.Update{Path: "fullName", Value: *arg.FullName})
	}
	if arg.PhoneNumber != nil {
		updates = append(updates, firestore.Update{Path: "phoneNumber", Value: *arg.PhoneNumber})
	}
	if arg.AvatarURL != nil {
		updates = append(updates, firestore.Update{Path: "avatarUrl", Value: *arg.AvatarURL})
	}
	if arg.Wilaya != nil {
		updates = append(updates, firestore.Update{Path: "wilaya", Value: *arg.Wilaya})
	}
	if arg.Address != nil {
		updates = append(updates, firestore.Update{Path: "address", Value: *arg.Address})
	}
	if arg.Role != nil {
		updates = append(updates, firestore.Update{Path: "role", Value: *arg.Role})
	}
	if arg.Disabled != nil {
		updates = append(updates, firestore.Update{Path: "disabled", Value: *arg.Disabled})
	}

	return updates
}

func (store *FirestoreStore) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	ref := store.collection(CollectionUsers).Doc(arg.UserID)

	if _, err := ref.Update(ctx, arg.updates(store.now())); err != nil {
		return User{}, translateError(err)
	}

	return getDocument[User](ctx, ref)
}

func (store *FirestoreStore) ListUsers(ctx context.Context, role string) ([]User, error) {
	query := store.collection(CollectionUsers).Query
	if role != "" {
		query = query.Where("role", "==", role)
	}

	return collectDocuments[User](query.OrderBy("createdAt", firestore.Desc).Documents(ctx))
}

func (store *FirestoreStore) ListExpiredVIPUsers(ctx context.Context, now time.Time) ([]User, error) {
	iter := store.collection(CollectionUsers).
		Where("isVip", "==", true).
		Where("vipExpiresAt", "<", now).
		Documents(ctx)

	return collectDocuments[User](iter)
}

func (store *FirestoreStore) RevokeVIP(ctx context.Context, userID string) error {
	_, err := store.collection(CollectionUsers).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "isVip", Value: false},
		{Path: "updatedAt", Value: store.now()},
	})
	if err != nil {
		return fmt.Errorf("failed to revoke VIP of user %s: %w", userID, translateError(err))
	}

	return nil
}

// NormalizeEmail lower-cases and trims an address; it is also the ID of challenge documents.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
