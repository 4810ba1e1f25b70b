package db

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
)

func (store *FirestoreStore) SavePendingRegistration(ctx context.Context, registration PendingRegistration) error {
	registration.Email = NormalizeEmail(registration.Email)

	_, err := store.collection(CollectionPendingRegistrations).Doc(registration.Email).Set(ctx, registration)
	return translateError(err)
}

func (store *FirestoreStore) GetPendingRegistration(ctx context.Context, email string) (PendingRegistration, error) {
	return getDocument[PendingRegistration](ctx, store.collection(CollectionPendingRegistrations).Doc(NormalizeEmail(email)))
}

// ClaimPendingRegistrationAttemptTx reads the pending registration and counts one verification
// attempt against it in the same transaction. The returned challenge carries the attempt count
// seen before this claim, so concurrent guesses can never exceed maxAttempts between them.
func (store *FirestoreStore) ClaimPendingRegistrationAttemptTx(ctx context.Context, email string, maxAttempts int64) (PendingRegistration, error) {
	return claimAttemptTx(ctx, store, CollectionPendingRegistrations, email, maxAttempts,
		func(registration *PendingRegistration) *CodeChallenge { return &registration.CodeChallenge })
}

func (store *FirestoreStore) DeletePendingRegistration(ctx context.Context, email string) error {
	_, err := store.collection(CollectionPendingRegistrations).Doc(NormalizeEmail(email)).Delete(ctx)
	return translateError(err)
}

func (store *FirestoreStore) ListExpiredPendingRegistrations(ctx context.Context, before time.Time) ([]PendingRegistration, error) {
	iter := store.collection(CollectionPendingRegistrations).
		Where("expiresAt", "<", before).
		Documents(ctx)

	return collectDocuments[PendingRegistration](iter)
}

// CompleteRegistrationTx creates the user profile and consumes the pending registration atomically.
func (store *FirestoreStore) CompleteRegistrationTx(ctx context.Context, email string, user User) (User, error) {
	now := store.now()
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	pendingRef := store.collection(CollectionPendingRegistrations).Doc(NormalizeEmail(email))
	userRef := store.collection(CollectionUsers).Doc(user.ID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := getDocumentTx[PendingRegistration](tx, pendingRef); err != nil {
			return err
		}

		if err := tx.Create(userRef, user); err != nil {
			return err
		}

		return tx.Delete(pendingRef)
	})
	if err != nil {
		return User{}, translateError(err)
	}

	return user, nil
}

func (store *FirestoreStore) SavePasswordReset(ctx context.Context, reset PasswordReset) error {
	reset.Email = NormalizeEmail(reset.Email)

	_, err := store.collection(CollectionPasswordResets).Doc(reset.Email).Set(ctx, reset)
	return translateError(err)
}

func (store *FirestoreStore) GetPasswordReset(ctx context.Context, email string) (PasswordReset, error) {
	return getDocument[PasswordReset](ctx, store.collection(CollectionPasswordResets).Doc(NormalizeEmail(email)))
}

// ClaimPasswordResetAttemptTx is ClaimPendingRegistrationAttemptTx for password reset codes.
func (store *FirestoreStore) ClaimPasswordResetAttemptTx(ctx context.Context, email string, maxAttempts int64) (PasswordReset, error) {
	return claimAttemptTx(ctx, store, CollectionPasswordResets, email, maxAttempts,
		func(reset *PasswordReset) *CodeChallenge { return &reset.CodeChallenge })
}

func (store *FirestoreStore) DeletePasswordReset(ctx context.Context, email string) error {
	_, err := store.collection(CollectionPasswordResets).Doc(NormalizeEmail(email)).Delete(ctx)
	return translateError(err)
}

func (store *FirestoreStore) DeleteExpiredPasswordResets(ctx context.Context, before time.Time) (int, error) {
	iter := store.collection(CollectionPasswordResets).
		Where("expiresAt", "<", before).
		Documents(ctx)

	resets, err := collectDocuments[PasswordReset](iter)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, reset := range resets {
		if err = store.DeletePasswordReset(ctx, reset.Email); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

func claimAttemptTx[T any](
	ctx context.Context,
	store *FirestoreStore,
	collection string,
	email string,
	maxAttempts int64,
	challengeOf func(*T) *CodeChallenge,
) (T, error) {
	ref := store.collection(collection).Doc(NormalizeEmail(email))
	now := store.now()

	var doc T
	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		doc, err = getDocumentTx[T](tx, ref)
		if err != nil {
			return err
		}

		challenge := challengeOf(&doc)
		if !countsAttempt(*challenge, maxAttempts, now) {
			return nil
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "attempts", Value: challenge.Attempts + 1},
		})
	})
	if err != nil {
		var zero T
		return zero, translateError(err)
	}

	return doc, nil
}

// countsAttempt reports whether a guess against the challenge uses up one of its attempts.
// Guesses at an expired or locked challenge are refused without being counted.
func countsAttempt(challenge CodeChallenge, maxAttempts int64, now time.Time) bool {
	return now.Before(challenge.ExpiresAt) && challenge.Attempts < maxAttempts
}
