package mockidentity

import (
	"context"

	"github.com/katatrina/sheep-market-BE/internal/identity"
	"github.com/stretchr/testify/mock"
)

// Provider is a testify mock of identity.Provider.
type Provider struct {
	mock.Mock
}

var _ identity.Provider = (*Provider)(nil)

func (m *Provider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.Error(1)
}

func (m *Provider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *Provider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

func (m *Provider) GetUserByEmail(ctx context.Context, email string) (identity.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(identity.Account), args.Error(1)
}

func (m *Provider) MarkEmailVerified(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *Provider) UpdatePassword(ctx context.Context, uid, password string) error {
	return m.Called(ctx, uid, password).Error(0)
}

func (m *Provider) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return m.Called(ctx, uid, disabled).Error(0)
}

func (m *Provider) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}
