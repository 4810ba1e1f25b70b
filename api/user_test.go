package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateCurrentUser(t *testing.T) {
	user := newUser("buyer-1", db.UserRoleBuyer)

	t.Run("NormalizesPhoneNumber", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)

		updated := user
		updated.PhoneNumber = "0550123456"
		updated.Wilaya = "Djelfa"
		deps.store.On("UpdateUser", mock.Anything, db.UpdateUserParams{
			UserID:      user.ID,
			PhoneNumber: util.StringPointer("0550123456"),
			Wilaya:      util.StringPointer("Djelfa"),
		}).Return(updated, nil)

		request := newRequest(t, http.MethodPatch, "/v1/users/me", map[string]any{
			"phone_number": "+213 550 12 34 56",
			"wilaya":       "Djelfa",
		})
		addAuthorization(t, server, request, user)

		recorder := serve(server, request)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "0550123456", decodeBody[db.User](t, recorder).PhoneNumber)
	})

	t.Run("LandlineRejected", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)

		request := newRequest(t, http.MethodPatch, "/v1/users/me", map[string]any{"phone_number": "021 23 45 67"})
		addAuthorization(t, server, request, user)

		assert.Equal(t, http.StatusUnprocessableEntity, serve(server, request).Code)
	})
}

func TestUpdateUserRole(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)

	t.Run("PromoteToSeller", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)

		role := db.UserRoleSeller
		deps.store.On("UpdateUser", mock.Anything, db.UpdateUserParams{UserID: "buyer-1", Role: &role}).
			Return(newUser("buyer-1", db.UserRoleSeller), nil)

		request := newRequest(t, http.MethodPatch, "/v1/admin/users/buyer-1/role", map[string]any{"role": "seller"})
		addAuthorization(t, server, request, admin)

		recorder := serve(server, request)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, db.UserRoleSeller, decodeBody[db.User](t, recorder).Role)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)

		request := newRequest(t, http.MethodPatch, "/v1/admin/users/buyer-1/role", map[string]any{"role": "shepherd"})
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusUnprocessableEntity, serve(server, request).Code)
	})

	t.Run("OwnRole", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)

		request := newRequest(t, http.MethodPatch, "/v1/admin/users/admin-1/role", map[string]any{"role": "buyer"})
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusBadRequest, serve(server, request).Code)
	})
}

func TestSetUserDisabled(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)
	target := newUser("seller-1", db.UserRoleSeller)

	server, deps := newTestServer(t)
	deps.authenticate(admin)
	deps.authenticate(target)
	deps.identity.On("SetDisabled", mock.Anything, target.ID, true).Return(nil)

	disabled := target
	disabled.Disabled = true
	deps.store.On("UpdateUser", mock.Anything, db.UpdateUserParams{UserID: target.ID, Disabled: util.BoolPointer(true)}).
		Return(disabled, nil)

	request := newRequest(t, http.MethodPatch, "/v1/admin/users/seller-1/disable", map[string]any{"disabled": true})
	addAuthorization(t, server, request, admin)

	recorder := serve(server, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, decodeBody[db.User](t, recorder).Disabled)
}

func TestVerifyAccessToken(t *testing.T) {
	user := newUser("seller-1", db.UserRoleSeller)

	t.Run("OK", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)

		accessToken, _, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), time.Minute)
		require.NoError(t, err)

		recorder := serve(server, newRequest(t, http.MethodPost, "/v1/tokens/verify", map[string]any{"access_token": accessToken}))
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, user.ID, decodeBody[db.User](t, recorder).ID)
	})

	t.Run("Expired", func(t *testing.T) {
		server, _ := newTestServer(t)

		accessToken, _, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), -time.Minute)
		require.NoError(t, err)

		recorder := serve(server, newRequest(t, http.MethodPost, "/v1/tokens/verify", map[string]any{"access_token": accessToken}))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
