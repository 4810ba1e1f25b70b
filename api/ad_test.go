package api

import (
	"net/http"
	"testing"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListLiveAds(t *testing.T) {
	server, deps := newTestServer(t)
	deps.store.On("ListLiveAds", mock.Anything, testNow).Return([]db.Ad{
		{ID: "ad-1", Position: 0, Active: true},
		{ID: "ad-2", Position: 1, Active: true},
	}, nil)

	recorder := serve(server, newRequest(t, http.MethodGet, "/v1/ads", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]db.Ad](t, recorder), 2)
}

func TestCreateAd(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)

	body := func() map[string]any {
		return map[string]any{
			"title":     "Aïd sale",
			"image_url": "https://i.ibb.co/abc/banner.png",
			"link_url":  "https://sheep-market.dz/sheep?category=kebch",
			"position":  1,
			"active":    true,
			"starts_at": testNow,
			"ends_at":   testNow.AddDate(0, 0, 7),
		}
	}

	t.Run("OK", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)
		deps.store.On("CreateAd", mock.Anything, mock.MatchedBy(func(ad db.Ad) bool {
			return ad.CreatedBy == admin.ID && ad.Position == 1 && ad.EndsAt.Equal(testNow.AddDate(0, 0, 7))
		})).Return(db.Ad{ID: "ad-1", Title: "Aïd sale"}, nil)

		request := newRequest(t, http.MethodPost, "/v1/admin/ads", body())
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusCreated, serve(server, request).Code)
	})

	t.Run("WindowReversed", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)

		b := body()
		b["ends_at"] = testNow.AddDate(0, 0, -1)

		request := newRequest(t, http.MethodPost, "/v1/admin/ads", b)
		addAuthorization(t, server, request, admin)

		recorder := serve(server, request)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		assert.Equal(t, "ends_at", decodeBody[FailedValidationResponse](t, recorder).FieldViolations[0].Field)
	})
}

func TestDeleteAd(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)

	server, deps := newTestServer(t)
	deps.authenticate(admin)
	deps.store.On("DeleteAd", mock.Anything, "ad-404").Return(db.ErrRecordNotFound)

	request := newRequest(t, http.MethodDelete, "/v1/admin/ads/ad-404", nil)
	addAuthorization(t, server, request, admin)

	assert.Equal(t, http.StatusNotFound, serve(server, request).Code)
}
