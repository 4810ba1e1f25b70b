package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	mockdb "github.com/katatrina/sheep-market-BE/internal/db/mock"
	"github.com/katatrina/sheep-market-BE/internal/event"
	mockidentity "github.com/katatrina/sheep-market-BE/internal/identity/mock"
	"github.com/katatrina/sheep-market-BE/internal/util"
	mockworker "github.com/katatrina/sheep-market-BE/internal/worker/mock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)

	os.Exit(m.Run())
}

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	calls      int
}

func (l *fakeLimiter) Allow(_ context.Context, _, _ string) (bool, time.Duration, error) {
	l.calls++
	return l.allowed, l.retryAfter, l.err
}

type fakeFileStore struct {
	url     string
	err     error
	folders []string
}

func (s *fakeFileStore) UploadFile(_ context.Context, data []byte, _ string, folder string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.folders = append(s.folders, folder)
	return s.url, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingEvents) Register(string, chan event.Event)   {}
func (r *recordingEvents) Unregister(string, chan event.Event) {}
func (r *recordingEvents) Run()                                {}
func (r *recordingEvents) Broadcast(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type testDeps struct {
	store       *mockdb.Store
	identity    *mockidentity.Provider
	distributor *mockworker.TaskDistributor
	limiter     *fakeLimiter
	fileStore   *fakeFileStore
	events      *recordingEvents
}

func newTestServer(t *testing.T) (*Server, *testDeps) {
	t.Helper()

	deps := &testDeps{
		store:       new(mockdb.Store),
		identity:    new(mockidentity.Provider),
		distributor: new(mockworker.TaskDistributor),
		limiter:     &fakeLimiter{allowed: true},
		fileStore:   &fakeFileStore{url: "https://i.ibb.co/abc/sheep.png"},
		events:      new(recordingEvents),
	}

	config := &util.Config{
		Environment:         "test",
		AllowedOrigins:      []string{"http://localhost:3000"},
		TokenSecretKey:      "0123456789abcdef0123456789abcdef",
		AccessTokenDuration: time.Hour,
		NationalIDSecret:    "national-id-secret",
		VerificationCodeTTL: 15 * time.Minute,
		CodeResendInterval:  time.Minute,
	}

	server, err := NewServer(deps.store, deps.identity, deps.fileStore, deps.distributor, deps.limiter, deps.events, config)
	require.NoError(t, err)
	server.now = func() time.Time { return testNow }

	t.Cleanup(func() {
		deps.store.AssertExpectations(t)
		deps.identity.AssertExpectations(t)
		deps.distributor.AssertExpectations(t)
	})

	return server, deps
}

// allowBackgroundTasks accepts any enqueued email, notification or alert.
func (d *testDeps) allowBackgroundTasks() {
	d.distributor.On("DistributeTaskSendEmail", mock.Anything, mock.Anything).Return(nil).Maybe()
	d.distributor.On("DistributeTaskSendNotification", mock.Anything, mock.Anything).Return(nil).Maybe()
	d.distributor.On("DistributeTaskAdminAlert", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// authenticate makes requireRole resolve the user from the store.
func (d *testDeps) authenticate(user db.User) {
	d.store.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Maybe()
}

func newUser(id string, role db.UserRole) db.User {
	return db.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id),
		FullName:  "User " + id,
		Role:      role,
		CreatedAt: testNow.Add(-30 * 24 * time.Hour),
	}
}

func newRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	return request
}

func addAuthorization(t *testing.T, server *Server, request *http.Request, user db.User) {
	t.Helper()

	accessToken, _, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), time.Minute)
	require.NoError(t, err)

	request.Header.Set(authorizationHeaderKey, fmt.Sprintf("%s %s", authorizationTypeBearer, accessToken))
}

func serve(server *Server, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value))
	return value
}
