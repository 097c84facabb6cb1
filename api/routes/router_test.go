package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/internal/auth"
	"github.com/campuspool/campuspool-backend/internal/listings"
	pkgAuth "github.com/campuspool/campuspool-backend/pkg/auth"
	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) { return true, nil }
func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}
func (stubSessionManager) Revoke(context.Context, string) error { return nil }

type listingCall struct {
	op        string
	kind      enums.ListingKind
	listingID uuid.UUID
}

type stubListingsService struct {
	calls []listingCall
}

func (s *stubListingsService) CreateRide(_ context.Context, _ listings.Actor, _ listings.CreateRideRequest) (*listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "create", kind: enums.ListingKindRide})
	return &listings.DisplayListing{}, nil
}

func (s *stubListingsService) CreateFood(_ context.Context, _ listings.Actor, _ listings.CreateFoodRequest) (*listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "create", kind: enums.ListingKindFood})
	return &listings.DisplayListing{}, nil
}

func (s *stubListingsService) Feed(_ context.Context, _ uuid.UUID, kind enums.ListingKind) ([]listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "feed", kind: kind})
	return []listings.DisplayListing{}, nil
}

func (s *stubListingsService) Join(_ context.Context, _ listings.Actor, kind enums.ListingKind, listingID uuid.UUID, _ listings.JoinRequest) (*listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "join", kind: kind, listingID: listingID})
	return &listings.DisplayListing{}, nil
}

func (s *stubListingsService) LeaveAsMember(_ context.Context, _ uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "leave", kind: kind, listingID: listingID})
	return &listings.DisplayListing{}, nil
}

func (s *stubListingsService) LeaveAsOwner(_ context.Context, _ uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*listings.DisplayListing, error) {
	s.calls = append(s.calls, listingCall{op: "leave_owner", kind: kind, listingID: listingID})
	return &listings.DisplayListing{}, nil
}

func (s *stubListingsService) Delete(_ context.Context, _ uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) error {
	s.calls = append(s.calls, listingCall{op: "delete", kind: kind, listingID: listingID})
	return nil
}

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "campuspool",
			ExpirationMinutes: 30,
		},
	}
}

func buildTestRouter(t *testing.T) (http.Handler, *stubListingsService) {
	t.Helper()
	svc := &stubListingsService{}
	router := NewRouter(RouterParams{
		Config:          routerTestConfig(),
		DB:              stubPinger{},
		SessionManager:  stubSessionManager{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		ListingsService: svc,
	})
	return router, svc
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(routerTestConfig().JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Dana",
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterHealth(t *testing.T) {
	router, _ := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterFeedsRequireAuth(t *testing.T) {
	router, svc := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rides", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestRouterDispatchesPerKind(t *testing.T) {
	router, svc := buildTestRouter(t)
	token := bearerToken(t)
	listingID := uuid.New()

	cases := []struct {
		method string
		path   string
		op     string
		kind   enums.ListingKind
	}{
		{http.MethodGet, "/api/v1/rides", "feed", enums.ListingKindRide},
		{http.MethodGet, "/api/v1/food", "feed", enums.ListingKindFood},
		{http.MethodPost, "/api/v1/food/" + listingID.String() + "/join", "join", enums.ListingKindFood},
		{http.MethodPost, "/api/v1/rides/" + listingID.String() + "/leave", "leave", enums.ListingKindRide},
		{http.MethodPost, "/api/v1/rides/" + listingID.String() + "/leave-owner", "leave_owner", enums.ListingKindRide},
		{http.MethodDelete, "/api/v1/rides/" + listingID.String(), "delete", enums.ListingKindRide},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, tc.path)
		last := svc.calls[len(svc.calls)-1]
		assert.Equal(t, tc.op, last.op, tc.path)
		assert.Equal(t, tc.kind, last.kind, tc.path)
	}
}

func TestRouterRejectsMalformedListingID(t *testing.T) {
	router, svc := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rides/not-a-uuid/join", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}
