package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/activity"
	"github.com/thetoretto/hotpoint-bookings/internal/booking"
	"github.com/thetoretto/hotpoint-bookings/internal/catalog"
	"github.com/thetoretto/hotpoint-bookings/internal/domain"
	"github.com/thetoretto/hotpoint-bookings/internal/http/handlers"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/payments"
	"github.com/thetoretto/hotpoint-bookings/internal/platform/sessionstore"
	"github.com/thetoretto/hotpoint-bookings/internal/repo/postgres"
	"github.com/thetoretto/hotpoint-bookings/pkg/auth"
	"github.com/thetoretto/hotpoint-bookings/pkg/config"
	"github.com/thetoretto/hotpoint-bookings/pkg/events"
)

const testSecret = "test-secret"

// ---------- Mocks ----------

type mockUsersRepo struct {
	nextID int64
	users  map[string]*postgres.User // email -> user
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{nextID: 1, users: make(map[string]*postgres.User)}
}

func (m *mockUsersRepo) Create(_ context.Context, email, hash, name, phone, role string) (*postgres.User, error) {
	u := &postgres.User{
		ID:           m.nextID,
		Role:         role,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.nextID++
	m.users[email] = u
	return u, nil
}

func (m *mockUsersRepo) FindByEmail(_ context.Context, email string) (*postgres.User, error) {
	return m.users[email], nil
}

func (m *mockUsersRepo) FindByID(_ context.Context, id int64) (*postgres.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type mockActivities struct {
	byUser   map[int64][]domain.TripActivity
	byDriver map[int64][]domain.TripActivity
}

func (m *mockActivities) ListByUser(_ context.Context, userID int64) ([]domain.TripActivity, error) {
	return m.byUser[userID], nil
}

func (m *mockActivities) ListByDriver(_ context.Context, driverID int64) ([]domain.TripActivity, error) {
	return m.byDriver[driverID], nil
}

// ---------- Test Setup ----------

type testEnv struct {
	server    *httptest.Server
	finalizer *catalog.MemoryFinalizer
	users     *mockUsersRepo
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.AccessTokenTTL = time.Hour
	cfg.Pricing.ServiceFee = 500
	cfg.Pricing.DoorstepPickupFee = 1500

	cat := catalog.Seed()
	finalizer := catalog.NewMemoryFinalizer()
	flow := booking.NewFlow(cat, nil, booking.Pricing{
		ServiceFee:        cfg.Pricing.ServiceFee,
		DoorstepPickupFee: cfg.Pricing.DoorstepPickupFee,
	}, finalizer)
	users := newMockUsersRepo()

	now := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	engine := activity.NewEngineAt(func() time.Time { return now })
	acts := &mockActivities{
		byUser:   map[int64][]domain.TripActivity{1: fixtureActivities(now)},
		byDriver: map[int64][]domain.TripActivity{},
	}

	h := handlers.New(
		cfg,
		flow,
		sessionstore.NewMemoryStore(30*time.Minute),
		cat,
		engine,
		acts,
		finalizer,
		users,
		payments.NewDisabledProvider("usd"),
		events.NopBus{},
	)
	server := httptest.NewServer(h.Routes(nil, nil))
	t.Cleanup(server.Close)

	return &testEnv{server: server, finalizer: finalizer, users: users}
}

func fixtureActivities(now time.Time) []domain.TripActivity {
	mk := func(id int64, offset time.Duration, status domain.TripStatus) domain.TripActivity {
		return domain.TripActivity{
			ID:        id,
			From:      "Kigali",
			To:        "Huye",
			DepartsAt: now.Add(offset),
			Status:    status,
		}
	}
	return []domain.TripActivity{
		mk(1, -2*time.Hour, domain.TripCompleted),
		mk(2, -26*time.Hour, domain.TripCompleted),
		mk(3, -3*24*time.Hour, domain.TripCancelled),
		mk(4, 2*time.Hour, domain.TripScheduled),
		mk(5, -9*24*time.Hour, domain.TripCompleted),
		mk(6, 26*time.Hour, domain.TripScheduled),
	}
}

// ---------- HTTP helpers ----------

func doJSON(t *testing.T, method, url, token string, data any, expectedStatus int) *http.Response {
	t.Helper()

	var body *bytes.Buffer
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	if resp.StatusCode != expectedStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, url, expectedStatus, resp.StatusCode)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createSession(t *testing.T, env *testEnv) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, env.server.URL+"/bookings/sessions", "", nil, http.StatusCreated)
	var out struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	decode(t, resp, &out)
	if out.Session.Token == "" {
		t.Fatal("expected a session token")
	}
	return out.Session.Token
}

func sessionURL(env *testEnv, token, suffix string) string {
	return env.server.URL + "/bookings/sessions/" + token + suffix
}

func testToken(t *testing.T, sub int64, email, role string) string {
	t.Helper()
	tok, err := auth.NewAccessToken(sub, email, role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// ---------- Tests ----------

func TestBookingFlow_FullWalkthrough(t *testing.T) {
	env := setupTestServer(t)
	token := createSession(t, env)

	doJSON(t, http.MethodPut, sessionURL(env, token, "/route"), "", map[string]any{"route_id": 1}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/vehicle"), "", map[string]any{"vehicle_id": 10}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/seat"), "", map[string]any{"seat_id": 1001}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/time-slot"), "", map[string]any{"time_slot_id": 100}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/pickup"), "", map[string]any{"enabled": true, "address": "KN 5 Rd, Kigali"}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/extras"), "", map[string]any{"extra_id": 200, "quantity": 2}, http.StatusOK).Body.Close()

	resp := doJSON(t, http.MethodPost, sessionURL(env, token, "/discount"), "", map[string]any{"code": "welcome10"}, http.StatusOK)
	var sess struct {
		Fare domain.FareBreakdown `json:"fare"`
	}
	decode(t, resp, &sess)
	// base 5500 + extras 2000, 10% off 7500 = 750
	if sess.Fare.Discount != 750 {
		t.Fatalf("expected discount 750, got %d", sess.Fare.Discount)
	}
	// 5500 + 500 fee + 2000 extras + 1500 pickup - 750
	if sess.Fare.Total != 8750 {
		t.Fatalf("expected total 8750, got %d", sess.Fare.Total)
	}

	resp = doJSON(t, http.MethodPost, sessionURL(env, token, "/complete"), "", nil, http.StatusOK)
	var done struct {
		BookingID string           `json:"booking_id"`
		Payment   *payments.Intent `json:"payment"`
	}
	decode(t, resp, &done)
	if done.BookingID == "" {
		t.Fatal("expected a booking id")
	}
	if done.Payment == nil || done.Payment.Amount != 8750 {
		t.Fatalf("expected a payment intent for 8750, got %+v", done.Payment)
	}
	if len(env.finalizer.Confirmed) != 1 {
		t.Fatalf("expected 1 confirmed booking, got %d", len(env.finalizer.Confirmed))
	}

	// Completing again must return the same booking without a duplicate.
	resp = doJSON(t, http.MethodPost, sessionURL(env, token, "/complete"), "", nil, http.StatusOK)
	var again struct {
		BookingID string `json:"booking_id"`
	}
	decode(t, resp, &again)
	if again.BookingID != done.BookingID {
		t.Fatalf("expected booking %s on retry, got %s", done.BookingID, again.BookingID)
	}
	if len(env.finalizer.Confirmed) != 1 {
		t.Fatalf("retry created a duplicate booking: %d", len(env.finalizer.Confirmed))
	}
}

func TestBookingFlow_StepOrderEnforced(t *testing.T) {
	env := setupTestServer(t)
	token := createSession(t, env)

	resp := doJSON(t, http.MethodPut, sessionURL(env, token, "/vehicle"), "", map[string]any{"vehicle_id": 10}, http.StatusConflict)
	var errResp struct {
		Code string `json:"code"`
	}
	decode(t, resp, &errResp)
	if errResp.Code != "PRECONDITION_FAILED" {
		t.Fatalf("expected PRECONDITION_FAILED, got %q", errResp.Code)
	}

	resp = doJSON(t, http.MethodPost, sessionURL(env, token, "/complete"), "", nil, http.StatusConflict)
	decode(t, resp, &errResp)
	if errResp.Code != "INCOMPLETE_SELECTION" {
		t.Fatalf("expected INCOMPLETE_SELECTION, got %q", errResp.Code)
	}
}

func TestBookingFlow_UnavailableSeat(t *testing.T) {
	env := setupTestServer(t)
	token := createSession(t, env)

	doJSON(t, http.MethodPut, sessionURL(env, token, "/route"), "", map[string]any{"route_id": 1}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/vehicle"), "", map[string]any{"vehicle_id": 10}, http.StatusOK).Body.Close()

	// Seat 1003 is pre-sold in the fixture catalog.
	resp := doJSON(t, http.MethodPut, sessionURL(env, token, "/seat"), "", map[string]any{"seat_id": 1003}, http.StatusConflict)
	var errResp struct {
		Code string `json:"code"`
	}
	decode(t, resp, &errResp)
	if errResp.Code != "SEAT_UNAVAILABLE" {
		t.Fatalf("expected SEAT_UNAVAILABLE, got %q", errResp.Code)
	}
}

func TestBookingFlow_UnknownSessionIs404(t *testing.T) {
	env := setupTestServer(t)
	doJSON(t, http.MethodGet, sessionURL(env, "no-such-token", ""), "", nil, http.StatusNotFound).Body.Close()
}

func TestBookingFlow_UnknownDiscountCode(t *testing.T) {
	env := setupTestServer(t)
	token := createSession(t, env)

	resp := doJSON(t, http.MethodPost, sessionURL(env, token, "/discount"), "", map[string]any{"code": "NOPE"}, http.StatusUnprocessableEntity)
	var errResp struct {
		Code string `json:"code"`
	}
	decode(t, resp, &errResp)
	if errResp.Code != "INVALID_DISCOUNT_CODE" {
		t.Fatalf("expected INVALID_DISCOUNT_CODE, got %q", errResp.Code)
	}
}

func TestBookingFlow_AbandonDeletesSession(t *testing.T) {
	env := setupTestServer(t)
	token := createSession(t, env)

	doJSON(t, http.MethodDelete, sessionURL(env, token, ""), "", nil, http.StatusNoContent).Body.Close()
	doJSON(t, http.MethodGet, sessionURL(env, token, ""), "", nil, http.StatusNotFound).Body.Close()
}

func TestCatalog_SeatMapOrdered(t *testing.T) {
	env := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, env.server.URL+"/catalog/vehicles/10/seats", "", nil, http.StatusOK)
	var out struct {
		Items []domain.Seat `json:"items"`
	}
	decode(t, resp, &out)
	if len(out.Items) != 8 {
		t.Fatalf("expected 8 seats, got %d", len(out.Items))
	}
	for i := 1; i < len(out.Items); i++ {
		prev, cur := out.Items[i-1], out.Items[i]
		if cur.Row < prev.Row || (cur.Row == prev.Row && cur.Col < prev.Col) {
			t.Fatalf("seats out of cabin order at index %d: %s after %s", i, cur.Label, prev.Label)
		}
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)

	body := map[string]string{
		"email":    "Rider@Example.com",
		"password": "hunter22x",
		"name":     "Test Rider",
	}
	resp := doJSON(t, http.MethodPost, env.server.URL+"/auth/register", "", body, http.StatusCreated)
	var reg struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decode(t, resp, &reg)
	if reg.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if reg.User.Email != "rider@example.com" {
		t.Fatalf("expected lowercased email, got %q", reg.User.Email)
	}
	if reg.User.Role != "passenger" {
		t.Fatalf("expected passenger role, got %q", reg.User.Role)
	}

	// Duplicate registration.
	doJSON(t, http.MethodPost, env.server.URL+"/auth/register", "", body, http.StatusConflict).Body.Close()

	login := map[string]string{"email": "rider@example.com", "password": "hunter22x"}
	doJSON(t, http.MethodPost, env.server.URL+"/auth/login", "", login, http.StatusOK).Body.Close()

	login["password"] = "wrong-password"
	doJSON(t, http.MethodPost, env.server.URL+"/auth/login", "", login, http.StatusUnauthorized).Body.Close()
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := setupTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "hunter22x"}},
		{"short password", map[string]string{"email": "a@b.com", "password": "short"}},
		{"bad role", map[string]string{"email": "a@b.com", "password": "hunter22x", "role": "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doJSON(t, http.MethodPost, env.server.URL+"/auth/register", "", tc.body, http.StatusBadRequest).Body.Close()
		})
	}
}

func TestActivities_RequiresAuth(t *testing.T) {
	env := setupTestServer(t)
	doJSON(t, http.MethodGet, env.server.URL+"/activities", "", nil, http.StatusUnauthorized).Body.Close()
}

func TestActivities_QueryAndPaginate(t *testing.T) {
	env := setupTestServer(t)
	token := testToken(t, 1, "rider@example.com", "passenger")

	resp := doJSON(t, http.MethodGet, env.server.URL+"/activities?page_size=5", token, nil, http.StatusOK)
	var page activity.Result
	decode(t, resp, &page)
	if page.TotalCount != 6 || page.TotalPages != 2 {
		t.Fatalf("expected 6 items over 2 pages, got %d over %d", page.TotalCount, page.TotalPages)
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on page 1, got %d", len(page.Items))
	}

	resp = doJSON(t, http.MethodGet, env.server.URL+"/activities?status=completed", token, nil, http.StatusOK)
	decode(t, resp, &page)
	if page.TotalCount != 3 {
		t.Fatalf("expected 3 completed trips, got %d", page.TotalCount)
	}

	resp = doJSON(t, http.MethodGet, env.server.URL+"/activities?date=today", token, nil, http.StatusOK)
	decode(t, resp, &page)
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 trips today, got %d", page.TotalCount)
	}

	doJSON(t, http.MethodGet, env.server.URL+"/activities?date=yesterday", token, nil, http.StatusBadRequest).Body.Close()
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	env := setupTestServer(t)

	doJSON(t, http.MethodGet, env.server.URL+"/admin/bookings", "", nil, http.StatusUnauthorized).Body.Close()

	rider := testToken(t, 1, "rider@example.com", "passenger")
	doJSON(t, http.MethodGet, env.server.URL+"/admin/bookings", rider, nil, http.StatusForbidden).Body.Close()

	admin := testToken(t, 2, "admin@example.com", "admin")
	resp := doJSON(t, http.MethodGet, env.server.URL+"/admin/bookings", admin, nil, http.StatusOK)
	var out struct {
		Items []domain.ConfirmedBooking `json:"items"`
	}
	decode(t, resp, &out)
	if len(out.Items) != 0 {
		t.Fatalf("expected no bookings yet, got %d", len(out.Items))
	}
}

func TestMyBookings_ListsOwnOnly(t *testing.T) {
	env := setupTestServer(t)
	rider := testToken(t, 1, "rider@example.com", "passenger")

	token := createSessionAs(t, env, rider)
	doJSON(t, http.MethodPut, sessionURL(env, token, "/route"), rider, map[string]any{"route_id": 1}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/vehicle"), rider, map[string]any{"vehicle_id": 10}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/seat"), rider, map[string]any{"seat_id": 1001}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPut, sessionURL(env, token, "/time-slot"), rider, map[string]any{"time_slot_id": 100}, http.StatusOK).Body.Close()
	doJSON(t, http.MethodPost, sessionURL(env, token, "/complete"), rider, nil, http.StatusOK).Body.Close()

	resp := doJSON(t, http.MethodGet, env.server.URL+"/bookings", rider, nil, http.StatusOK)
	var out struct {
		Items []domain.ConfirmedBooking `json:"items"`
	}
	decode(t, resp, &out)
	if len(out.Items) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(out.Items))
	}

	other := testToken(t, 42, "other@example.com", "passenger")
	resp = doJSON(t, http.MethodGet, env.server.URL+"/bookings", other, nil, http.StatusOK)
	decode(t, resp, &out)
	if len(out.Items) != 0 {
		t.Fatalf("expected no bookings for another rider, got %d", len(out.Items))
	}
}

func createSessionAs(t *testing.T, env *testEnv, token string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, env.server.URL+"/bookings/sessions", token, nil, http.StatusCreated)
	var out struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	decode(t, resp, &out)
	return out.Session.Token
}
