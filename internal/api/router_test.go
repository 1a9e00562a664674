package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-api/internal/appointments"
	"booking-api/internal/auth"
	"booking-api/internal/catalog"
	"booking-api/internal/models"
	"booking-api/internal/storetest"
	"booking-api/internal/users"
	"booking-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *users.Manager
}

func newTestServer(t *testing.T, health func(context.Context) error) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	val := validation.New()

	tokens := auth.NewManager("router-test-secret", time.Hour, "booking-api")
	usersMgr := users.NewManager(storetest.NewUsers(), tokens, nil, val, log)
	catalogMgr := catalog.NewManager(
		storetest.New[models.Provider]("email"),
		storetest.New[models.Service](),
		nil, time.Minute, val, log,
	)
	appointmentsMgr := appointments.NewManager(storetest.New[models.Appointment](), catalogMgr, val, nil, log)

	handler := NewRouter(Deps{
		Log:          log,
		Users:        usersMgr,
		Catalog:      catalogMgr,
		Appointments: appointmentsMgr,
		CORSOrigins:  []string{"*"},
		Health:       health,
	})
	return &testServer{t: t, handler: handler, users: usersMgr}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out interface{}) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode: %v (%s)", err, rec.Body.String())
		}
	}
}

// seedAdmin stores an admin directly, the way cmd/seed does.
func (s *testServer) seedAdmin() string {
	s.t.Helper()
	ctx := context.Background()
	if _, err := s.users.Create(ctx, users.CreateRequest{
		Email: "admin@example.com", Password: "admin-pw", Name: "Admin", Role: models.RoleAdmin,
	}); err != nil {
		s.t.Fatalf("seed admin: %v", err)
	}
	resp, err := s.users.Login(ctx, users.LoginRequest{Email: "admin@example.com", Password: "admin-pw"})
	if err != nil {
		s.t.Fatalf("admin login: %v", err)
	}
	return resp.Token
}

func (s *testServer) register(email string) users.AuthResponse {
	s.t.Helper()
	var resp users.AuthResponse
	s.expect(s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "pw-" + email, "name": "User " + email,
	}), http.StatusCreated, &resp)
	return resp
}

func TestBookingEndToEnd(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seedAdmin()
	client := s.register("a@example.com")
	if client.User.Role != models.RoleClient {
		t.Fatalf("expected client role, got %s", client.User.Role)
	}

	var svc models.Service
	s.expect(s.do(http.MethodPost, "/services", adminToken, map[string]interface{}{
		"name": "Consultation", "durationMin": 30, "price": 50,
	}), http.StatusCreated, &svc)

	var provider models.Provider
	s.expect(s.do(http.MethodPost, "/providers", adminToken, map[string]interface{}{
		"name": "Dr. B", "email": "drb@example.com", "specialties": []string{"general"},
	}), http.StatusCreated, &provider)

	start := "2025-06-02T10:00:00Z"
	var appt models.Appointment
	s.expect(s.do(http.MethodPost, "/appointments", client.Token, map[string]interface{}{
		"clientId":   client.User.ID,
		"providerId": provider.ID,
		"serviceId":  svc.ID,
		"startAt":    start,
	}), http.StatusCreated, &appt)

	wantEnd := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	if !appt.EndAt.Equal(wantEnd) {
		t.Fatalf("expected endAt %s, got %s", wantEnd, appt.EndAt)
	}
	if appt.Status != models.AppointmentStatusScheduled {
		t.Fatalf("expected scheduled, got %s", appt.Status)
	}
	if appt.CreatedBy == nil || *appt.CreatedBy != client.User.ID {
		t.Fatalf("expected createdBy to default to the caller, got %v", appt.CreatedBy)
	}

	var updated models.Appointment
	s.expect(s.do(http.MethodPut, "/appointments/"+appt.ID, client.Token, map[string]string{
		"status": "confirmed",
	}), http.StatusOK, &updated)
	if updated.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if !updated.StartAt.Equal(appt.StartAt) || !updated.EndAt.Equal(appt.EndAt) {
		t.Fatalf("times changed on status update")
	}
	if updated.UpdatedAt.Before(appt.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}

	var got models.Appointment
	s.expect(s.do(http.MethodGet, "/appointments/"+appt.ID, client.Token, nil), http.StatusOK, &got)
	if got.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("expected stored status confirmed, got %s", got.Status)
	}

	var list []models.Appointment
	s.expect(s.do(http.MethodGet, "/api/appointments", client.Token, nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(list))
	}

	s.expect(s.do(http.MethodDelete, "/appointments/"+appt.ID, client.Token, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodDelete, "/appointments/"+appt.ID, client.Token, nil), http.StatusNotFound, nil)
}

func TestAppointmentErrors(t *testing.T) {
	s := newTestServer(t, nil)
	client := s.register("c@example.com")

	var errBody struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	s.expect(s.do(http.MethodGet, "/appointments/not-an-id", client.Token, nil), http.StatusBadRequest, &errBody)
	if !errBody.Error || errBody.Message == "" {
		t.Fatalf("unexpected error body: %+v", errBody)
	}

	s.expect(s.do(http.MethodGet, "/appointments/"+primitive.NewObjectID().Hex(), client.Token, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodGet, "/appointments", "", nil), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodGet, "/appointments", "forged", nil), http.StatusUnauthorized, nil)

	// service does not exist, so endAt cannot be derived
	s.expect(s.do(http.MethodPost, "/appointments", client.Token, map[string]string{
		"clientId":   client.User.ID,
		"providerId": primitive.NewObjectID().Hex(),
		"serviceId":  primitive.NewObjectID().Hex(),
		"startAt":    "2025-06-02T10:00:00Z",
	}), http.StatusBadRequest, nil)

	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString("{bad"))
	req.Header.Set("Authorization", "Bearer "+client.Token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestUserAuthorization(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seedAdmin()
	a := s.register("a@example.com")
	b := s.register("b@example.com")

	s.expect(s.do(http.MethodGet, "/users/"+b.User.ID, a.Token, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/users/"+a.User.ID, a.Token, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/users", a.Token, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodDelete, "/users/"+a.User.ID, a.Token, nil), http.StatusForbidden, nil)

	var all []map[string]interface{}
	s.expect(s.do(http.MethodGet, "/users", adminToken, nil), http.StatusOK, &all)
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
	for _, u := range all {
		if _, ok := u["passwordHash"]; ok {
			t.Fatalf("password hash leaked: %v", u)
		}
	}

	// role is silently dropped for non-admins
	var self models.User
	s.expect(s.do(http.MethodPut, "/users/"+a.User.ID, a.Token, map[string]string{
		"name": "Renamed", "role": "admin",
	}), http.StatusOK, &self)
	if self.Name != "Renamed" || self.Role != models.RoleClient {
		t.Fatalf("unexpected self update: %+v", self)
	}

	// only restricted fields: nothing left to update
	s.expect(s.do(http.MethodPut, "/users/"+a.User.ID, a.Token, map[string]string{"role": "admin"}), http.StatusBadRequest, nil)

	s.expect(s.do(http.MethodPut, "/users/"+a.User.ID, adminToken, map[string]string{"role": "provider"}), http.StatusOK, &self)
	if self.Role != models.RoleProvider {
		t.Fatalf("expected admin to change role, got %s", self.Role)
	}

	s.expect(s.do(http.MethodDelete, "/users/"+b.User.ID, adminToken, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/appointments", b.Token, nil), http.StatusUnauthorized, nil)
}

func TestRegisterConflictAndRoles(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seedAdmin()
	s.register("dup@example.com")

	s.expect(s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "dup@example.com", "password": "x", "name": "Again",
	}), http.StatusConflict, nil)

	providerBody := map[string]string{"email": "p@example.com", "password": "x", "name": "P", "role": "provider"}
	s.expect(s.do(http.MethodPost, "/auth/register", "", providerBody), http.StatusForbidden, nil)

	var resp users.AuthResponse
	s.expect(s.do(http.MethodPost, "/auth/register", adminToken, providerBody), http.StatusCreated, &resp)
	if resp.User.Role != models.RoleProvider {
		t.Fatalf("expected provider, got %s", resp.User.Role)
	}

	s.expect(s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "p@example.com", "password": "wrong",
	}), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "p@example.com", "password": "x",
	}), http.StatusOK, nil)
	s.expect(s.do(http.MethodPost, "/auth/google", "", map[string]string{"idToken": "tok"}), http.StatusUnauthorized, nil)
}

func TestCatalogAccess(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seedAdmin()
	client := s.register("c@example.com")

	body := map[string]interface{}{"name": "Yoga", "durationMin": 45, "price": 10}
	s.expect(s.do(http.MethodPost, "/services", "", body), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/services", client.Token, body), http.StatusForbidden, nil)

	var svc models.Service
	s.expect(s.do(http.MethodPost, "/services", adminToken, body), http.StatusCreated, &svc)

	var list []models.Service
	s.expect(s.do(http.MethodGet, "/services", "", nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 service, got %d", len(list))
	}
	s.expect(s.do(http.MethodGet, "/services/"+svc.ID, "", nil), http.StatusOK, nil)

	var updated models.Service
	s.expect(s.do(http.MethodPut, "/services/"+svc.ID, adminToken, map[string]interface{}{"price": 12.5}), http.StatusOK, &updated)
	if updated.Price != 12.5 || updated.DurationMin != 45 {
		t.Fatalf("unexpected merge: %+v", updated)
	}

	s.expect(s.do(http.MethodPost, "/services", adminToken, map[string]interface{}{"name": "x", "price": 1}), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodDelete, "/services/"+svc.ID, adminToken, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/services/"+svc.ID, "", nil), http.StatusNotFound, nil)

	s.expect(s.do(http.MethodPost, "/providers", adminToken, map[string]interface{}{"name": "P", "email": "p@x.io"}), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/providers", adminToken, map[string]interface{}{"name": "Q", "email": "p@x.io"}), http.StatusConflict, nil)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(s.do(http.MethodGet, "/healthz", "", nil), http.StatusOK, nil)

	down := newTestServer(t, func(context.Context) error { return errors.New("no primary") })
	down.expect(down.do(http.MethodGet, "/healthz", "", nil), http.StatusServiceUnavailable, nil)
}

func TestResponsesCarryRequestID(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodGet, "/nowhere", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}
