package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/CoolCoder0110/Movie-API/internal/store"
	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errAlwaysFail = errors.New("broker unavailable")

// fakeStore implements UserStore with canned results.
type fakeStore struct {
	users     map[string]*models.User
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, req models.CreateUserRequest) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if req.UserID == "" || req.Name == "" || req.Email == "" {
		return nil, store.ErrMissingFields
	}
	if _, ok := f.users[req.UserID]; ok {
		return nil, store.ErrUserExists
	}
	u := &models.User{UserID: req.UserID, Name: req.Name, Email: req.Email}
	for _, id := range req.Movies {
		u.Movies = append(u.Movies, models.Movie{IMDBID: id})
	}
	f.users[req.UserID] = u
	return u, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) ListUsersWithMovies(ctx context.Context) ([]models.User, error) {
	return f.ListUsers(ctx)
}

func (f *fakeStore) UpdateUser(_ context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	return u, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, userID string) error {
	if _, ok := f.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

// passthroughEnricher maps every association to a fixed title.
type passthroughEnricher struct{}

func (passthroughEnricher) EnrichAll(_ context.Context, movies []models.Movie) []models.EnrichedMovie {
	out := make([]models.EnrichedMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, models.EnrichedMovie{IMDBID: m.IMDBID, Title: "Stub Title", Year: "2000"})
	}
	return out
}

// mockPublisher implements EventPublisher for testing.
type mockPublisher struct {
	published []publishedMsg
	err       error
}

type publishedMsg struct {
	RoutingKey    string
	Body          []byte
	CorrelationID string
}

func (m *mockPublisher) Publish(routingKey string, body []byte, correlationID string) error {
	m.published = append(m.published, publishedMsg{
		RoutingKey:    routingKey,
		Body:          body,
		CorrelationID: correlationID,
	})
	return m.err
}

func newTestRouter(fs *fakeStore, pub EventPublisher) *gin.Engine {
	return NewRouter(NewUserHandler(fs, passthroughEnricher{}, pub))
}

func TestCreateUser_Success(t *testing.T) {
	fs := newFakeStore()
	pub := &mockPublisher{}
	router := newTestRouter(fs, pub)

	body := `{"user_id":"u1","name":"Ann","email":"a@x.com","movies":["tt0111161"]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	if _, ok := fs.users["u1"]; !ok {
		t.Fatal("expected user u1 to be stored")
	}
	if len(fs.users["u1"].Movies) != 1 {
		t.Errorf("expected 1 initial movie, got %d", len(fs.users["u1"].Movies))
	}

	// Verify event was published
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	if pub.published[0].RoutingKey != "user.created" {
		t.Errorf("expected routing key user.created, got %s", pub.published[0].RoutingKey)
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	body := `{"user_id":"u1","name":"Ann"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["message"] != "User ID, name, and email are required" {
		t.Errorf("unexpected message: %q", resp["message"])
	}
}

func TestCreateUser_Conflict(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	pub := &mockPublisher{}
	router := newTestRouter(fs, pub)

	body := `{"user_id":"u1","name":"Ann","email":"a@x.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
	if len(pub.published) != 0 {
		t.Errorf("expected no event for failed create, got %d", len(pub.published))
	}
}

func TestCreateUser_InvalidJSON(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{invalid"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetUser_EnrichedMovies(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{
		UserID: "u1",
		Name:   "Ann",
		Email:  "a@x.com",
		Movies: []models.Movie{{IMDBID: "tt0111161"}},
	}
	router := newTestRouter(fs, &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users/u1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID string                 `json:"user_id"`
		Name   string                 `json:"name"`
		Email  string                 `json:"email"`
		Movies []models.EnrichedMovie `json:"movies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.UserID != "u1" || resp.Name != "Ann" {
		t.Errorf("unexpected user fields: %+v", resp)
	}
	if len(resp.Movies) != 1 {
		t.Fatalf("expected 1 enriched movie, got %d", len(resp.Movies))
	}
	if resp.Movies[0].Title != "Stub Title" {
		t.Errorf("expected enriched title, got %q", resp.Movies[0].Title)
	}
}

func TestGetUser_NoMoviesIsEmptyList(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	router := newTestRouter(fs, &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users/u1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"movies":[]`)) {
		t.Errorf("expected empty movies array, got %s", w.Body.String())
	}
}

func TestGetUser_NotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users/missing", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListUsers_Success(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	fs.users["u2"] = &models.User{UserID: "u2", Name: "Bob", Email: "b@x.com"}
	router := newTestRouter(fs, &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var users []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
	// Summaries carry no movie list
	for _, u := range users {
		if _, ok := u["movies"]; ok {
			t.Errorf("expected no movies key in summary: %v", u)
		}
	}
}

func TestListUsers_EmptyIsNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for zero users, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["message"] != "No users found" {
		t.Errorf("unexpected message: %q", resp["message"])
	}
}

func TestListUsersWithMovies(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{
		UserID: "u1",
		Name:   "Ann",
		Email:  "a@x.com",
		Movies: []models.Movie{{IMDBID: "tt0111161"}, {IMDBID: "tt0068646"}},
	}
	router := newTestRouter(fs, &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/users/movies", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp []struct {
		UserID string                 `json:"user_id"`
		Movies []models.EnrichedMovie `json:"movies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 user, got %d", len(resp))
	}
	if len(resp[0].Movies) != 2 {
		t.Errorf("expected 2 enriched movies, got %d", len(resp[0].Movies))
	}
}

func TestUpdateUser_Success(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	pub := &mockPublisher{}
	router := newTestRouter(fs, pub)

	body := `{"name":"Ann Smith"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/users/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if fs.users["u1"].Name != "Ann Smith" {
		t.Errorf("expected name updated, got %s", fs.users["u1"].Name)
	}
	if fs.users["u1"].Email != "a@x.com" {
		t.Errorf("expected email unchanged, got %s", fs.users["u1"].Email)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	if pub.published[0].RoutingKey != "user.updated" {
		t.Errorf("expected routing key user.updated, got %s", pub.published[0].RoutingKey)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	body := `{"name":"Updated"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/users/missing", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateUser_RemoveMissingMovie(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	fs.updateErr = store.ErrMovieNotFound
	router := newTestRouter(fs, &mockPublisher{})

	body := `{"action":"remove","imdb_id":"tt9999999"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/users/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["message"] != "Movie not found for this user" {
		t.Errorf("unexpected message: %q", resp["message"])
	}
}

func TestDeleteUser_Success(t *testing.T) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{UserID: "u1", Name: "Ann", Email: "a@x.com"}
	pub := &mockPublisher{}
	router := newTestRouter(fs, pub)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := fs.users["u1"]; ok {
		t.Error("expected user u1 to be deleted")
	}
	if len(pub.published) != 1 || pub.published[0].RoutingKey != "user.deleted" {
		t.Errorf("expected one user.deleted event, got %+v", pub.published)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/users/missing", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	fs := newFakeStore()
	pub := &mockPublisher{err: errAlwaysFail}
	router := newTestRouter(fs, pub)

	body := `{"user_id":"u1","name":"Ann","email":"a@x.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201 despite publish failure, got %d", w.Code)
	}
}

func TestNilPublisherIsAllowed(t *testing.T) {
	fs := newFakeStore()
	router := newTestRouter(fs, nil)

	body := `{"user_id":"u1","name":"Ann","email":"a@x.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with nil publisher, got %d", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(newFakeStore(), &mockPublisher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestCorrelationIDPassedToEvent(t *testing.T) {
	fs := newFakeStore()
	pub := &mockPublisher{}
	router := newTestRouter(fs, pub)

	body := `{"user_id":"u1","name":"Ann","email":"a@x.com"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", "test-corr-id-123")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	if pub.published[0].CorrelationID != "test-corr-id-123" {
		t.Errorf("expected correlation ID test-corr-id-123, got %s", pub.published[0].CorrelationID)
	}

	var event models.WatchlistEvent
	if err := json.Unmarshal(pub.published[0].Body, &event); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if event.CorrelationID != "test-corr-id-123" {
		t.Errorf("expected event correlation ID test-corr-id-123, got %s", event.CorrelationID)
	}
}
