package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photo-rating-backend/internal/config"
	"photo-rating-backend/internal/repository"
	"photo-rating-backend/internal/services"
	"photo-rating-backend/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testApp struct {
	router http.Handler
	store  *repository.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := repository.NewMemoryStore()
	blobs, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	hub := services.NewWSHub()
	ledger := services.NewLedger(store)

	router := NewRouter(RouterConfig{
		Users: services.NewUserService(store.Users(), config.JWTConfig{
			Secret:      "test-secret",
			Expiry:      time.Hour,
			ResetExpiry: 15 * time.Minute,
		}),
		Ledger:     ledger,
		Photos:     services.NewPhotoService(store, ledger, blobs, hub),
		Ratings:    services.NewRatingService(store, ledger, hub),
		Feed:       services.NewFeedService(store, blobs),
		Hub:        hub,
		UploadsDir: blobs.Dir(),
	})

	return &testApp{router: router, store: store}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type testUser struct {
	id    string
	token string
}

// register creates a user through the API and sets points and profile directly
func (a *testApp) register(t *testing.T, email string, points int, gender string, age int) testUser {
	t.Helper()

	w := a.do(t, "POST", "/api/register", "", map[string]string{"email": email, "password": "secret1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &resp)

	ctx := context.Background()
	if points != 0 {
		if _, err := a.store.Users().AddPoints(ctx, resp.User.ID, points); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.store.Users().UpdateProfile(ctx, resp.User.ID, gender, age); err != nil {
		t.Fatal(err)
	}
	return testUser{id: resp.User.ID, token: resp.Token}
}

// upload posts a PNG and returns the new photo ID
func (a *testApp) upload(t *testing.T, user testUser) string {
	t.Helper()

	w := a.uploadFile(t, user, "photo.png", pngHeader)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decode(t, w, &resp)
	return resp["photoId"]
}

func (a *testApp) uploadFile(t *testing.T, user testUser, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload-photo", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user.token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}
