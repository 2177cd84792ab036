package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	repomem "github.com/tendant/simple-gallery/pkg/simplegallery/repo/memory"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
	snapmem "github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/memory"
)

// quickDeriver avoids the production PBKDF2 cost in tests.
type quickDeriver struct{}

func (quickDeriver) DeriveKey(password string, salt []byte) []byte {
	sum := sha256.Sum256(append([]byte(password), salt...))
	return sum[:]
}

type testEnv struct {
	router  http.Handler
	service simplegallery.Service
	manager *snapshot.Manager
}

// setupAPITest wires the full authenticated route tree the way the server
// binary does, backed by an in-memory repository and snapshot store.
func setupAPITest(t *testing.T) *testEnv {
	t.Helper()

	service, err := simplegallery.New(
		simplegallery.WithRepository(repomem.New()),
		simplegallery.WithKeyDeriver(quickDeriver{}),
	)
	require.NoError(t, err)

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	manager := snapshot.NewManager(snapmem.New())

	r := chi.NewRouter()
	r.Mount("/auth", NewAuthHandler(service, tokenAuth, time.Hour).Routes())
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Mount("/users", NewUserHandler(service).Routes())
		r.Mount("/galleries", NewGalleryHandler(service).Routes())
		r.Mount("/posts", NewPostHandler(service).Routes())
		r.Mount("/comments", NewCommentHandler(service).Routes())
		r.Mount("/settings", NewSettingsHandler(service).Routes())
		r.Mount("/snapshots", NewSnapshotHandler(service, manager).Routes())
	})

	return &testEnv{router: r, service: service, manager: manager}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

// register creates an account through the API and returns its response body.
func (e *testEnv) register(t *testing.T, username string) UserResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{
		Username: username,
		Password: username + "-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user UserResponse
	decode(t, rec, &user)
	return user
}

// login authenticates through the API and returns a bearer token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", CredentialsRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TokenResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, err := e.service.EnsureBootstrapAdmin(context.Background(), simplegallery.BootstrapAdminRequest{
		Username: "root",
		Secret:   "root-secret",
	})
	require.NoError(t, err)
	return e.login(t, "root", "root-secret")
}

func TestAuthEndpoints(t *testing.T) {
	env := setupAPITest(t)

	t.Run("Register", func(t *testing.T) {
		user := env.register(t, "alice")
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "user", user.Role)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{
			Username: "alice", Password: "other",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("InvalidUsername", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{
			Username: "a", Password: "pw",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Login", func(t *testing.T) {
		token := env.login(t, "alice", "alice-password")
		assert.NotEmpty(t, token)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", CredentialsRequest{
			Username: "alice", Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", CredentialsRequest{
			Username: "nobody", Password: "irrelevant",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGalleryEndpoints(t *testing.T) {
	env := setupAPITest(t)
	env.register(t, "alice")
	token := env.login(t, "alice", "alice-password")

	t.Run("RequiresAuth", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/galleries", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var galleryID string
	t.Run("Create", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/galleries", token, CreateGalleryRequest{
			Title: "  Road Trips  ",
			Color: "#A1B2C3",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp GalleryResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Road Trips", resp.Title)
		assert.Equal(t, "a1b2c3", resp.Color)
		galleryID = resp.ID
	})

	t.Run("InvalidColor", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/galleries", token, CreateGalleryRequest{
			Title: "Bad", Color: "not-a-color",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("List", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/galleries", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var listings []GalleryResponse
		decode(t, rec, &listings)
		require.Len(t, listings, 1)
		assert.Equal(t, "alice", listings[0].OwnerUsername)
	})

	t.Run("Get", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/galleries/"+galleryID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp GalleryResponse
		decode(t, rec, &resp)
		assert.Equal(t, galleryID, resp.ID)
	})

	t.Run("Update", func(t *testing.T) {
		title := "Renamed"
		rec := env.do(t, http.MethodPut, "/galleries/"+galleryID, token, UpdateGalleryRequest{
			Title: &title,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp GalleryResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Renamed", resp.Title)
	})

	t.Run("Lifecycle", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/galleries/"+galleryID, token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		// Deleted galleries drop out of the default listing.
		rec = env.do(t, http.MethodGet, "/galleries", token, nil)
		var listings []GalleryResponse
		decode(t, rec, &listings)
		assert.Empty(t, listings)

		// Double delete conflicts.
		rec = env.do(t, http.MethodDelete, "/galleries/"+galleryID, token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.do(t, http.MethodPost, "/galleries/"+galleryID+"/restore", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodDelete, "/galleries/"+galleryID+"/purge", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/galleries/"+galleryID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/galleries/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostAndCommentEndpoints(t *testing.T) {
	env := setupAPITest(t)
	alice := env.register(t, "alice")
	env.register(t, "bob")
	aliceToken := env.login(t, "alice", "alice-password")
	bobToken := env.login(t, "bob", "bob-password")

	rec := env.do(t, http.MethodPost, "/galleries", aliceToken, CreateGalleryRequest{Title: "Shared"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var gallery GalleryResponse
	decode(t, rec, &gallery)

	var postID string
	t.Run("CrossOwnerPost", func(t *testing.T) {
		// Bob posts into Alice's gallery; the response records the
		// gallery's owner.
		rec := env.do(t, http.MethodPost, "/posts", bobToken, CreatePostRequest{
			GalleryID:      gallery.ID,
			GalleryOwnerID: alice.ID,
			Title:          "From Bob",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp PostResponse
		decode(t, rec, &resp)
		assert.Equal(t, alice.ID, resp.GalleryOwnerID)
		postID = resp.ID
	})

	t.Run("MissingGallery", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/posts", bobToken, CreatePostRequest{
			GalleryID: "00000000-0000-0000-0000-000000000001",
			Title:     "Nowhere",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("GalleryPostsListing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/galleries/"+gallery.ID+"/posts", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var posts []PostResponse
		decode(t, rec, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, "From Bob", posts[0].Title)
	})

	var commentID string
	t.Run("Comment", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/comments", aliceToken, CreateCommentRequest{
			PostID: postID,
			Text:   "Nice one",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp CommentResponse
		decode(t, rec, &resp)
		commentID = resp.ID

		rec = env.do(t, http.MethodGet, "/posts/"+postID+"/comments", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var comments []CommentResponse
		decode(t, rec, &comments)
		require.Len(t, comments, 1)
		assert.Equal(t, "Nice one", comments[0].Text)
	})

	t.Run("CommentOnDeletedPost", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, fmt.Sprintf("/posts/%s?author=%s", postID, mustUserID(t, env, "bob")), bobToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodPost, "/comments", aliceToken, CreateCommentRequest{
			PostID: postID,
			Text:   "Too late",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.do(t, http.MethodPost, "/posts/"+postID+"/restore", bobToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		// Bob cannot delete Alice's comment.
		rec := env.do(t, http.MethodDelete, fmt.Sprintf("/comments/%s?author=%s", commentID, alice.ID), bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// mustUserID looks up a username's ID through the service.
func mustUserID(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	users, err := env.service.ListUsers(context.Background())
	require.NoError(t, err)
	for _, u := range users {
		if u.Username == username {
			return u.ID.String()
		}
	}
	t.Fatalf("user %q not found", username)
	return ""
}

func TestSettingsEndpoints(t *testing.T) {
	env := setupAPITest(t)
	env.register(t, "alice")
	token := env.login(t, "alice", "alice-password")

	t.Run("Defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/settings", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp simplegallery.Settings
		decode(t, rec, &resp)
		assert.Equal(t, simplegallery.DefaultTheme, resp.Theme)
	})

	t.Run("Update", func(t *testing.T) {
		theme := "light"
		accent := "#FF8800"
		rec := env.do(t, http.MethodPut, "/settings", token, UpdateSettingsRequest{
			Theme:  &theme,
			Accent: &accent,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp simplegallery.Settings
		decode(t, rec, &resp)
		assert.Equal(t, "light", resp.Theme)
		assert.Equal(t, "ff8800", resp.Accent)
	})

	t.Run("InvalidTheme", func(t *testing.T) {
		theme := "solarized"
		rec := env.do(t, http.MethodPut, "/settings", token, UpdateSettingsRequest{Theme: &theme})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSnapshotEndpoints(t *testing.T) {
	env := setupAPITest(t)
	env.register(t, "alice")
	userToken := env.login(t, "alice", "alice-password")
	adminToken := env.adminToken(t)

	t.Run("AdminOnly", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/snapshots/export", userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/snapshots/save", userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("RestoreWithoutSnapshots", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/snapshots/restore", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("SaveAndRestore", func(t *testing.T) {
		// Snapshot the current state, mutate, then roll back.
		rec := env.do(t, http.MethodPost, "/galleries", userToken, CreateGalleryRequest{Title: "Keep Me"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, "/snapshots/save", adminToken, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var saved SaveResponse
		decode(t, rec, &saved)
		assert.NotEmpty(t, saved.Key)

		rec = env.do(t, http.MethodPost, "/galleries", userToken, CreateGalleryRequest{Title: "Lose Me"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, "/snapshots/restore", adminToken, RestoreRequest{Key: saved.Key})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, "/galleries", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var listings []GalleryResponse
		decode(t, rec, &listings)
		require.Len(t, listings, 1)
		assert.Equal(t, "Keep Me", listings[0].Title)
	})

	t.Run("Export", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/snapshots/export", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var doc simplegallery.Document
		decode(t, rec, &doc)
		assert.Equal(t, simplegallery.DocumentVersion, doc.Version)
	})
}
