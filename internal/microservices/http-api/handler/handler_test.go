package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- SETUP ---

type mocks struct {
	auth    *MockAuthService
	catalog *MockCatalogService
	title   *MockTitleService
	review  *MockReviewService
	comment *MockCommentService
	user    *MockUserService
}

var (
	aliceUser = &models.User{ID: 1, Username: "alice", Role: models.RoleUser, IsActive: true}
	modUser   = &models.User{ID: 3, Username: "mod", Role: models.RoleModerator, IsActive: true}
	adminUser = &models.User{ID: 4, Username: "root", Role: models.RoleAdmin, IsActive: true}

	alice = service.PrincipalOf(aliceUser)
)

func setupRouter() (*gin.Engine, mocks) {
	gin.SetMode(gin.TestMode)
	m := mocks{
		auth:    new(MockAuthService),
		catalog: new(MockCatalogService),
		title:   new(MockTitleService),
		review:  new(MockReviewService),
		comment: new(MockCommentService),
		user:    new(MockUserService),
	}
	r := handler.NewRouter(handler.RouterConfig{
		Logger: zap.NewNop(),
		Tokens: stubTokens{"alice": aliceUser, "mod": modUser, "admin": adminUser},
	}, handler.Handlers{
		Auth:    handler.NewAuthHandler(m.auth),
		Catalog: handler.NewCatalogHandler(m.catalog),
		Title:   handler.NewTitleHandler(m.title),
		Review:  handler.NewReviewHandler(m.review),
		Comment: handler.NewCommentHandler(m.comment),
		User:    handler.NewUserHandler(m.user),
	})
	return r, m
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func intPtr(i int) *int { return &i }

// --- AUTH ---

func TestAuthHandler_Signup(t *testing.T) {
	r, m := setupRouter()

	t.Run("Success", func(t *testing.T) {
		m.auth.On("Signup", mock.Anything, "bob", "bob@example.com").
			Return(&models.User{Username: "bob", Email: "bob@example.com", ConfirmationCode: "SECRETCODE"}, nil).Once()

		w := do(r, http.MethodPost, "/v1/auth/signup/", "", gin.H{"username": "bob", "email": "bob@example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"username":"bob","email":"bob@example.com"}`, w.Body.String())
	})

	t.Run("ReservedName", func(t *testing.T) {
		m.auth.On("Signup", mock.Anything, "Me", "me@example.com").
			Return(nil, service.NewValidationError("username", `Username "Me" is reserved.`)).Once()

		w := do(r, http.MethodPost, "/v1/auth/signup/", "", gin.H{"username": "Me", "email": "me@example.com"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, fieldErrors(t, w), "username")
	})

	t.Run("BindErrorsAreFieldScoped", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/auth/signup/", "", gin.H{"username": "bad name", "email": "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errs := fieldErrors(t, w)
		assert.Contains(t, errs, "username")
		assert.Equal(t, []string{"Enter a valid email address."}, errs["email"])
	})

	t.Run("EmptyBody", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/auth/signup/", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errs := fieldErrors(t, w)
		assert.Equal(t, []string{"This field is required."}, errs["username"])
		assert.Equal(t, []string{"This field is required."}, errs["email"])
	})

	t.Run("AuthenticatedCallerIsForbidden", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/auth/signup/", "alice", gin.H{"username": "bob", "email": "bob@example.com"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthHandler_Token(t *testing.T) {
	r, m := setupRouter()

	tests := []struct {
		name     string
		username string
		code     string
		token    string
		err      error
		want     int
	}{
		{"Success", "alice", "ABCDEFGH23", "jwt-token", nil, http.StatusOK},
		{"UnknownUser", "ghost", "ABCDEFGH23", "", service.ErrUserNotFound, http.StatusNotFound},
		{"UnknownUserLongCode", "ghost", "ABCDEFGHJKL", "", service.ErrUserNotFound, http.StatusNotFound},
		{"LongCode", "alice", "ABCDEFGH23XYZ", "", service.ErrConfirmationCodeIncorrect, http.StatusBadRequest},
		{"WrongCode", "alice", "WRONGWRONG", "", service.ErrConfirmationCodeIncorrect, http.StatusBadRequest},
		{"Inactive", "alice", "ABCDEFGH23", "", service.ErrInactiveAccount, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.auth.On("ObtainToken", mock.Anything, tt.username, tt.code).Return(tt.token, tt.err).Once()

			w := do(r, http.MethodPost, "/v1/auth/token/", "", gin.H{"username": tt.username, "confirmation_code": tt.code})

			assert.Equal(t, tt.want, w.Code)
			if tt.err == nil {
				assert.JSONEq(t, `{"token":"jwt-token"}`, w.Body.String())
			}
		})
	}

	t.Run("BlankCode", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/auth/token/", "", gin.H{"username": "alice", "confirmation_code": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, fieldErrors(t, w), "confirmation_code")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	r, m := setupRouter()

	m.auth.On("Login", mock.Anything, "root", "correct-horse").Return("jwt-token", nil).Once()
	w := do(r, http.MethodPost, "/v1/auth/login/", "", gin.H{"username": "root", "password": "correct-horse"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"jwt-token"}`, w.Body.String())

	m.auth.On("Login", mock.Anything, "root", "wrong").Return("", service.ErrInvalidCredentials).Once()
	w = do(r, http.MethodPost, "/v1/auth/login/", "", gin.H{"username": "root", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/login/", "", gin.H{"username": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldErrors(t, w), "password")
}

// --- CATALOG ---

func TestCatalogHandler_CreateCategory_Permissions(t *testing.T) {
	r, m := setupRouter()
	body := gin.H{"name": "Books", "slug": "books"}

	m.catalog.On("CreateCategory", mock.Anything, dto.CreateCategoryRequest{Name: "Books", Slug: "books"}).
		Return(&dto.CatalogItemResponse{Name: "Books", Slug: "books"}, nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/v1/categories/", "", body).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/v1/categories/", "alice", body).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/v1/categories/", "mod", body).Code)

	w := do(r, http.MethodPost, "/v1/categories/", "admin", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"Books","slug":"books"}`, w.Body.String())
	m.catalog.AssertNumberOfCalls(t, "CreateCategory", 1)
}

func TestCatalogHandler_InvalidSlug(t *testing.T) {
	r, _ := setupRouter()

	w := do(r, http.MethodPost, "/v1/genres/", "admin", gin.H{"name": "Drama", "slug": "dr ama!"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldErrors(t, w), "slug")
}

func TestCatalogHandler_ListCategories(t *testing.T) {
	r, m := setupRouter()

	page := dto.NewPaginatedResponse([]dto.CatalogItemResponse{{Name: "Books", Slug: "books"}}, 1, 2, 100)
	m.catalog.On("ListCategories", mock.Anything, "boo", 2, 100).Return(page, nil)

	w := do(r, http.MethodGet, "/v1/categories/?search=boo&page=2&page_size=500", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"name":"Books","slug":"books"}],"page":2,"page_size":100,"total":1,"total_pages":1}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/categories/?page=0", "", nil).Code)
}

func TestCatalogHandler_DeleteGenre(t *testing.T) {
	r, m := setupRouter()

	m.catalog.On("DeleteGenre", mock.Anything, "drama").Return(nil)
	m.catalog.On("DeleteGenre", mock.Anything, "ghost").Return(service.ErrNotFound)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/v1/genres/drama/", "admin", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/v1/genres/ghost/", "admin", nil).Code)
}

// --- TITLES ---

func TestTitleHandler_ListFilters(t *testing.T) {
	r, m := setupRouter()
	year := 1965

	m.title.On("List", mock.Anything, repository.TitleFilter{CategorySlug: "books", GenreSlug: "sci-fi", Name: "dune", Year: &year}, 1, 20).
		Return(dto.NewPaginatedResponse([]dto.TitleResponse{}, 0, 1, 20), nil)

	w := do(r, http.MethodGet, "/v1/titles/?category=books&genre=sci-fi&name=dune&year=1965", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/v1/titles/?year=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldErrors(t, w), "year")
}

func TestTitleHandler_ListYearOutOfRange(t *testing.T) {
	r, m := setupRouter()

	tests := []struct {
		query string
		want  string
	}{
		{"99999", "Ensure this value is less than or equal to 32767."},
		{"-40000", "Ensure this value is greater than or equal to -32768."},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(r, http.MethodGet, "/v1/titles/?year="+tt.query, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, []string{tt.want}, fieldErrors(t, w)["year"])
		})
	}
	m.title.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleHandler_CreateValidation(t *testing.T) {
	r, _ := setupRouter()

	w := do(r, http.MethodPost, "/v1/titles/", "admin", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := fieldErrors(t, w)
	for _, f := range []string{"name", "year", "genre", "category"} {
		assert.Contains(t, errs, f)
	}

	w = do(r, http.MethodPost, "/v1/titles/", "admin", `{"name":"Dune","year":"soon","genre":["sci-fi"],"category":"books"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldErrors(t, w), "year")
}

func TestTitleHandler_Get(t *testing.T) {
	r, m := setupRouter()
	rating := 7.67

	m.title.On("Get", mock.Anything, int64(5)).Return(&dto.TitleResponse{
		ID: 5, Name: "Dune", Year: 1965, Rating: &rating,
		Genre:    []dto.CatalogItemResponse{{Name: "Sci-Fi", Slug: "sci-fi"}},
		Category: &dto.CatalogItemResponse{Name: "Books", Slug: "books"},
	}, nil)

	w := do(r, http.MethodGet, "/v1/titles/5/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"name":"Dune","year":1965,"rating":7.67,"description":"",
		"genre":[{"name":"Sci-Fi","slug":"sci-fi"}],"category":{"name":"Books","slug":"books"}}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/titles/abc/", "", nil).Code)
}

func TestTitleHandler_DeleteRequiresAdmin(t *testing.T) {
	r, m := setupRouter()
	m.title.On("Delete", mock.Anything, int64(5)).Return(nil)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/v1/titles/5/", "mod", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/v1/titles/5/", "admin", nil).Code)
}

// --- REVIEWS & COMMENTS ---

func TestReviewHandler_Create(t *testing.T) {
	r, m := setupRouter()

	t.Run("Anonymous", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/titles/5/reviews/", "", gin.H{"text": "great", "score": 8})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/titles/5/reviews/", "alice", gin.H{"text": "great", "score": 11})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Ensure this value is less than or equal to 10."}, fieldErrors(t, w)["score"])
	})

	t.Run("Duplicate", func(t *testing.T) {
		m.review.On("Create", mock.Anything, alice, int64(5), dto.CreateReviewRequest{Text: "again", Score: intPtr(3)}).
			Return(nil, service.NewValidationError(service.NonFieldErrors, "You have already reviewed this title.")).Once()

		w := do(r, http.MethodPost, "/v1/titles/5/reviews/", "alice", gin.H{"text": "again", "score": 3})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, fieldErrors(t, w), service.NonFieldErrors)
	})

	t.Run("Success", func(t *testing.T) {
		m.review.On("Create", mock.Anything, alice, int64(5), dto.CreateReviewRequest{Text: "great", Score: intPtr(8)}).
			Return(&dto.ReviewResponse{ID: 10, Text: "great", Author: "alice", Score: 8}, nil).Once()

		w := do(r, http.MethodPost, "/v1/titles/5/reviews/", "alice", gin.H{"text": "great", "score": 8})
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestReviewHandler_UpdateByOtherUser(t *testing.T) {
	r, m := setupRouter()

	m.review.On("Update", mock.Anything, alice, int64(5), int64(10), mock.Anything).
		Return(nil, permission.ErrPermissionDenied)

	w := do(r, http.MethodPatch, "/v1/titles/5/reviews/10/", "alice", gin.H{"score": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPatch, "/v1/titles/5/reviews/10/", "", gin.H{"score": 2})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommentHandler_Routes(t *testing.T) {
	r, m := setupRouter()

	m.comment.On("List", mock.Anything, int64(5), int64(10), 1, 20).
		Return(dto.NewPaginatedResponse([]dto.CommentResponse{}, 0, 1, 20), nil)
	m.comment.On("Get", mock.Anything, int64(5), int64(10), int64(99)).Return(nil, service.ErrNotFound)
	m.comment.On("Delete", mock.Anything, service.PrincipalOf(modUser), int64(5), int64(10), int64(20)).Return(nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/titles/5/reviews/10/comments/", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/titles/5/reviews/10/comments/99/", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/v1/titles/5/reviews/10/comments/20/", "mod", nil).Code)

	w := do(r, http.MethodPost, "/v1/titles/5/reviews/10/comments/", "alice", gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldErrors(t, w), "text")
}

// --- USERS ---

func TestUserHandler_Me(t *testing.T) {
	r, m := setupRouter()

	m.user.On("Me", mock.Anything, alice).Return(&dto.UserResponse{Username: "alice", Role: "user"}, nil)
	m.user.On("UpdateMe", mock.Anything, alice, mock.MatchedBy(func(req dto.UpdateUserRequest) bool {
		return req.Role != nil && *req.Role == "admin"
	})).Return(&dto.UserResponse{Username: "alice", Role: "user"}, nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/v1/users/me/", "", nil).Code)

	w := do(r, http.MethodGet, "/v1/users/me/", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	m.user.AssertNotCalled(t, "Get", mock.Anything, "me")

	w = do(r, http.MethodPatch, "/v1/users/me/", "alice", gin.H{"role": "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"user"`)
}

func TestUserHandler_AdminOnly(t *testing.T) {
	r, m := setupRouter()

	m.user.On("Get", mock.Anything, "alice").Return(&dto.UserResponse{Username: "alice"}, nil)
	m.user.On("Delete", mock.Anything, "ghost").Return(service.ErrNotFound)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/v1/users/", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/v1/users/alice/", "mod", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/users/alice/", "admin", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/v1/users/ghost/", "admin", nil).Code)

	w := do(r, http.MethodPost, "/v1/users/", "admin", gin.H{"username": "carol", "email": "c@example.com", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{`"owner" is not a valid choice.`}, fieldErrors(t, w)["role"])
}

// --- MISC ---

func TestRouter_BadTokenIsRejected(t *testing.T) {
	r, _ := setupRouter()

	w := do(r, http.MethodGet, "/v1/categories/", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := setupRouter()

	w := do(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
