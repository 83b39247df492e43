package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fitdesk/internal/errors"
	"fitdesk/internal/models"
	"fitdesk/internal/pagination"
	"fitdesk/internal/services"
	"fitdesk/internal/validator"
)

// --- mock user service ---

type mockUserService struct {
	signupFn         func(email, password, fullName string, age int) (*models.User, error)
	loginFn          func(email, password string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	listUsersFn      func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	updateUserFn     func(actor *models.User, userID string, fields services.UserUpdateFields) (*models.User, error)
	removeUserFn     func(actor *models.User, userID string) error
	addRoleFn        func(actor *models.User, userID string, role models.RoleName) (*models.User, error)
	removeRoleFn     func(actor *models.User, userID string, role models.RoleName) (*models.User, error)
}

func (m *mockUserService) Signup(email, password, fullName string, age int) (*models.User, error) {
	if m.signupFn != nil {
		return m.signupFn(email, password, fullName, age)
	}
	return &models.User{}, nil
}

func (m *mockUserService) Login(email, password string) (*models.User, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{
		Base:  models.Base{ID: id},
		Roles: []models.Role{{Name: models.RoleClient}},
	}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(actor *models.User, userID string, fields services.UserUpdateFields) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(actor, userID, fields)
	}
	return &models.User{}, nil
}

func (m *mockUserService) RemoveUser(actor *models.User, userID string) error {
	if m.removeUserFn != nil {
		return m.removeUserFn(actor, userID)
	}
	return nil
}

func (m *mockUserService) AddRole(actor *models.User, userID string, role models.RoleName) (*models.User, error) {
	if m.addRoleFn != nil {
		return m.addRoleFn(actor, userID, role)
	}
	return &models.User{}, nil
}

func (m *mockUserService) RemoveRole(actor *models.User, userID string, role models.RoleName) (*models.User, error) {
	if m.removeRoleFn != nil {
		return m.removeRoleFn(actor, userID, role)
	}
	return &models.User{}, nil
}

// verify interface compliance
var _ services.UserServicer = (*mockUserService)(nil)

// --- test helpers ---

const testActorID = "11111111-1111-1111-1111-111111111111"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/signup", handler.Signup)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectUserID(testActorID), handler.GetProfile)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		userSvc := &mockUserService{
			signupFn: func(email, _, fullName string, age int) (*models.User, error) {
				return &models.User{
					Base:     models.Base{ID: testActorID},
					Email:    email,
					FullName: fullName,
					Age:      age,
					IsActive: true,
					Roles:    []models.Role{{Name: models.RoleClient}},
				}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signup",
			`{"email":"test@example.com","password":"password123","full_name":"Jane Doe","age":28}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == nil || result["access_token"] == "" {
			t.Error("expected non-empty access_token")
		}
		user := result["user"].(map[string]interface{})
		if user["email"] != "test@example.com" {
			t.Errorf("expected email test@example.com, got %v", user["email"])
		}
		if user["password"] != nil {
			t.Error("password must never appear in responses")
		}
	})

	t.Run("returns 400 on missing full name", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signup",
			`{"email":"test@example.com","password":"password123","age":28}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signup",
			`{"email":"test@example.com","password":"short","full_name":"Jane Doe","age":28}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid age", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signup",
			`{"email":"test@example.com","password":"password123","full_name":"Jane Doe","age":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			signupFn: func(_, _, _ string, _ int) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signup",
			`{"email":"dup@example.com","password":"password123","full_name":"Jane Doe","age":28}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token on success", func(t *testing.T) {
		userSvc := &mockUserService{
			loginFn: func(email, _ string) (*models.User, error) {
				return &models.User{
					Base:  models.Base{ID: testActorID},
					Email: email,
					Roles: []models.Role{{Name: models.RoleClient}},
				}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"test@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == nil || result["access_token"] == "" {
			t.Error("expected non-empty access_token")
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			loginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"test@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login", `{"email":"not-an-email"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{
					Base:  models.Base{ID: id},
					Email: "me@example.com",
					Roles: []models.Role{{Name: models.RoleClient}},
				}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		user := result["user"].(map[string]interface{})
		if user["id"] != testActorID {
			t.Errorf("expected user %s, got %v", testActorID, user["id"])
		}
	})

	t.Run("returns 401 without user in context", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := gin.New()
		r.GET("/profile", handler.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
