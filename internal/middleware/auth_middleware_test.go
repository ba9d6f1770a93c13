package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/jwt"
)

func setupTestJWTService() *jwt.Service {
	return jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	userID := uuid.New()
	email := "wanjiku@example.com"

	token, err := jwtService.GenerateAccessToken(userID, email, []string{"passenger"})
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"user_id": userCtx.UserID,
			"email":   userCtx.Email,
		})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), email)
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{"Missing Bearer", "some-token"},
		{"Wrong prefix", "Basic some-token"},
		{"Empty Bearer", "Bearer "},
		{"No token", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	for _, token := range []string{"invalid.token.here", "randomstringnotavalidtoken"} {
		t.Run(token, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	// tokens are born expired
	jwtService := jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		-time.Minute,
		24*time.Hour,
	)
	router := setupTestRouter()

	token, err := jwtService.GenerateAccessToken(uuid.New(), "wanjiku@example.com", []string{"passenger"})
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	jwtService := setupTestJWTService()

	wrongService := jwt.NewService(
		"wrong-secret-key",
		"wrong-refresh-secret",
		time.Hour,
		24*time.Hour,
	)

	token, err := wrongService.GenerateAccessToken(uuid.New(), "wanjiku@example.com", []string{"passenger"})
	require.NoError(t, err)

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	jwtService := setupTestJWTService()
	refresh, err := jwtService.GenerateRefreshToken(uuid.New(), "wanjiku@example.com")
	require.NoError(t, err)

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()
	router.GET("/book", OptionalAuth(jwtService), func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", UserID(c))
	})

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "wanjiku@example.com", []string{"passenger"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"Guest", "", "user="},
		{"Signed in", "Bearer " + token, "user=" + userID.String()},
		{"Bad token is treated as guest", "Bearer nope", "user="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/book", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Context exists", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		expectedCtx := UserContext{
			UserID: uuid.New(),
			Email:  "wanjiku@example.com",
			Roles:  []string{"passenger"},
		}
		c.Set(UserContextKey, expectedCtx)

		userCtx, exists := GetUserContext(c)
		assert.True(t, exists)
		assert.Equal(t, expectedCtx, userCtx)
	})

	t.Run("Context not found", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		userCtx, exists := GetUserContext(c)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})

	t.Run("Context wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(UserContextKey, "wrong type")
		userCtx, exists := GetUserContext(c)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})
}

func TestMustGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Context exists - no panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		expectedCtx := UserContext{UserID: uuid.New()}
		c.Set(UserContextKey, expectedCtx)

		assert.NotPanics(t, func() {
			userCtx := MustGetUserContext(c)
			assert.Equal(t, expectedCtx.UserID, userCtx.UserID)
		})
	})

	t.Run("Context not found - panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Panics(t, func() {
			MustGetUserContext(c)
		})
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := setupTestJWTService()
	userID := uuid.New()

	tests := []struct {
		name       string
		roles      []string
		required   []string
		wantStatus int
		wantBody   string
	}{
		{"User has required role", []string{"admin", "superadmin"}, []string{"superadmin"}, http.StatusOK, "success"},
		{"User doesn't have required role", []string{"passenger"}, []string{"admin"}, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"Multiple roles allowed", []string{"admin", "branch_admin"}, []string{"superadmin", "branch_admin"}, http.StatusOK, "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.GenerateAccessToken(userID, "ops@tourkenya.co.ke", tt.roles)
			require.NoError(t, err)

			router := setupTestRouter()
			router.GET("/admin", AuthMiddleware(jwtService), RequireRole(tt.required...), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest("GET", "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}

	t.Run("No user context", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/no-auth", RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

		req := httptest.NewRequest("GET", "/no-auth", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
	})
}

func TestBookingSession(t *testing.T) {
	router := setupTestRouter()
	router.GET("/book", BookingSession(false), func(c *gin.Context) {
		c.String(http.StatusOK, SessionKey(c))
	})

	t.Run("Issues a key", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/book", nil))

		key := w.Body.String()
		_, err := uuid.Parse(key)
		require.NoError(t, err)
		assert.Equal(t, key, w.Header().Get(BookingSessionHeader))
		assert.True(t, strings.Contains(w.Header().Get("Set-Cookie"), BookingSessionCookie+"="+key))
	})

	t.Run("Header wins over cookie", func(t *testing.T) {
		fromHeader, fromCookie := uuid.NewString(), uuid.NewString()
		req := httptest.NewRequest("GET", "/book", nil)
		req.Header.Set(BookingSessionHeader, fromHeader)
		req.AddCookie(&http.Cookie{Name: BookingSessionCookie, Value: fromCookie})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, fromHeader, w.Body.String())
	})

	t.Run("Cookie is reused", func(t *testing.T) {
		key := uuid.NewString()
		req := httptest.NewRequest("GET", "/book", nil)
		req.AddCookie(&http.Cookie{Name: BookingSessionCookie, Value: key})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, key, w.Body.String())
	})

	t.Run("Garbage is replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/book", nil)
		req.Header.Set(BookingSessionHeader, "../../etc/passwd")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "../../etc/passwd", w.Body.String())
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}
