package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		UserID: "u-1",
		Role:   domain.RolePhysiologist,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthMiddleware("k"), func(c *gin.Context) {
		id, _ := getUserIDFromContext(c)
		c.String(http.StatusOK, id)
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "other", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "k", time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, "k", time.Now().Add(time.Hour)), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "u-1", w.Body.String())
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		&program.ValidationError{Field: "title", Reason: "empty"}: http.StatusBadRequest,
		service.ErrProgramNotFound:                                http.StatusNotFound,
		repository.ErrVersionConflict:                             http.StatusConflict,
		service.ErrNotReadyToAssign:                               http.StatusConflict,
		service.ErrExportUnavailable:                              http.StatusServiceUnavailable,
		repository.Persist("save", assert.AnError):                http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
