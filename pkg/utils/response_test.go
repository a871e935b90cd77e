package utils

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/team-rf/roster/internal/rbac"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	return ctx, w
}

func TestInternalErrorJSON_LogsCauseButHidesItFromClient(t *testing.T) {
	var logged bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&logged)
	defer log.SetOutput(prev)

	ctx, w := testContext(t)
	InternalErrorJSON(ctx, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused", "cause must stay server-side")
	assert.Contains(t, logged.String(), "connection refused")
	assert.Contains(t, logged.String(), "GET /api/events")
}

func TestGuardErrorJSON_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{rbac.ErrUnauthorized, http.StatusUnauthorized},
		{rbac.ErrForbidden, http.StatusForbidden},
		{rbac.ErrLockedEvent, http.StatusBadRequest},
		{rbac.ErrLockedEventDelete, http.StatusBadRequest},
		{rbac.ErrForbiddenTransition, http.StatusBadRequest},
		{rbac.ErrRelationshipViolation, http.StatusBadRequest},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctx, w := testContext(t)
		GuardErrorJSON(ctx, tc.err)
		assert.Equal(t, tc.want, w.Code, "error %v", tc.err)
	}
}
