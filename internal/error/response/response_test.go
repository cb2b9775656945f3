package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/domain/services/reporting"
	"community-console-service/internal/error/code"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func record(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn(c)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func hintOf(t *testing.T, body envelope) Hint {
	t.Helper()
	var h Hint
	require.NoError(t, json.Unmarshal(body.Data, &h))
	return h
}

func TestUpstreamError_Taxonomy(t *testing.T) {
	payload := map[string]interface{}{"hoTen": "Tran Thi B"}

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
		check      func(t *testing.T, h Hint)
	}{
		{
			name:       "transport",
			err:        &gateway.APIError{Message: "Network Error", Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   code.ErrUpstreamUnavailable,
			wantMsg:    "Network Error",
			check:      func(t *testing.T, h Hint) { assert.True(t, h.Retry) },
		},
		{
			name:       "unauthorized",
			err:        &gateway.APIError{StatusCode: 401, Message: "jwt expired"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   code.ErrSessionExpired,
			check:      func(t *testing.T, h Hint) { assert.Equal(t, gate.SignInPath, h.Redirect) },
		},
		{
			name:       "forbidden",
			err:        &gateway.APIError{StatusCode: 403, Message: "Only admin"},
			wantStatus: http.StatusForbidden,
			wantCode:   code.ErrForbidden,
			check: func(t *testing.T, h Hint) {
				assert.Equal(t, gate.DashboardPath, h.Redirect)
				assert.Equal(t, "Only admin", h.Notice)
			},
		},
		{
			name:       "not found",
			err:        fmt.Errorf("get resident: %w", &gateway.APIError{StatusCode: 404, Message: "Khong tim thay"}),
			wantStatus: http.StatusNotFound,
			wantCode:   code.ErrUpstreamNotFound,
			wantMsg:    "Khong tim thay",
			check:      func(t *testing.T, h Hint) { assert.True(t, h.Retry) },
		},
		{
			name:       "validation keeps message and payload",
			err:        &gateway.APIError{StatusCode: 422, Message: "CCCD da ton tai"},
			wantStatus: http.StatusBadRequest,
			wantCode:   code.ErrUpstreamValidation,
			wantMsg:    "CCCD da ton tai",
			check: func(t *testing.T, h Hint) {
				assert.Equal(t, payload, h.Payload)
			},
		},
		{
			name:       "aggregation",
			err:        fmt.Errorf("%w: boom", reporting.ErrAggregationFailed),
			wantStatus: http.StatusBadGateway,
			wantCode:   code.ErrAggregationFailed,
			check:      func(t *testing.T, h Hint) { assert.True(t, h.Retry) },
		},
		{
			name:       "aggregation over upstream 5xx",
			err:        fmt.Errorf("%w: %w", reporting.ErrAggregationFailed, &gateway.APIError{StatusCode: 500, Message: "down"}),
			wantStatus: http.StatusBadGateway,
			wantCode:   code.ErrAggregationFailed,
			check:      func(t *testing.T, h Hint) { assert.True(t, h.Retry) },
		},
		{
			name:       "aggregation over expired session",
			err:        fmt.Errorf("%w: %w", reporting.ErrAggregationFailed, &gateway.APIError{StatusCode: 401, Message: "jwt expired"}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   code.ErrSessionExpired,
			check:      func(t *testing.T, h Hint) { assert.Equal(t, "/signin", h.Redirect) },
		},
		{
			name:       "aggregation over forbidden",
			err:        fmt.Errorf("%w: %w", reporting.ErrAggregationFailed, &gateway.APIError{StatusCode: 403, Message: "Only admin"}),
			wantStatus: http.StatusForbidden,
			wantCode:   code.ErrForbidden,
			check: func(t *testing.T, h Hint) {
				assert.Equal(t, gate.DashboardPath, h.Redirect)
				assert.Equal(t, "Only admin", h.Notice)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := record(t, func(c *gin.Context) { UpstreamError(c, tc.err, payload) })

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, body.Code)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, body.Message)
			}
			tc.check(t, hintOf(t, body))
		})
	}
}

func TestUpstreamError_UnknownError(t *testing.T) {
	w, body := record(t, func(c *gin.Context) { UpstreamError(c, errors.New("boom"), nil) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, code.ErrUnknown, body.Code)
}

func TestGateDecision_StatusCodes(t *testing.T) {
	cases := []struct {
		decision   gate.Decision
		wantStatus int
		wantCode   int
	}{
		{gate.Decision{Route: "/dashboard", State: gate.StateAllowed}, http.StatusOK, code.ErrSuccess},
		{gate.Decision{Route: "/dashboard", State: gate.StateRedirect, Target: gate.SignInPath}, http.StatusUnauthorized, code.ErrSignInRequired},
		{gate.Decision{Route: "/admin/report", State: gate.StateRedirect, Target: gate.DashboardPath}, http.StatusForbidden, code.ErrForbidden},
		{gate.Decision{Route: "/home", State: gate.StateBlockedPrompt}, 428, code.ErrProfileRequired},
	}
	for _, tc := range cases {
		t.Run(string(tc.decision.State)+tc.decision.Target, func(t *testing.T) {
			w, body := record(t, func(c *gin.Context) { GateDecision(c, tc.decision) })

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, body.Code)

			var d gate.Decision
			require.NoError(t, json.Unmarshal(body.Data, &d))
			assert.Equal(t, tc.decision.State, d.State)
		})
	}
}

func TestNotFound_DefaultMessage(t *testing.T) {
	w, body := record(t, func(c *gin.Context) { NotFound(c, "") })

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "资源不存在", body.Message)
}
