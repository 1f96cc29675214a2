package daraja

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMSISDN(t *testing.T) {
	cases := map[string]string{
		"0712345678":     "254712345678",
		"712345678":      "254712345678",
		"254712345678":   "254712345678",
		"+254712345678":  "254712345678",
		"0712 345 678":   "254712345678",
		"+254 712345678": "254712345678",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeMSISDN(in), "input %q", in)
	}
}

func newTestRouter(cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewProxy(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestStkPushRejectsIncompleteRequests(t *testing.T) {
	r := newTestRouter(Config{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/mpesa/stk-push", strings.NewReader(`{"phoneNumber":"0712345678"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "phoneNumber and amount are required")
}

func TestStkPushRequiresCredentials(t *testing.T) {
	r := newTestRouter(Config{Env: "sandbox"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/mpesa/stk-push", strings.NewReader(`{"phoneNumber":"0712345678","amount":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestCallbackStoredAndAcknowledged(t *testing.T) {
	r := newTestRouter(Config{})

	w := httptest.NewRecorder()
	body := `{"Body":{"stkCallback":{"ResultCode":0,"CheckoutRequestID":"ws_CO_1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/mpesa/callback", strings.NewReader(body))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ResultDesc":"Accepted"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mpesa/last-callback", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, body, w.Body.String())
}

func TestLastCallbackEmpty(t *testing.T) {
	r := newTestRouter(Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mpesa/last-callback", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No callbacks received yet")
}

func TestBaseURLPerEnv(t *testing.T) {
	assert.Equal(t, "https://sandbox.safaricom.co.ke", Config{Env: "sandbox"}.baseURL())
	assert.Equal(t, "https://sandbox.safaricom.co.ke", Config{}.baseURL())
	assert.Equal(t, "https://api.safaricom.co.ke", Config{Env: "production"}.baseURL())
}
