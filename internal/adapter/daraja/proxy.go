package daraja

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds the Daraja credentials the proxy signs requests with.
type Config struct {
	Env            string // sandbox | production
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
}

func (c Config) baseURL() string {
	if strings.EqualFold(c.Env, "production") {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}

func (c Config) complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.Shortcode != "" && c.Passkey != "" && c.CallbackURL != ""
}

// Proxy is the gateway side of the STK-push contract: it signs and forwards
// push requests to Daraja and receives the payment callback.
type Proxy struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger

	mu           sync.Mutex
	lastCallback json.RawMessage
}

func NewProxy(cfg Config, log *slog.Logger) *Proxy {
	return &Proxy{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
		log:  log,
	}
}

// Register mounts the proxy routes on the given group.
func (p *Proxy) Register(r gin.IRouter) {
	r.GET("/api/health", p.health)
	r.POST("/api/mpesa/stk-push", p.stkPush)
	r.POST("/api/mpesa/callback", p.callback)
	r.GET("/api/mpesa/last-callback", p.lastCallbackView)
}

func (p *Proxy) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "env": strings.ToLower(p.cfg.Env)})
}

type stkPushReq struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
}

func (p *Proxy) stkPush(c *gin.Context) {
	var req stkPushReq
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" || req.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phoneNumber and amount are required"})
		return
	}
	if !p.cfg.complete() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "M-Pesa credentials not configured on server"})
		return
	}

	token, err := p.accessToken(c.Request.Context())
	if err != nil {
		p.log.Error("daraja token fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate STK push", "details": err.Error()})
		return
	}

	ts := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(p.cfg.Shortcode + p.cfg.Passkey + ts))
	msisdn := NormalizeMSISDN(req.PhoneNumber)

	payload := map[string]any{
		"BusinessShortCode": p.cfg.Shortcode,
		"Password":          password,
		"Timestamp":         ts,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            req.Amount,
		"PartyA":            msisdn,
		"PartyB":            p.cfg.Shortcode,
		"PhoneNumber":       msisdn,
		"CallBackURL":       p.cfg.CallbackURL,
		"AccountReference":  "SahasExpress",
		"TransactionDesc":   "Order payment",
	}

	status, body, err := p.post(c.Request.Context(), "/mpesa/stkpush/v1/processrequest", token, payload)
	if err != nil {
		p.log.Error("daraja stk push failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate STK push", "details": err.Error()})
		return
	}
	if status < 200 || status > 299 {
		c.JSON(status, gin.H{"error": "Failed to initiate STK push", "details": json.RawMessage(body)})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (p *Proxy) callback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil && len(body) > 0 {
		p.mu.Lock()
		p.lastCallback = json.RawMessage(body)
		p.mu.Unlock()
		p.log.Info("mpesa callback received", "body", string(body))
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

func (p *Proxy) lastCallbackView(c *gin.Context) {
	p.mu.Lock()
	last := p.lastCallback
	p.mu.Unlock()
	if last == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No callbacks received yet"})
		return
	}
	c.Data(http.StatusOK, "application/json", last)
}

func (p *Proxy) accessToken(ctx context.Context) (string, error) {
	url := p.cfg.baseURL() + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.cfg.ConsumerKey + ":" + p.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (p *Proxy) post(ctx context.Context, path, token string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.baseURL()+path, strings.NewReader(string(body)))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, out, nil
}

// NormalizeMSISDN converts 07XXXXXXXX or 7XXXXXXXX to 2547XXXXXXXX. Numbers
// already in international form pass through.
func NormalizeMSISDN(msisdn string) string {
	p := strings.NewReplacer(" ", "", "+", "").Replace(msisdn)
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	if strings.HasPrefix(p, "7") {
		p = "254" + p
	}
	return p
}
