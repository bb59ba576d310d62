// internal/printer/proxy_handler.go
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"printer-server/internal/model"
)

const defaultProxyTimeout = 30000 // ms

type proxySettings struct {
	TargetURL string  `mapstructure:"target_url"`
	Timeout   int     `mapstructure:"timeout"` // milliseconds
	AuthToken string  `mapstructure:"auth_token"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// ProxyHandler forwards every operation to a remote print server
type ProxyHandler struct {
	baseHandler
	target  string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewProxyHandler(logger *zap.Logger) *ProxyHandler {
	h := &ProxyHandler{}
	h.bind(h, model.HandlerProxy, logger)
	return h
}

func (h *ProxyHandler) Initialize(ctx context.Context, settings Settings) bool {
	if h.initialized() {
		return true
	}

	var s proxySettings
	if err := settings.decode(&s); err != nil {
		h.logger.Error("Failed to read proxy settings", zap.Error(err))
		return false
	}
	if s.TargetURL == "" {
		h.logger.Error("target_url is not configured")
		return false
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultProxyTimeout
	}

	h.target = strings.TrimRight(s.TargetURL, "/")
	h.token = s.AuthToken
	h.client = &http.Client{Timeout: time.Duration(s.Timeout) * time.Millisecond}
	if s.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(s.RateLimit), 1)
	}

	if err := h.ping(ctx); err != nil {
		h.logger.Error("Remote print server is not reachable",
			zap.String("target_url", h.target),
			zap.Error(err),
		)
		return false
	}

	h.ready.Store(true)
	h.logger.Info("Proxy handler initialized", zap.String("target_url", h.target))
	return true
}

func (h *ProxyHandler) ProcessDocument(ctx context.Context, doc *model.Document) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	if doc == nil {
		return model.Failure(msgMissingDocument)
	}
	if err := doc.Validate(); err != nil {
		return invalidDocument(err)
	}

	body := doc.Raw()
	if body == nil {
		var err error
		if body, err = json.Marshal(doc); err != nil {
			return model.Failure(fmt.Sprintf("Failed to encode document: %v", err))
		}
	}
	return h.forward(ctx, http.MethodPost, "/printer/invoice", body)
}

func (h *ProxyHandler) PrintReportX(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	return h.forward(ctx, http.MethodPost, "/printer/report/x", nil)
}

func (h *ProxyHandler) PrintReportZ(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	return h.forward(ctx, http.MethodPost, "/printer/report/z", nil)
}

func (h *ProxyHandler) CheckStatus(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	data := map[string]interface{}{"target_url": h.target}
	if err := h.ping(ctx); err != nil {
		data["error"] = err.Error()
		return model.NewResponse(false, "Remote print server is not reachable", data)
	}
	return model.Success("Remote print server is online", data)
}

func (h *ProxyHandler) Shutdown() error {
	if h.ready.CompareAndSwap(true, false) && h.client != nil {
		h.client.CloseIdleConnections()
	}
	return nil
}

func (h *ProxyHandler) ping(ctx context.Context) error {
	status, _, err := h.do(ctx, http.MethodGet, "/api/ping", nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("ping returned status %d", status)
	}
	return nil
}

// forward sends one request and maps the reply onto an envelope
func (h *ProxyHandler) forward(ctx context.Context, method, path string, body []byte) model.Response {
	start := time.Now()
	status, reply, err := h.do(ctx, method, path, body)
	if err != nil {
		h.logger.Warn("Proxy request error", zap.String("path", path), zap.Error(err))
		return model.Failure(fmt.Sprintf("Proxy request failed: %v", err))
	}

	h.logger.Debug("Proxy request completed",
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if status < 200 || status >= 300 {
		return model.Failure(fmt.Sprintf("Proxy request failed: %d", status))
	}

	if envelope, ok := remoteEnvelope(reply); ok {
		return envelope
	}
	return model.Success(strings.TrimSpace(string(reply)), nil)
}

// remoteEnvelope maps any JSON object reply onto an envelope. success is
// taken as sent, so a reply without it counts as a failure.
func remoteEnvelope(body []byte) (model.Response, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return model.Response{}, false
	}

	success, _ := fields["success"].(bool)
	message, _ := fields["message"].(string)
	if message == "" {
		message, _ = fields["error"].(string)
	}
	resp := model.NewResponse(success, message, nil)
	if ts, ok := fields["timestamp"].(string); ok && ts != "" {
		resp.Timestamp = ts
	}

	if data, ok := fields["data"].(map[string]interface{}); ok {
		resp.Data = data
		return resp, true
	}
	for key, value := range fields {
		switch key {
		case "success", "message", "timestamp", "data":
			continue
		}
		if resp.Data == nil {
			resp.Data = make(map[string]interface{})
		}
		resp.Data[key] = value
	}
	return resp, true
}

func (h *ProxyHandler) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.target+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return resp.StatusCode, reply, nil
}
