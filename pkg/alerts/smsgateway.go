package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSGatewayNotifier delivers messages through an HTTP SMS gateway.
type SMSGatewayNotifier struct {
	url    string
	apiKey string
	secret string
	client *http.Client
}

// NewSMSGatewayNotifier creates a notifier posting to the gateway at
// url. If secret is non-empty, requests are signed with HMAC-SHA256.
func NewSMSGatewayNotifier(url, apiKey, secret string) *SMSGatewayNotifier {
	return &SMSGatewayNotifier{
		url:    url,
		apiKey: apiKey,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *SMSGatewayNotifier) Name() string { return "smsgateway" }

func (g *SMSGatewayNotifier) Send(ctx context.Context, number, message string) error {
	payload := smsPayload{
		To:        number,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "fritzwatch/1.0")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	if g.secret != "" {
		sig := computeHMAC(body, []byte(g.secret))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

type smsPayload struct {
	To        string `json:"to"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
