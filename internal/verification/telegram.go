package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultGatewayURL = "https://gatewayapi.telegram.org"

// TelegramSender delivers verification codes through the Telegram Gateway
// API (sendVerificationMessage).
type TelegramSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTelegramSender builds a sender authenticated with the given API key.
func NewTelegramSender(apiKey string) *TelegramSender {
	return &TelegramSender{
		apiKey:  apiKey,
		baseURL: defaultGatewayURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type gatewayResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SendVerification posts the code to the gateway and fails unless the
// gateway confirms the send.
func (s *TelegramSender) SendVerification(ctx context.Context, phone, code string) error {
	payload, err := json.Marshal(gatewayRequest{PhoneNumber: phone, Code: code})
	if err != nil {
		return fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sendVerificationMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call telegram gateway: %w", err)
	}
	defer resp.Body.Close()

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("telegram gateway error: %s", body.Error)
	}
	return nil
}
