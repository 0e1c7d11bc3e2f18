// Package sms dispatches text messages through the Twilio REST API.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when Twilio credentials are absent.
var ErrNotConfigured = errors.New("sms dispatch is not configured")

// Sender dispatches a message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioSender implements Sender against the Twilio Messages API.
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	client     *http.Client
}

const defaultTwilioBaseURL = "https://api.twilio.com"

// NewTwilioSender creates a Twilio-backed sender. Calls fail with
// ErrNotConfigured when any credential is empty.
func NewTwilioSender(accountSID, authToken, fromNumber string, timeout time.Duration) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultTwilioBaseURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type twilioResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    any    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Send posts a message to the Twilio API.
func (t *TwilioSender) Send(ctx context.Context, to, body string) error {
	if t.accountSID == "" || t.authToken == "" || t.fromNumber == "" {
		return ErrNotConfigured
	}

	apiURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr twilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("failed to decode twilio response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		if tr.ErrorMessage != "" {
			return fmt.Errorf("twilio api error (status %d): %s", resp.StatusCode, tr.ErrorMessage)
		}
		return fmt.Errorf("twilio api error (status %d)", resp.StatusCode)
	}

	return nil
}
