// internal/services/mailbox_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/izzatfirdaus/motac-rms/internal/config"
)

// MailboxClient is the external mailbox-creation API the provisioning flow
// calls after final approval of an email application.
type MailboxClient interface {
	CreateAccount(ctx context.Context, req *MailboxAccountRequest) (*MailboxAccountResult, error)
}

type MailboxAccountRequest struct {
	Email        string             `json:"email"`
	TempPassword string             `json:"temp_password"`
	Profile      MailboxUserProfile `json:"profile"`
}

type MailboxUserProfile struct {
	FullName      string `json:"full_name"`
	PersonalEmail string `json:"personal_email"`
	Department    string `json:"department"`
	GradeLevel    int    `json:"grade_level"`
}

type MailboxAccountResult struct {
	Success       bool   `json:"success"`
	AssignedEmail string `json:"assigned_email,omitempty"`
	ExternalID    string `json:"external_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// HTTPMailboxClient talks to the directory service over HTTPS with a bounded
// timeout. Timeouts surface as errors; the caller records them as failures.
type HTTPMailboxClient struct {
	endpointURL string
	apiKey      string
	httpClient  *http.Client
}

func NewHTTPMailboxClient(cfg config.ProvisioningConfig) *HTTPMailboxClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPMailboxClient{
		endpointURL: cfg.EndpointURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPMailboxClient) CreateAccount(ctx context.Context, req *MailboxAccountRequest) (*MailboxAccountResult, error) {
	if c.endpointURL == "" {
		return nil, fmt.Errorf("provisioning endpoint is not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provisioning request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL+"/accounts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build provisioning request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provisioning request failed: %w", err)
	}
	defer resp.Body.Close()

	var result MailboxAccountResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode provisioning response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 && result.ErrorMessage == "" {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("provisioning API returned status %d", resp.StatusCode)
	}

	return &result, nil
}
