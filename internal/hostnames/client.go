package hostnames

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Status values reported for a custom hostname.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// SSL describes certificate state for a custom hostname.
type SSL struct {
	Status           string `json:"status"`
	ValidationMethod string `json:"validation_method,omitempty"`
}

// Status is the oracle's answer for one hostname.
type Status struct {
	Status             string   `json:"status"`
	SSL                *SSL     `json:"ssl,omitempty"`
	VerificationErrors []string `json:"verification_errors"`
}

// Client talks to the custom-hostname/SSL API for vanity domains. Every
// failure here degrades to a warning: projects stay reachable by subdomain
// even when their vanity hostname is broken or the API is unconfigured.
type Client struct {
	apiURL     string
	zoneID     string
	token      string
	httpClient *http.Client
}

func NewClient(apiURL, zoneID, token string) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		zoneID: zoneID,
		token:  token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) configured() bool {
	return c.apiURL != "" && c.zoneID != "" && c.token != ""
}

func (c *Client) hostnamesURL() string {
	return fmt.Sprintf("%s/zones/%s/custom_hostnames", c.apiURL, url.PathEscape(c.zoneID))
}

// Register asks the oracle to start serving hostname with a DV certificate.
// Returns false (never an error) when the call cannot be made or fails.
func (c *Client) Register(ctx context.Context, hostname string) bool {
	if !c.configured() {
		log.Println("[hostnames] custom hostname API not configured")
		return false
	}

	payload := map[string]any{
		"hostname": hostname,
		"ssl": map[string]any{
			"method": "http",
			"type":   "dv",
			"settings": map[string]any{
				"http2":           "on",
				"min_tls_version": "1.2",
				"tls_1_3":         "on",
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[hostnames] marshal register payload: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hostnamesURL(), bytes.NewReader(body))
	if err != nil {
		log.Printf("[hostnames] create register request: %v", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[hostnames] register %s: %v", hostname, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[hostnames] register %s failed, status %d: %s", hostname, resp.StatusCode, string(detail))
		return false
	}

	log.Printf("[hostnames] custom hostname created: %s", hostname)
	return true
}

type listResponse struct {
	Result []struct {
		ID                 string   `json:"id"`
		Status             string   `json:"status"`
		SSL                *SSL     `json:"ssl"`
		VerificationErrors []string `json:"verification_errors"`
	} `json:"result"`
}

// GetStatus reports provisioning state for hostname. Never returns an error:
// unreachable or unconfigured APIs show up as an "error" status with a
// reason in VerificationErrors.
func (c *Client) GetStatus(ctx context.Context, hostname string) Status {
	if !c.configured() {
		return Status{Status: StatusError, VerificationErrors: []string{"API not configured"}}
	}

	list, err := c.list(ctx, hostname)
	if err != nil {
		log.Printf("[hostnames] status %s: %v", hostname, err)
		return Status{Status: StatusError, VerificationErrors: []string{"API request failed"}}
	}
	if len(list.Result) == 0 {
		return Status{Status: StatusNotFound}
	}

	entry := list.Result[0]
	verification := entry.VerificationErrors
	if verification == nil {
		verification = []string{}
	}
	return Status{
		Status:             entry.Status,
		SSL:                entry.SSL,
		VerificationErrors: verification,
	}
}

// Deregister removes a hostname from the oracle. Best-effort like the rest.
func (c *Client) Deregister(ctx context.Context, hostname string) bool {
	if !c.configured() {
		return false
	}

	list, err := c.list(ctx, hostname)
	if err != nil || len(list.Result) == 0 {
		log.Printf("[hostnames] custom hostname not found: %s", hostname)
		return false
	}

	u := c.hostnamesURL() + "/" + url.PathEscape(list.Result[0].ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[hostnames] deregister %s: %v", hostname, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[hostnames] deregister %s failed, status %d", hostname, resp.StatusCode)
		return false
	}

	log.Printf("[hostnames] custom hostname deleted: %s", hostname)
	return true
}

func (c *Client) list(ctx context.Context, hostname string) (*listResponse, error) {
	u := c.hostnamesURL() + "?hostname=" + url.QueryEscape(hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call hostname API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hostname API returned status %d: %s", resp.StatusCode, string(body))
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &list, nil
}
