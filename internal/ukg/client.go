// Package ukg is the UKG Ready workforce-management REST client: OAuth2
// client-credentials token fetch plus personnel/timeentries resources.
package ukg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
)

// Credentials identify one tenant's UKG Ready integration.
type Credentials struct {
	TokenEndpoint string
	BaseURL       string
	ClientID      string
	ClientSecret  string
	CompanyID     string
	Scope         string
}

type cachedToken struct {
	value   string
	expires time.Time
}

// Client posts employee and time-entry records. Loads are batched at a
// fixed size with a fixed inter-batch delay; the far end offers no
// backpressure signal.
type Client struct {
	httpc      *http.Client
	log        *zap.SugaredLogger
	batchSize  int
	batchDelay time.Duration

	mu     sync.Mutex
	tokens map[string]cachedToken
}

func NewClient(batchSize int, batchDelay time.Duration, log *zap.SugaredLogger) *Client {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Client{
		httpc:      &http.Client{Timeout: 15 * time.Second},
		log:        log,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		tokens:     map[string]cachedToken{},
	}
}

func tokenKey(c Credentials) string { return c.TokenEndpoint + "|" + c.ClientID }

// Token returns a cached access token, fetching a fresh one when within a
// minute of expiry.
func (c *Client) Token(ctx context.Context, creds Credentials) (string, error) {
	key := tokenKey(creds)
	c.mu.Lock()
	if t, ok := c.tokens[key]; ok && time.Now().Add(time.Minute).Before(t.expires) {
		c.mu.Unlock()
		return t.value, nil
	}
	c.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	if creds.Scope != "" {
		form.Set("scope", creds.Scope)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token fetch failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("token response decode: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	expires := time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	if body.ExpiresIn == 0 {
		// Some tenants omit expires_in; fall back to the JWT exp claim.
		if jt, perr := jwt.ParseInsecure([]byte(body.AccessToken)); perr == nil && !jt.Expiration().IsZero() {
			expires = jt.Expiration()
		} else {
			expires = time.Now().Add(5 * time.Minute)
		}
	}
	c.mu.Lock()
	c.tokens[key] = cachedToken{value: body.AccessToken, expires: expires}
	c.mu.Unlock()
	return body.AccessToken, nil
}

// Ping verifies the integration by fetching a token only.
func (c *Client) Ping(ctx context.Context, creds Credentials) error {
	_, err := c.Token(ctx, creds)
	return err
}

// BatchResult summarizes one load run.
type BatchResult struct {
	Batches int      `json:"batches"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// UpsertEmployees posts transformed employee records to the personnel
// resource in fixed-size batches. A failed batch is recorded and the run
// continues; there is no retry.
func (c *Client) UpsertEmployees(ctx context.Context, creds Credentials, records []map[string]any) (BatchResult, error) {
	return c.postBatches(ctx, creds, "/personnel/v1/companies/"+url.PathEscape(creds.CompanyID)+"/employees", records)
}

// PostTimeEntries posts time entries in the same batched fashion.
func (c *Client) PostTimeEntries(ctx context.Context, creds Credentials, records []map[string]any) (BatchResult, error) {
	return c.postBatches(ctx, creds, "/timeentries/v1/companies/"+url.PathEscape(creds.CompanyID)+"/entries", records)
}

func (c *Client) postBatches(ctx context.Context, creds Credentials, path string, records []map[string]any) (BatchResult, error) {
	var res BatchResult
	if len(records) == 0 {
		return res, nil
	}
	token, err := c.Token(ctx, creds)
	if err != nil {
		return res, err
	}
	endpoint := strings.TrimRight(creds.BaseURL, "/") + path
	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		res.Batches++
		if err := c.postJSON(ctx, endpoint, token, batch); err != nil {
			res.Failed += len(batch)
			res.Errors = append(res.Errors, fmt.Sprintf("batch %d: %v", res.Batches, err))
			c.log.Warnw("ukg batch failed", "batch", res.Batches, "err", err)
		} else {
			res.Sent += len(batch)
		}
		if end < len(records) && c.batchDelay > 0 {
			select {
			case <-time.After(c.batchDelay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}
	}
	return res, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, token string, body any) error {
	bb, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bb))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
