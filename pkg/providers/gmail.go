package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/loopmsg/wabridge/pkg/types"
)

const gmailAPIBase = "https://gmail.googleapis.com/gmail/v1"

const (
	defaultGmailMaxResults  = 5
	defaultGmailConcurrency = 5
)

// GmailClient issues authenticated calls to the Gmail REST API and
// normalizes the responses
type GmailClient struct {
	apiBase     string
	maxResults  int
	concurrency int
	httpClient  *http.Client
}

// NewGmailClient creates a Gmail client from config
func NewGmailClient(cfg types.GmailConfig) *GmailClient {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultGmailMaxResults
	}
	concurrency := cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = defaultGmailConcurrency
	}

	return &GmailClient{
		apiBase:     gmailAPIBase,
		maxResults:  maxResults,
		concurrency: concurrency,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// request makes a GET request to the Gmail API. A 401 means the token the
// resolver just produced is stale or revoked, so it surfaces as
// ErrAuthExpired; other non-2xx responses surface as ErrUpstream with the
// provider body logged server-side only.
func (c *GmailClient) request(ctx context.Context, token, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gmail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return types.ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Str("path", path).Bytes("body", body).Msg("gmail API error")
		return fmt.Errorf("gmail API status %d: %w", resp.StatusCode, types.ErrUpstream)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// MessageRef is a message stub from the list endpoint
type MessageRef struct {
	Id       string `json:"id"`
	ThreadId string `json:"threadId"`
}

// ListMessages lists inbox message stubs; bodies are not included
func (c *GmailClient) ListMessages(ctx context.Context, token string) ([]MessageRef, error) {
	path := fmt.Sprintf("/users/me/messages?maxResults=%d&labelIds=INBOX", c.maxResults)

	var result struct {
		Messages []MessageRef `json:"messages"`
	}
	if err := c.request(ctx, token, path, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// GetMessage fetches one full message
func (c *GmailClient) GetMessage(ctx context.Context, token, msgId string) (map[string]any, error) {
	path := fmt.Sprintf("/users/me/messages/%s?format=full", url.PathEscape(msgId))

	var result map[string]any
	if err := c.request(ctx, token, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchInbox lists the most recent inbox messages and fetches their details
// concurrently, bounded by the configured concurrency. A failing detail
// fetch drops that message only; the rest of the batch proceeds. List order
// is preserved. A 401 on any call aborts with ErrAuthExpired since the
// token was resolved immediately before.
func (c *GmailClient) FetchInbox(ctx context.Context, token string) ([]types.EmailMessage, error) {
	refs, err := c.ListMessages(ctx, token)
	if err != nil {
		return nil, err
	}

	results := make([]*types.EmailMessage, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			raw, err := c.GetMessage(ctx, token, ref.Id)
			if err != nil {
				if err == types.ErrAuthExpired {
					return err
				}
				log.Warn().Err(err).Str("message_id", ref.Id).Msg("dropping message from batch")
				return nil
			}
			msg := NormalizeEmailMessage(raw)
			results[i] = &msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	messages := make([]types.EmailMessage, 0, len(results))
	for _, msg := range results {
		if msg != nil {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}
