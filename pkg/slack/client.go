// Package slack provides the small slice of the Slack Web API the service
// uses: posting messages, adding reactions, and opening direct messages.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://slack.com/api"

// Client performs calls against the Slack Web API.
type Client interface {
	PostMessage(ctx context.Context, channel, text string) error
	PostThreadReply(ctx context.Context, channel, threadTS, text string) error
	AddReaction(ctx context.Context, channel, timestamp, name string) error
	OpenDM(ctx context.Context, userID string) (string, error)
}

// apiResponse is the envelope every Slack Web API method returns.
type apiResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Slack Web API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PostMessage posts text into a channel or DM conversation.
func (c *httpClient) PostMessage(ctx context.Context, channel, text string) error {
	body := map[string]string{"channel": channel, "text": text}
	if _, err := c.call(ctx, "chat.postMessage", body); err != nil {
		return eris.Wrap(err, "slack: post message")
	}
	return nil
}

// PostThreadReply posts text as a threaded reply under the message at
// threadTS.
func (c *httpClient) PostThreadReply(ctx context.Context, channel, threadTS, text string) error {
	body := map[string]string{"channel": channel, "thread_ts": threadTS, "text": text}
	if _, err := c.call(ctx, "chat.postMessage", body); err != nil {
		return eris.Wrap(err, "slack: post thread reply")
	}
	return nil
}

// AddReaction adds an emoji reaction to the message at timestamp.
func (c *httpClient) AddReaction(ctx context.Context, channel, timestamp, name string) error {
	body := map[string]string{"channel": channel, "timestamp": timestamp, "name": name}
	if _, err := c.call(ctx, "reactions.add", body); err != nil {
		return eris.Wrap(err, "slack: add reaction")
	}
	return nil
}

// OpenDM opens (or resumes) a direct-message conversation with a user and
// returns its channel ID.
func (c *httpClient) OpenDM(ctx context.Context, userID string) (string, error) {
	body := map[string]string{"users": userID}
	resp, err := c.call(ctx, "conversations.open", body)
	if err != nil {
		return "", eris.Wrap(err, "slack: open dm")
	}
	return resp.Channel.ID, nil
}

func (c *httpClient) call(ctx context.Context, method string, body any) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, eris.Wrap(err, "unmarshal response")
	}
	if !apiResp.OK {
		return nil, eris.Errorf("api error: %s", apiResp.Error)
	}
	return &apiResp, nil
}
