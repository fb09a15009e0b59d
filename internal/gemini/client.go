// Package gemini is a minimal client for the Gemini generateContent REST API.
//
// TWO AUTHENTICATION MODES:
//
//	API key    POST {base}/models/{model}:generateContent
//	           header x-goog-api-key: <key>
//	           base defaults to https://generativelanguage.googleapis.com/v1beta
//
//	Vertex AI  POST {base}/projects/{p}/locations/{l}/publishers/google/models/{model}:generateContent
//	           Authorization: Bearer <token from Application Default Credentials>
//	           base defaults to https://{l}-aiplatform.googleapis.com/v1
//
// In Vertex mode the bearer token comes from golang.org/x/oauth2/google, and
// oauth2.NewClient refreshes it transparently.
//
// The client sends one prompt and returns one completion. It does not retry,
// stream or batch; callers decide what a failure means for them.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultAPIBase  = "https://generativelanguage.googleapis.com/v1beta"
	cloudPlatform   = "https://www.googleapis.com/auth/cloud-platform"
	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 4 << 10
)

// ErrEmptyResponse is returned when the API answers 200 without any text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Config is passed by value into New; nothing is read from the environment here.
type Config struct {
	APIKey          string
	Project         string
	Location        string
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration

	// TokenSource overrides Application Default Credentials in Vertex mode.
	TokenSource oauth2.TokenSource
}

// Client calls generateContent for a single model.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	genCfg   generationConfig
}

// New builds a Client. It fails when neither an API key nor a project is set,
// or when Vertex mode can't find default credentials. ctx only bounds
// construction: its values are kept for token refreshes, its deadline is not.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		genCfg: generationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}

	switch {
	case cfg.APIKey != "":
		base := strings.TrimRight(cfg.BaseURL, "/")
		if base == "" {
			base = defaultAPIBase
		}
		c.apiKey = cfg.APIKey
		c.endpoint = fmt.Sprintf("%s/models/%s:generateContent", base, cfg.Model)
		c.http = &http.Client{Timeout: timeout}

	case cfg.Project != "":
		location := cfg.Location
		if location == "" {
			location = "us-central1"
		}
		base := strings.TrimRight(cfg.BaseURL, "/")
		if base == "" {
			base = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location)
		}
		// The token source and the oauth2 client keep their context for every
		// later refresh, so it must outlive ctx's deadline.
		longLived := context.WithoutCancel(ctx)
		ts := cfg.TokenSource
		if ts == nil {
			var err error
			ts, err = google.DefaultTokenSource(longLived, cloudPlatform)
			if err != nil {
				return nil, fmt.Errorf("gemini: finding default credentials: %w", err)
			}
		}
		c.endpoint = fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			base, cfg.Project, location, cfg.Model)
		c.http = oauth2.NewClient(longLived, ts)
		c.http.Timeout = timeout

	default:
		return nil, errors.New("gemini: either an API key or a project is required")
	}

	return c, nil
}

// Generate sends prompt as a single user turn and returns the concatenated
// text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.genCfg,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}
	return out.text()
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (r generateResponse) text() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// decodeAPIError turns a non-200 answer into an error, preferring the API's
// own {"error":{"message":...}} body.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini: status %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}
	return fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
