package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// --- Gemini API Configuration ---
const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel       = "gemini-2.5-flash"
	maxRetries         = 3
	initialBackoff     = 1 * time.Second
	requestTimeout     = 30 * time.Second
	structuredMimeType = "application/json"
)

var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
	ErrEmptyResponse = errors.New("no content found in Gemini response")
)

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *GeminiSchema `json:"response_schema,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint with structured output.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	// backoff is the delay before retry n (0-based). Overridden in tests.
	backoff func(attempt int) time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (a proxy or a test server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff replaces the exponential backoff schedule.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

// NewClient creates a Gemini client. An empty model selects the default one.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultModel
	}

	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		backoff: func(attempt int) time.Duration {
			return initialBackoff * time.Duration(math.Pow(2, float64(attempt)))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Explain asks Gemini why the label applies to the pair and which biomarkers it affects.
// It satisfies classifier.Explainer.
func (c *Client) Explain(ctx context.Context, food, condition, label string) (string, string, error) {
	var out Explanation
	if err := c.generateAndParse(ctx, "Explain", ExplainSystemPrompt, BuildExplainPrompt(food, condition, label), ExplanationSchema, &out); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(out.Explanation), strings.TrimSpace(out.Biomarkers), nil
}

// generateAndParse runs the structured call and unmarshals the JSON text into target.
func (c *Client) generateAndParse(ctx context.Context, name, systemPrompt, userPrompt string, schema *GeminiSchema, target any) error {
	raw, err := c.callStructuredGemini(ctx, systemPrompt, userPrompt, schema)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("%s: failed to parse Gemini JSON: %w", name, err)
	}
	return nil
}

// callStructuredGemini handles the actual HTTP request to the Gemini API
func (c *Client) callStructuredGemini(ctx context.Context, systemPrompt, userPrompt string, schema *GeminiSchema) (string, error) {
	payload := GeminiPayload{
		SystemInstruction: &GeminiContent{
			Parts: []GeminiPart{{Text: systemPrompt}},
		},
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   schema,
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	var lastErr error

	// Exponential backoff retry loop
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(c.backoff(i - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retry, err := c.attempt(ctx, url, payloadBytes)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Warn().Err(err).Msgf("Gemini attempt %d failed", i+1)
		if !retry {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to call Gemini API after %d attempts: %w", maxRetries, lastErr)
}

// attempt performs one request. retry reports whether another attempt may succeed.
func (c *Client) attempt(ctx context.Context, url string, payload []byte) (text string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", false, ErrEmptyResponse
	}

	// The "text" field holds the structured JSON document
	return geminiResp.Candidates[0].Content.Parts[0].Text, false, nil
}
