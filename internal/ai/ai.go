// Package ai drafts blog posts with Gemini and builds a matching
// Pollinations cover image URL.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrIncompleteResponse = errors.New("ai response was incomplete")
	ErrServiceBusy        = errors.New("ai service is busy")
	ErrNotConfigured      = errors.New("ai api key not configured")
)

const (
	DefaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel        = "gemini-2.0-flash"
	DefaultImageBaseURL = "https://image.pollinations.ai/prompt/"

	maxOutputTokens = 5000
	temperature     = 0.7
	maxBodyBytes    = 4 << 20
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	ImageBaseURL string
	Timeout      time.Duration
}

// Draft is a generated post. CoverImage is filled from the image URL
// builder, the rest comes from the text model.
type Draft struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
}

type Client struct {
	cfg  Config
	http *http.Client
	seed func() int
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		seed: func() int { return rand.Intn(100000) },
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate asks the text model for a post about category, focused on text
// when given. Upstream 429 maps to ErrServiceBusy and unparsable output to
// ErrIncompleteResponse. There are no retries.
func (c *Client) Generate(ctx context.Context, text, category string) (Draft, error) {
	if c.cfg.APIKey == "" {
		return Draft{}, ErrNotConfigured
	}
	focus := strings.TrimSpace(text)
	if focus == "" {
		focus = category
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: textPrompt(category, focus)}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	})
	if err != nil {
		return Draft{}, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Draft{}, ErrServiceBusy
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Draft{}, fmt.Errorf("received non-2xx status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Draft{}, fmt.Errorf("failed to read response body: %w", err)
	}
	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Draft{}, fmt.Errorf("decode response: %w", err)
	}

	generated := "{}"
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		if t := parsed.Candidates[0].Content.Parts[0].Text; t != "" {
			generated = t
		}
	}

	var draft Draft
	if err := json.Unmarshal([]byte(stripFences(generated)), &draft); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrIncompleteResponse, err)
	}
	draft.CoverImage = c.ImageURL(category)
	return draft, nil
}

// ImageURL builds a cover image URL for category with a random seed.
func (c *Client) ImageURL(category string) string {
	prompt := fmt.Sprintf("professional stock photo of %s technology concept, modern computer screen with coding, office background, 4k resolution, cinematic lighting, photorealistic", category)
	q := url.Values{}
	q.Set("width", "1280")
	q.Set("height", "720")
	q.Set("nologo", "true")
	q.Set("seed", fmt.Sprint(c.seed()))
	q.Set("model", "flux")
	return c.cfg.ImageBaseURL + url.PathEscape(prompt) + "?" + q.Encode()
}

func textPrompt(category, focus string) string {
	return fmt.Sprintf(`You are an expert technical blog writer.
Create a comprehensive blog post about %q.
Focus specifically on this topic/context: %q.

Return the response STRICTLY as a valid JSON object without any markdown formatting.
The JSON object must have these exact keys:
{
    "title": "A catchy, SEO-friendly title",
    "slug": "url-friendly-slug-example",
    "excerpt": "A short engaging summary (2-3 sentences)",
    "content": "Full blog post content in Markdown format. Include headers, bold text, and code blocks where necessary."
}`, category, focus)
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
