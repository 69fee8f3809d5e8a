package reorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// Generator is the text-completion backend. Implementations return
// ErrNotConfigured, ErrTimeout or *UpstreamError for failures callers must
// see; any other error is treated like an unusable reply.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures GeminiClient.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// Fixed decoding parameters for reorder analysis.
var defaultGeneration = generationConfig{
	Temperature:     0.3,
	TopK:            32,
	TopP:            1.0,
	MaxOutputTokens: 1024,
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewGeminiClient builds a client with retry on transport errors, 429 and
// 5xx, and a breaker that opens after five consecutive failures.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 250 * time.Millisecond
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(8 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !isTimeout(err)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		IsSuccessful: func(err error) bool {
			var up *UpstreamError
			return err == nil || !(errors.As(err, &up) || errors.Is(err, ErrTimeout))
		},
	})

	return &GeminiClient{apiKey: cfg.APIKey, model: cfg.Model, http: client, breaker: breaker}
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &UpstreamError{StatusCode: http.StatusServiceUnavailable, Status: "503 circuit open", Err: err}
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("model", g.model).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{
			Contents:         []content{{Parts: []part{{Text: prompt}}}},
			GenerationConfig: defaultGeneration,
		}).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &UpstreamError{Err: err}
	}
	if resp.IsError() {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       truncate(resp.String(), 512),
		}
	}

	var body generateResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	var b strings.Builder
	for _, p := range body.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
