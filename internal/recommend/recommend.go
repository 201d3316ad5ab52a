// ABOUTME: Activity recommendations from an OpenAI-compatible chat endpoint
// ABOUTME: Retries rate limits and server errors with exponential backoff

package recommend

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

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
)

const (
	maxEvents   = 5
	maxSpaces   = 3
	maxTokens   = 500
	temperature = 0.7
	attempts    = 3
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("openai api key not configured")

// Options configures the chat endpoint.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	RetryDelay time.Duration // first backoff step, default 500ms
}

// Result is a recommendation and the catalogue it was built from.
type Result struct {
	District    string                  `json:"district"`
	Text        string                  `json:"recommendation,omitempty"`
	Suggestions []Suggestion            `json:"suggestions,omitempty"`
	Events      []*models.CulturalEvent `json:"events"`
	Spaces      []*models.CulturalSpace `json:"spaces"`
}

// Recommender asks the model for activities in a district.
type Recommender struct {
	store  storage.Store
	clock  timeutil.Clock
	logger *log.Logger
	opts   Options
}

// New creates a recommender.
func New(store storage.Store, clock timeutil.Clock, logger *log.Logger, opts Options) *Recommender {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if logger == nil {
		logger = log.Default()
	}
	return &Recommender{store: store, clock: clock, logger: logger, opts: opts}
}

// Configured reports whether an API key is set.
func (r *Recommender) Configured() bool {
	return r.opts.APIKey != ""
}

// Catalogue returns the upcoming events and spaces used for district.
func (r *Recommender) Catalogue(district string) ([]*models.CulturalEvent, []*models.CulturalSpace, error) {
	events, err := r.store.ListEvents(&storage.EventFilter{
		District:    district,
		EndingAfter: timeutil.Today(r.clock),
		Limit:       maxEvents,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list events: %w", err)
	}
	spaces, err := r.store.ListSpaces(district, maxSpaces)
	if err != nil {
		return nil, nil, fmt.Errorf("list spaces: %w", err)
	}
	return events, spaces, nil
}

// Recommend builds the prompt for district and asks the model. Without an
// API key it returns the catalogue together with ErrNotConfigured.
func (r *Recommender) Recommend(ctx context.Context, district string) (*Result, error) {
	events, spaces, err := r.Catalogue(district)
	if err != nil {
		return nil, err
	}
	res := &Result{District: district, Events: events, Spaces: spaces}
	if !r.Configured() {
		return res, ErrNotConfigured
	}

	prompt := BuildPrompt(district, events, spaces)
	r.logger.Debug("requesting recommendation", "district", district, "events", len(events), "spaces", len(spaces))

	text, err := r.complete(ctx, prompt)
	if err != nil {
		return res, err
	}
	res.Text = text
	res.Suggestions = ParseSuggestions(text)
	return res, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// apiError is a non-2xx reply from the chat endpoint.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai api error %d: %s", e.Status, e.Body)
}

func retryable(err error) bool {
	var ae *apiError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Status == http.StatusTooManyRequests || ae.Status >= 500
}

func (r *Recommender) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	return retry.DoWithData(
		func() (string, error) { return r.post(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(r.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("chat request failed, retrying", "attempt", n+1, "err", err)
		}),
	)
}

func (r *Recommender) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.opts.APIKey)

	resp, err := r.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
