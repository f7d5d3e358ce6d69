package assistant

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

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"pkt.systems/pinosh/schema"
	"pkt.systems/pslog"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultTimeout        = 60 * time.Second
	defaultMaxFailures    = 3
	defaultBreakerTimeout = 30 * time.Second
	defaultBreakerWindow  = 60 * time.Second
	maxResponseBody       = 4 << 20
)

const systemPrompt = "You are a terse assistant inside the pinosh interactive shell. " +
	"Answer with the shell command or a short explanation. Prefer POSIX tools."

// ErrUnavailable reports a call rejected by the open circuit breaker.
var ErrUnavailable = errors.New("assistant unavailable")

// Options configures a Client.
type Options struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxFailures       uint32
	// BreakerTimeout is how long the breaker stays open before a trial request.
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

// Question is a prompt plus the shell context sent with it.
type Question struct {
	Text    string
	Cwd     string
	History []string
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	log     pslog.Logger
}

func NewClient(opts Options, log pslog.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	breakerTimeout := opts.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = defaultBreakerTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(opts.RequestsPerMinute) / 60.0
		burst = opts.RequestsPerMinute
	}
	c := &Client{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: baseURL,
		timeout: timeout,
		http:    client,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "assistant",
		MaxRequests: 1,
		Interval:    defaultBreakerWindow,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A cancelled call says nothing about the endpoint.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// Ask sends q and returns the answer text. Calls are rate limited, bounded
// by the client timeout and go through the circuit breaker.
func (c *Client) Ask(ctx context.Context, q Question) (string, error) {
	if strings.TrimSpace(q.Text) == "" {
		return "", schema.ErrEmptyQuestion
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	start := time.Now()
	answer, err := c.breaker.Execute(func() (string, error) {
		return c.chat(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.log.Warn("assistant request failed", "err", err, "elapsed", time.Since(start))
		return "", err
	}
	c.log.Debug("assistant request ok", "elapsed", time.Since(start), "answer_len", len(answer))
	return answer, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func buildMessages(q Question) []chatMessage {
	var context strings.Builder
	if q.Cwd != "" {
		fmt.Fprintf(&context, "Working directory: %s\n", q.Cwd)
	}
	if len(q.History) > 0 {
		context.WriteString("Recent commands:\n")
		for _, entry := range q.History {
			context.WriteString("  ")
			context.WriteString(entry)
			context.WriteByte('\n')
		}
	}
	msgs := []chatMessage{{Role: "system", Content: systemPrompt}}
	if context.Len() > 0 {
		msgs = append(msgs, chatMessage{Role: "system", Content: strings.TrimRight(context.String(), "\n")})
	}
	return append(msgs, chatMessage{Role: "user", Content: q.Text})
}

func (c *Client) chat(ctx context.Context, q Question) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: buildMessages(q)})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, data)
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func httpError(status int, body []byte) error {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("openai: status %d: %s", status, parsed.Error.Message)
	}
	preview := strings.TrimSpace(string(body))
	if len(preview) > 200 {
		preview = preview[:200]
	}
	return fmt.Errorf("openai: status %d: %s", status, preview)
}
