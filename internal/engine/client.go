package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/tavla/internal/model"
	"github.com/ppiankov/tavla/internal/util"
)

// ErrEngineUnavailable means ground truth could not be reached: every retry
// failed or the payload was unusable. Callers must treat this as "we don't
// know", never as "the claim is wrong".
var ErrEngineUnavailable = errors.New("analysis engine unavailable")

// sleepFunc is the sleep used between retries (injectable for tests)
var sleepFunc = time.Sleep

// Client queries the external move-analysis engine.
// Retries with exponential backoff are internal; callers only ever see
// success or ErrEngineUnavailable.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	backoffCap time.Duration
	maxMoves   int
	cubeful    bool
}

// NewClient creates a new engine client from configuration
func NewClient(cfg model.EngineConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := cfg.BackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}
	backoffCap := cfg.BackoffCap
	if backoffCap <= 0 {
		backoffCap = 10 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxMoves := cfg.MaxMoves
	if maxMoves <= 0 {
		maxMoves = 9
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		limiter:    limiter,
		maxRetries: maxRetries,
		backoff:    backoff,
		backoffCap: backoffCap,
		maxMoves:   maxMoves,
		cubeful:    cfg.Cubeful,
	}
}

// queryRequest is the engine wire format for a position query
type queryRequest struct {
	Board      model.Board  `json:"board"`
	Dice       [2]int       `json:"dice"`
	Player     model.Player `json:"player"`
	Cubeful    bool         `json:"cubeful"`
	MaxMoves   int          `json:"max-moves"`
	ScoreMoves bool         `json:"score-moves"`
}

// Query asks the engine to rank candidate moves for the position.
// An empty ranked list is treated as a transient failure and retried; after
// all attempts it surfaces as ErrEngineUnavailable like any other exhaustion.
func (c *Client) Query(ctx context.Context, pos *model.Position) (*model.EngineResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("no engine endpoint configured: %w", ErrEngineUnavailable)
	}

	body, err := json.Marshal(queryRequest{
		Board:      pos.Board,
		Dice:       pos.Dice,
		Player:     pos.Player,
		Cubeful:    c.cubeful,
		MaxMoves:   c.maxMoves,
		ScoreMoves: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << uint(attempt-1)
			if delay > c.backoffCap {
				delay = c.backoffCap
			}
			sleepFunc(delay)
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := c.queryOnce(ctx, body)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Moves) == 0 {
			// Engine sometimes returns an empty list under load. Treat
			// as transient: a legal position always has ranked moves.
			lastErr = fmt.Errorf("engine returned no moves")
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %d attempts failed, last error: %v", ErrEngineUnavailable, c.maxRetries, lastErr)
}

// queryOnce performs a single HTTP round trip
func (c *Client) queryOnce(ctx context.Context, body []byte) (*model.EngineResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read engine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	return NormalizeResponse(payload)
}
