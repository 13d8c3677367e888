package sportsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Game описывает одно событие внешнего спортивного фида
type Game struct {
	ExternalID string    `json:"id"`
	SportKey   string    `json:"sport_key"`
	League     string    `json:"league"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	StartTime  time.Time `json:"commence_time"`
	Completed  bool      `json:"completed"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
}

// Client ходит во внешний спортивный фид по HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый клиент фида
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("feed base url is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// UpcomingGames возвращает ближайшие игры по виду спорта
func (c *Client) UpcomingGames(ctx context.Context, sportKey string) ([]Game, error) {
	var games []Game
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/sports/%s/games", url.PathEscape(sportKey)), &games); err != nil {
		return nil, fmt.Errorf("fetch upcoming games for %s: %w", sportKey, err)
	}
	return games, nil
}

// Scores возвращает завершенные игры со счетом по виду спорта
func (c *Client) Scores(ctx context.Context, sportKey string) ([]Game, error) {
	var games []Game
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/sports/%s/scores", url.PathEscape(sportKey)), &games); err != nil {
		return nil, fmt.Errorf("fetch scores for %s: %w", sportKey, err)
	}
	return games, nil
}

// getJSON выполняет GET с ретраями на 429 и 5xx
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("feed http %d: %s", resp.StatusCode, truncate(string(body), 200))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("feed http %d: %s", resp.StatusCode, truncate(string(body), 200))
		}

		return json.Unmarshal(body, dest)
	}
	return fmt.Errorf("feed request failed after retries: %w", lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
