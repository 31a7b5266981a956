package ghin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ScoreEndpoint is one known shape of the registry's score history endpoint.
// The registry has moved scores between paths over time; FetchScores walks a
// list of these in order and keeps the first one that returns rounds.
type ScoreEndpoint struct {
	Name string
	// Path builds the request path (with query) relative to the base URL.
	Path func(ghinNumber string, limit int) string
}

// DefaultScoreEndpoints returns the strategies tried by NewClient, most
// reliable first.
func DefaultScoreEndpoints() []ScoreEndpoint {
	return []ScoreEndpoint{
		{
			Name: "golfer_scores",
			Path: func(ghinNumber string, limit int) string {
				return fmt.Sprintf("/golfers/%s/scores.json?page=1&per_page=%d", url.PathEscape(ghinNumber), limit)
			},
		},
		{
			Name: "scores_search",
			Path: func(ghinNumber string, limit int) string {
				params := url.Values{}
				params.Set("golfer_id", ghinNumber)
				params.Set("offset", "0")
				params.Set("limit", fmt.Sprint(limit))
				params.Set("statuses", "Validated")
				return "/scores.json?" + params.Encode()
			},
		},
	}
}

type scoresResponse struct {
	Scores []RawRound `json:"scores"`
}

// FetchScores tries each score endpoint in order and returns the first
// non-empty result. When every endpoint fails or comes back empty it returns
// an empty slice: a golfer without scores is still a golfer.
func (c *Client) FetchScores(ctx context.Context, ghinNumber, token string) ([]RawRound, error) {
	if ghinNumber == "" {
		return []RawRound{}, nil
	}

	for _, ep := range c.endpoints {
		if ctx.Err() != nil {
			break
		}
		rounds, err := c.fetchFrom(ctx, ep, ghinNumber, token)
		if err != nil {
			c.logger.Debug("ghin: score endpoint failed",
				"endpoint", ep.Name,
				"ghin", ghinNumber,
				"error", err,
			)
			continue
		}
		if len(rounds) == 0 {
			c.logger.Debug("ghin: score endpoint returned no rounds", "endpoint", ep.Name, "ghin", ghinNumber)
			continue
		}
		c.logger.Debug("ghin: scores fetched", "endpoint", ep.Name, "ghin", ghinNumber, "rounds", len(rounds))
		return rounds, nil
	}

	return []RawRound{}, nil
}

func (c *Client) fetchFrom(ctx context.Context, ep ScoreEndpoint, ghinNumber, token string) ([]RawRound, error) {
	req, err := c.authorizedGet(ctx, ep.Path(ghinNumber, RecentScoreLimit), token)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("status %d", status)
	}

	var parsed scoresResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return parsed.Scores, nil
}
