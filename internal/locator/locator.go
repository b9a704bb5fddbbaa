package locator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/imroc/req/v3"

	"github.com/minecart-tools/regionsync/internal/version"
)

const playerPositionPath = "/players/{player}/position"

var (
	ErrPlayerNotFound = errors.New("locator: player not found")
	ErrUnavailable    = errors.New("locator: service unavailable")
)

// Location is a player position reported by the locator service.
// X and Z are world block coordinates, not tile coordinates.
type Location struct {
	X   float64 `json:"x"`
	Z   float64 `json:"z"`
	Dim int     `json:"dim"`
}

// Locator resolves a player name to their current world position.
type Locator interface {
	Locate(ctx context.Context, player string) (*Location, error)
}

type locatorError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// HTTPLocator queries a position endpoint over HTTP. Successful lookups
// are cached for a short TTL so a burst of region commands for the same
// player does not hammer the service.
type HTTPLocator struct {
	client *req.Client
	cache  *expirable.LRU[string, *Location]
}

type Config struct {
	URL      string
	Token    string
	CacheTTL time.Duration
}

// New builds a Locator for the given config. An empty URL yields a
// disabled locator whose lookups always fail with ErrUnavailable.
func New(cfg Config) Locator {
	if cfg.URL == "" {
		return Disabled{}
	}

	client := req.C().
		SetBaseURL(cfg.URL).
		SetTimeout(5 * time.Second).
		SetUserAgent("RegionSync/" + version.Version)

	if cfg.Token != "" {
		client.SetCommonBearerAuthToken(cfg.Token)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &HTTPLocator{
		client: client,
		cache:  expirable.NewLRU[string, *Location](0, nil, ttl), // 0 = LRU off
	}
}

func (l *HTTPLocator) Locate(ctx context.Context, player string) (*Location, error) {
	if loc, ok := l.cache.Get(player); ok {
		return loc, nil
	}

	var loc Location
	var apiErr locatorError

	res, err := l.client.R().
		SetContext(ctx).
		SetPathParam("player", player).
		SetSuccessResult(&loc).
		SetErrorResult(&apiErr).
		Get(playerPositionPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, player)
	}

	if res.IsErrorState() {
		if apiErr.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, res.StatusCode)
	}

	l.cache.Add(player, &loc)
	return &loc, nil
}

// Disabled is the no-op locator used when no position service is configured.
type Disabled struct{}

func (Disabled) Locate(ctx context.Context, player string) (*Location, error) {
	return nil, fmt.Errorf("%w: no locator configured", ErrUnavailable)
}
