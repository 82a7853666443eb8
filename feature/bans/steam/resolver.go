package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"banledger/core/cache"
	"banledger/feature/bans/model"

	"go.uber.org/zap"
)

// Resolver looks up player display names and vanity profile URLs through
// the Steam Web API. Lookups are cached; the resolver is best effort and
// callers must tolerate it being disabled (no API key configured).
type Resolver struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	names  *cache.Cache[model.SteamID, string]
	vanity *cache.Cache[string, model.SteamID]
}

// NewResolver creates a resolver from config.
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Resolver{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
		names:  cache.New[model.SteamID, string](cfg.CacheSize, ttl, nil),
		vanity: cache.New[string, model.SteamID](cfg.CacheSize, ttl, nil),
	}
}

// Enabled reports whether an API key is configured.
func (r *Resolver) Enabled() bool {
	return r.cfg.APIKey != ""
}

// PlayerName returns the current persona name for an identity.
func (r *Resolver) PlayerName(ctx context.Context, id model.SteamID) (string, error) {
	if !r.Enabled() {
		return "", fmt.Errorf("steam api not configured")
	}
	return r.names.Get(id, func() (string, error) {
		return r.fetchPlayerName(ctx, id)
	})
}

// ResolveVanity resolves a vanity profile name ("/id/<name>") to an
// identity.
func (r *Resolver) ResolveVanity(ctx context.Context, name string) (model.SteamID, error) {
	if !r.Enabled() {
		return 0, fmt.Errorf("steam api not configured")
	}
	return r.vanity.Get(name, func() (model.SteamID, error) {
		return r.fetchVanity(ctx, name)
	})
}

// Resolve is the best-effort form of PlayerName used during
// reconciliation: failures are logged and reported as a miss, never as an
// error.
func (r *Resolver) Resolve(ctx context.Context, id model.SteamID) (string, bool) {
	if !r.Enabled() {
		return "", false
	}
	name, err := r.PlayerName(ctx, id)
	if err != nil {
		r.logger.Debug("Player name lookup failed",
			zap.String("player", id.String()), zap.Error(err))
		return "", false
	}
	return name, true
}

func (r *Resolver) fetchPlayerName(ctx context.Context, id model.SteamID) (string, error) {
	var response struct {
		Response struct {
			Players []struct {
				PersonaName string `json:"personaname"`
			} `json:"players"`
		} `json:"response"`
	}
	params := url.Values{
		"key":      {r.cfg.APIKey},
		"steamids": {id.S64()},
	}
	err := r.get(ctx, "/ISteamUser/GetPlayerSummaries/v2/", params, &response)
	if err != nil {
		return "", err
	}
	if len(response.Response.Players) == 0 {
		return "", fmt.Errorf("no profile for %s", id.S64())
	}
	return response.Response.Players[0].PersonaName, nil
}

func (r *Resolver) fetchVanity(ctx context.Context, name string) (model.SteamID, error) {
	var response struct {
		Response struct {
			Success int    `json:"success"`
			SteamID string `json:"steamid"`
		} `json:"response"`
	}
	params := url.Values{
		"key":       {r.cfg.APIKey},
		"vanityurl": {name},
	}
	err := r.get(ctx, "/ISteamUser/ResolveVanityURL/v1/", params, &response)
	if err != nil {
		return 0, err
	}
	if response.Response.Success != 1 {
		return 0, fmt.Errorf("vanity name %q did not resolve", name)
	}
	return model.ParseSteamID(response.Response.SteamID)
}

func (r *Resolver) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("steam api request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("steam api returned status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode steam api response: %w", err)
	}
	return nil
}
