package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/clients"
	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/adapters/providers/swiggy"
	"github.com/eshaffer321/foodtracker/internal/adapters/providers/zomato"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/config"
)

// ErrNoPlatforms is returned when the config enables no platform.
var ErrNoPlatforms = errors.New("no platforms enabled")

// NewZomatoProvider creates the Zomato adapter from its config section.
func NewZomatoProvider(cfg config.PlatformConfig, logger *slog.Logger) (providers.Adapter, error) {
	platform, err := applyOverrides(zomato.Platform(), cfg)
	if err != nil {
		return nil, fmt.Errorf("zomato config: %w", err)
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("zomato config: %w", err)
	}
	return zomato.NewProvider(platform, client, logger), nil
}

// NewSwiggyProvider creates the Swiggy adapter from its config section.
// Order times are rendered in loc.
func NewSwiggyProvider(cfg config.PlatformConfig, loc *time.Location, logger *slog.Logger) (providers.Adapter, error) {
	platform, err := applyOverrides(swiggy.Platform(), cfg)
	if err != nil {
		return nil, fmt.Errorf("swiggy config: %w", err)
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("swiggy config: %w", err)
	}
	return swiggy.NewProvider(platform, client, loc, logger), nil
}

// NewRegistry registers every enabled platform.
func NewRegistry(cfg *config.Config, loc *time.Location, logger *slog.Logger) (*providers.Registry, error) {
	registry := providers.NewRegistry(logger)

	if cfg.Platforms.Zomato.Enabled {
		adapter, err := NewZomatoProvider(cfg.Platforms.Zomato, logger)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}
	if cfg.Platforms.Swiggy.Enabled {
		adapter, err := NewSwiggyProvider(cfg.Platforms.Swiggy, loc, logger)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, ErrNoPlatforms
	}
	return registry, nil
}

// applyOverrides replaces descriptor defaults with the non-zero config
// values.
func applyOverrides(p providers.Platform, cfg config.PlatformConfig) (providers.Platform, error) {
	delay, jitter, _, err := cfg.Durations()
	if err != nil {
		return p, err
	}
	if cfg.BaseURL != "" {
		p.BaseURL = cfg.BaseURL
	}
	if cfg.MaxPages > 0 {
		p.MaxPages = cfg.MaxPages
	}
	if delay > 0 {
		p.Delay = delay
	}
	if jitter > 0 {
		p.Jitter = jitter
	}
	return p, nil
}

func newClient(cfg config.PlatformConfig, logger *slog.Logger) (*clients.Client, error) {
	_, _, timeout, err := cfg.Durations()
	if err != nil {
		return nil, err
	}
	retryMax := cfg.RetryMax
	if retryMax == 0 {
		retryMax = clients.DefaultRetryMax
	}
	return clients.New(clients.Options{
		Timeout:   timeout,
		RetryMax:  retryMax,
		Cookie:    cfg.Cookie,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	}), nil
}
