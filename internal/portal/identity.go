// AngelaMos | 2026
// identity.go

package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/metrics"
	"github.com/angelamos/studio-portal/internal/middleware"
)

const (
	outcomeResolved   = "resolved"
	outcomeNoClient   = "no_client"
	outcomeIneligible = "ineligible_tier"
	outcomeError      = "error"
)

type ClientFinder interface {
	GetByEmail(ctx context.Context, email string) (*client.Client, error)
}

type ResolverConfig struct {
	EligibleTier string
	// Wait bounds how long a missing client row is retried before access
	// is denied. Zero means a single lookup.
	Wait     time.Duration
	Interval time.Duration
}

// Resolver maps an authenticated principal to exactly one client. It is
// the trust boundary for every portal read.
type Resolver struct {
	clients ClientFinder
	cfg     ResolverConfig
	logger  *slog.Logger
}

func NewResolver(clients ClientFinder, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	if cfg.EligibleTier == "" {
		cfg.EligibleTier = client.TierPremium
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{clients: clients, cfg: cfg, logger: logger}
}

// Resolve returns the principal's client. A principal without an email is
// unauthenticated. A principal with no client after the provisioning wait,
// or with a client below the eligible tier, is denied.
func (r *Resolver) Resolve(ctx context.Context, p *middleware.Principal) (*client.Client, error) {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return nil, fmt.Errorf("resolve client: %w", core.ErrUnauthorized)
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))

	c, err := r.lookup(ctx, email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		metrics.RecordIdentityResolution(outcomeNoClient)
		r.logger.Warn("portal access denied: no client record",
			"account_id", p.UserID,
		)
		return nil, fmt.Errorf("resolve client: no client for account %s: %w",
			p.UserID, core.ErrAccessDenied)
	case err != nil:
		metrics.RecordIdentityResolution(outcomeError)
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	if !client.TierAtLeast(c.Tier, r.cfg.EligibleTier) {
		metrics.RecordIdentityResolution(outcomeIneligible)
		r.logger.Info("portal access denied: tier not eligible",
			"client_id", c.ID,
			"tier", c.Tier,
		)
		return nil, fmt.Errorf("resolve client: tier %q: %w", c.Tier, core.ErrAccessDenied)
	}

	metrics.RecordIdentityResolution(outcomeResolved)
	return c, nil
}

// lookup retries only while the client row is missing. Any other failure
// ends the wait immediately.
func (r *Resolver) lookup(ctx context.Context, email string) (*client.Client, error) {
	var found *client.Client
	op := func() error {
		c, err := r.clients.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		found = c
		return nil
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if r.cfg.Wait > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = r.cfg.Interval
		eb.MaxInterval = r.cfg.Wait
		eb.MaxElapsedTime = r.cfg.Wait
		b = eb
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return found, nil
}
