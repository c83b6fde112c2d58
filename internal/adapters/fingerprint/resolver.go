package fingerprint

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Lookup outcomes reported to the observer.
const (
	LookupHit        = "hit"
	LookupMiss       = "miss"
	LookupRandomized = "randomized"
	LookupInvalid    = "invalid"
	LookupError      = "error"
)

// Resolver turns a VendorRepository into a lookup that never fails: every
// miss or error resolves to "".
type Resolver struct {
	repo     VendorRepository
	timeout  time.Duration
	logger   *slog.Logger
	observer func(result string)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout bounds each repository lookup.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithObserver receives the outcome of every lookup.
func WithObserver(fn func(result string)) ResolverOption {
	return func(r *Resolver) { r.observer = fn }
}

func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

func NewResolver(repo VendorRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:    repo,
		timeout: 250 * time.Millisecond,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the vendor for mac, or "".
func (r *Resolver) Lookup(mac string) string {
	addr, err := ParseMAC(mac)
	if err != nil {
		r.observe(LookupInvalid)
		return ""
	}

	if addr.IsMulticast() {
		r.observe(LookupMiss)
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	vendor, err := r.repo.LookupVendor(ctx, addr)
	switch {
	case err == nil && vendor != "":
		r.observe(LookupHit)
		return vendor
	case err != nil && !errors.Is(err, ErrVendorNotFound):
		r.logger.Debug("vendor lookup failed", "mac", mac, "error", err)
		r.observe(LookupError)
	case addr.IsRandomized():
		r.observe(LookupRandomized)
	default:
		r.observe(LookupMiss)
	}
	return ""
}

func (r *Resolver) Close() error {
	return r.repo.Close()
}

func (r *Resolver) observe(result string) {
	if r.observer != nil {
		r.observer(result)
	}
}
