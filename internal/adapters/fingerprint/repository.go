package fingerprint

import (
	"context"
	"errors"
)

// VendorRepository looks up the vendor registered for a MAC address.
type VendorRepository interface {
	LookupVendor(ctx context.Context, mac MACAddress) (string, error)
	Close() error
}

// VendorWriter stores registry entries.
type VendorWriter interface {
	InsertOUI(ctx context.Context, entry OUIEntry) error
	BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error
}

// RepositoryStats describes the content of a vendor repository.
type RepositoryStats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

// CompositeVendorRepository tries each repository in order and returns the
// first vendor found.
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	return &CompositeVendorRepository{repositories: repos}
}

func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrVendorNotFound
}

func (c *CompositeVendorRepository) Close() error {
	var firstErr error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StaticVendorRepository serves lookups from an in-memory "XX:XX:XX" map.
type StaticVendorRepository struct {
	vendors map[string]string
}

func NewStaticVendorRepository(vendors map[string]string) *StaticVendorRepository {
	return &StaticVendorRepository{vendors: vendors}
}

func (s *StaticVendorRepository) LookupVendor(_ context.Context, mac MACAddress) (string, error) {
	if vendor, ok := s.vendors[mac.OUI()]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

func (s *StaticVendorRepository) Close() error {
	return nil
}
