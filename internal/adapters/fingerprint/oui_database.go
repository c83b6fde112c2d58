package fingerprint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// OUIDatabase serves vendor lookups from a SQLite registry with an LRU cache
// in front and an optional fallback repository behind.
type OUIDatabase struct {
	db       *sql.DB
	cache    *OUICache
	mu       sync.RWMutex
	dbPath   string
	fallback VendorRepository
	closed   bool

	lookupStmt *sql.Stmt
}

// OUIEntry is one registry row.
type OUIEntry struct {
	Prefix      string // "XX:XX:XX"
	Vendor      string
	VendorShort string
	Address     string
	Country     string
	LastUpdated time.Time
}

func NewOUIDatabase(dbPath string, cacheSize int, fallback VendorRepository) (*OUIDatabase, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "ping", Err: err}
	}

	oui := &OUIDatabase{
		db:       db,
		cache:    NewOUICache(cacheSize),
		dbPath:   dbPath,
		fallback: fallback,
	}

	if err := oui.initializeSchema(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	// Full registry names are needed for phone detection; the short name
	// is only a fallback.
	stmt, err := db.Prepare("SELECT COALESCE(NULLIF(vendor, ''), vendor_short) FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "prepare_statement", Err: err}
	}
	oui.lookupStmt = stmt

	return oui, nil
}

func (o *OUIDatabase) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		vendor_short TEXT,
		address TEXT,
		country TEXT,
		last_updated INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_vendor ON oui_registry(vendor);
	`

	if _, err := o.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (o *OUIDatabase) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return "", ErrRepositoryClosed
	}
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()
	if vendor, ok := o.cache.Get(prefix); ok {
		return vendor, nil
	}

	var vendor string
	err := o.lookupStmt.QueryRowContext(ctx, prefix).Scan(&vendor)
	switch {
	case err == nil:
		o.cache.Set(prefix, vendor)
		return vendor, nil
	case errors.Is(err, sql.ErrNoRows):
		if o.fallback != nil {
			if v, ferr := o.fallback.LookupVendor(ctx, mac); ferr == nil && v != "" {
				o.cache.Set(prefix, v)
				return v, nil
			}
		}
		return "", ErrVendorNotFound
	}

	if o.fallback != nil {
		if v, ferr := o.fallback.LookupVendor(ctx, mac); ferr == nil {
			return v, nil
		}
	}
	return "", &DatabaseError{Op: "lookup", Err: err}
}

const upsertOUI = `
	INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, address, country, last_updated)
	VALUES (?, ?, ?, ?, ?, ?)
`

func (o *OUIDatabase) InsertOUI(ctx context.Context, entry OUIEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	_, err := o.db.ExecContext(ctx, upsertOUI,
		entry.Prefix,
		entry.Vendor,
		entry.VendorShort,
		entry.Address,
		entry.Country,
		entry.LastUpdated.Unix(),
	)
	if err != nil {
		return &DatabaseError{Op: "insert", Err: err}
	}
	o.cache.Clear()
	return nil
}

func (o *OUIDatabase) BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return &DatabaseError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertOUI)
	if err != nil {
		return &DatabaseError{Op: "prepare_bulk_insert", Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.ExecContext(ctx,
			entry.Prefix,
			entry.Vendor,
			entry.VendorShort,
			entry.Address,
			entry.Country,
			entry.LastUpdated.Unix(),
		)
		if err != nil {
			return &DatabaseError{Op: "bulk_insert_entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DatabaseError{Op: "commit_transaction", Err: err}
	}
	o.cache.Clear()
	return nil
}

// ImportFile loads an IEEE registry file into the database and returns the
// number of entries written.
func (o *OUIDatabase) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries, err := ReadOUIEntries(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	now := time.Now()
	for i := range entries {
		entries[i].LastUpdated = now
	}
	if err := o.BulkInsertOUIs(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (o *OUIDatabase) GetStats(ctx context.Context) (RepositoryStats, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return RepositoryStats{}, ErrRepositoryClosed
	}

	var count int
	var lastUpdateUnix int64
	err := o.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(last_updated), 0) FROM oui_registry",
	).Scan(&count, &lastUpdateUnix)
	if err != nil {
		return RepositoryStats{}, &DatabaseError{Op: "get_stats", Err: err}
	}

	cacheStats := o.cache.Stats()
	return RepositoryStats{
		TotalEntries: count,
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		LastUpdated:  time.Unix(lastUpdateUnix, 0).Format("2006-01-02"),
	}, nil
}

func (o *OUIDatabase) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.lookupStmt != nil {
		o.lookupStmt.Close()
	}
	o.cache.Close()
	if o.fallback != nil {
		o.fallback.Close()
	}
	return o.db.Close()
}
