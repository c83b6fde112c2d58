package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// SessionModel is one capture run.
type SessionModel struct {
	ID         string `gorm:"primaryKey"`
	TakenAt    time.Time
	PeopleMode bool
	Frames     uint64
	Dropped    uint64
}

// AccessPointModel is the GORM model for a Collection.
type AccessPointModel struct {
	ID             uint   `gorm:"primaryKey"`
	SessionID      string `gorm:"index"`
	BSSID          string `gorm:"index"`
	SSID           string
	Protocol       string
	Vendor         string
	Signal         int
	CurrentChannel int
}

// NodeModel is a device seen through an access point.
type NodeModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	BSSID     string `gorm:"index"`
	MAC       string
	Vendor    string
	Signal    int
}

// LinkModel is one ordered edge of a collection.
type LinkModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	BSSID     string `gorm:"index"`
	Source    string
	Target    string
}

// PersonModel is a phone detected in people mode. Distance is NULL when it
// could not be estimated.
type PersonModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	MAC       string
	Vendor    string
	Signal    int
	Distance  *float64
}

// SQLiteExporter stores a snapshot in a SQLite file. The file is written
// once per run and never read back by nearby.
type SQLiteExporter struct {
	// Tracing enables the OpenTelemetry GORM plugin.
	Tracing bool
}

func NewSQLiteExporter() *SQLiteExporter {
	return &SQLiteExporter{Tracing: true}
}

// Open creates or opens the database at path and migrates the schema.
func (e *SQLiteExporter) Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if e.Tracing {
		err = db.Use(tracing.NewPlugin())
	}
	if err == nil {
		err = db.AutoMigrate(&SessionModel{}, &AccessPointModel{}, &NodeModel{}, &LinkModel{}, &PersonModel{})
	}
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}
	return db, nil
}

// Export writes snap to the database at path in a single transaction.
func (e *SQLiteExporter) Export(ctx context.Context, snap domain.Snapshot, path string) error {
	if path == "" {
		return errors.New("sqlite export needs an output path")
	}
	db, err := e.Open(path)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&SessionModel{
			ID:         snap.SessionID,
			TakenAt:    snap.TakenAt,
			PeopleMode: snap.PeopleMode,
			Frames:     snap.Frames,
			Dropped:    snap.Dropped,
		}).Error; err != nil {
			return err
		}

		aps, nodes, links := collectionRows(snap)
		if err := insert(tx, aps); err != nil {
			return err
		}
		if err := insert(tx, nodes); err != nil {
			return err
		}
		if err := insert(tx, links); err != nil {
			return err
		}
		return insert(tx, peopleRows(snap))
	})
}

func insert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, 200).Error
}

func collectionRows(snap domain.Snapshot) ([]AccessPointModel, []NodeModel, []LinkModel) {
	var (
		aps   []AccessPointModel
		nodes []NodeModel
		links []LinkModel
	)
	for _, c := range snap.Collections {
		aps = append(aps, AccessPointModel{
			SessionID:      snap.SessionID,
			BSSID:          c.RouterID,
			SSID:           c.SSID,
			Protocol:       c.Protocol,
			Vendor:         c.Label,
			Signal:         int(c.Signal),
			CurrentChannel: int(c.CurrentChannel),
		})
		for _, n := range c.Nodes {
			nodes = append(nodes, NodeModel{
				SessionID: snap.SessionID,
				BSSID:     c.RouterID,
				MAC:       n.MAC,
				Vendor:    n.Properties.Vendor,
				Signal:    int(n.Properties.Signal),
			})
		}
		for _, l := range c.Links {
			links = append(links, LinkModel{
				SessionID: snap.SessionID,
				BSSID:     c.RouterID,
				Source:    l.Source,
				Target:    l.Target,
			})
		}
	}
	return aps, nodes, links
}

func peopleRows(snap domain.Snapshot) []PersonModel {
	var out []PersonModel
	for _, p := range snap.People {
		m := PersonModel{
			SessionID: snap.SessionID,
			MAC:       p.MAC,
			Vendor:    p.Vendor,
			Signal:    int(p.Signal),
		}
		if d := float64(p.Distance); !math.IsNaN(d) && !math.IsInf(d, 0) {
			m.Distance = &d
		}
		out = append(out, m)
	}
	return out
}
