package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/nearby/internal/adapters/export"
	"github.com/lcalzada-xor/nearby/internal/adapters/fingerprint"
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/driver"
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/hopping"
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/monitor"
	"github.com/lcalzada-xor/nearby/internal/adapters/web"
	webserver "github.com/lcalzada-xor/nearby/internal/adapters/web/server"
	"github.com/lcalzada-xor/nearby/internal/config"
	"github.com/lcalzada-xor/nearby/internal/core/ports"
	"github.com/lcalzada-xor/nearby/internal/core/services/mapper"
	"github.com/lcalzada-xor/nearby/internal/core/services/session"
	"github.com/lcalzada-xor/nearby/internal/telemetry"
)

// DefaultChannels is hopped when neither the configuration nor the
// interface capabilities give a list.
var DefaultChannels = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

// Application wires the capture source, mapper, session, exporter and the
// optional visualization server for one run.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Vendors  *fingerprint.Resolver
	Source   ports.FrameSource
	Hopper   *hopping.ChannelHopper
	Mapper   *mapper.Mapper
	Session  *session.Session
	Store    *web.Store
	Web      *webserver.Server
	Exporter ports.Exporter

	live       *monitor.LiveSource
	monitorSet bool
}

// New creates a new Application instance and bootstraps its components.
// Close must be called even when New fails part way.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{Config: cfg, Logger: logger}

	if err := app.bootstrap(); err != nil {
		return app, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	exporter, err := export.ForFormat(app.Config.Format)
	if err != nil {
		return err
	}
	app.Exporter = exporter

	if err := app.initVendors(); err != nil {
		return err
	}
	if err := app.initSource(); err != nil {
		return err
	}
	app.initHopper()

	mode := mapper.ModeTopology
	if app.Config.PeopleMode {
		mode = mapper.ModePeople
	}
	app.Mapper = mapper.New(app.Vendors, mode, app.Logger)
	app.Store = web.NewStore()

	app.Session = session.New(app.Source, app.Mapper, session.Options{
		Duration:   app.duration(),
		SourceName: app.sourceName(),
		Publisher:  app.Store,
		Logger:     app.Logger,
	})

	if app.Config.Addr != "" {
		app.Web = webserver.NewServer(app.Config.Addr, app.Config.StaticDir, app.Store)
	}
	return nil
}

// initVendors chains the optional SQLite registry, the IEEE text file and the
// built-in phone OUIs.
func (app *Application) initVendors() error {
	var repos []fingerprint.VendorRepository

	file := fingerprint.NewFileVendorRepository()
	if err := file.LoadFromFile(app.Config.OUIFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load OUI file: %w", err)
		}
		app.Logger.Warn("OUI file not found, using built-in vendors only", "path", app.Config.OUIFile)
	} else {
		app.Logger.Info("OUI registry loaded", "path", app.Config.OUIFile, "entries", file.Len())
	}

	if path := app.Config.OUIDatabase; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create OUI DB directory: %w", err)
		}
		db, err := fingerprint.NewOUIDatabase(path, 10000, nil)
		if err != nil {
			return fmt.Errorf("open OUI database: %w", err)
		}
		if err := app.seedDatabase(db); err != nil {
			app.Logger.Warn("OUI database import failed", "error", err)
		}
		repos = append(repos, db)
	}

	repos = append(repos, file, fingerprint.NewStaticVendorRepository(fingerprint.CommonOUIs))
	app.Vendors = fingerprint.NewResolver(
		fingerprint.NewCompositeVendorRepository(repos...),
		fingerprint.WithObserver(telemetry.ObserveVendorLookup),
		fingerprint.WithLogger(app.Logger),
	)
	return nil
}

// seedDatabase imports the OUI text file into an empty registry database.
func (app *Application) seedDatabase(db *fingerprint.OUIDatabase) error {
	ctx := context.Background()
	stats, err := db.GetStats(ctx)
	if err != nil {
		return err
	}
	if stats.TotalEntries > 0 {
		app.Logger.Info("OUI database ready", "entries", stats.TotalEntries, "updated", stats.LastUpdated)
		return nil
	}
	n, err := db.ImportFile(ctx, app.Config.OUIFile)
	if err != nil {
		return err
	}
	app.Logger.Info("OUI database imported", "entries", n)
	return nil
}

func (app *Application) initSource() error {
	if !app.Config.Live() {
		src, err := capture.OpenFile(app.Config.PcapPath)
		if err != nil {
			return err
		}
		app.Logger.Info("replaying capture file", "path", app.Config.PcapPath, "link_type", src.LinkType().String())
		app.Source = src
		return nil
	}

	iface := app.Config.Interface
	if !app.Config.NoMonitor {
		log.Printf("Enabling monitor mode on %s", iface)
		if err := driver.EnableMonitorMode(iface); err != nil {
			return fmt.Errorf("failed to enable monitor mode on %s: %w", iface, err)
		}
		app.monitorSet = true
	}

	live, err := monitor.Open(iface, driver.BringUp)
	if err != nil {
		return err
	}
	app.live = live
	app.Source = live
	return nil
}

func (app *Application) initHopper() {
	if !app.Config.Live() || app.Config.NoHop {
		return
	}
	channels := app.Config.Channels
	if len(channels) == 0 {
		caps, err := driver.InterfaceCapabilities(app.Config.Interface)
		if err != nil || len(caps.Channels) == 0 {
			app.Logger.Warn("interface capabilities unavailable, hopping 2.4 GHz", "error", err)
			channels = DefaultChannels
		} else {
			channels = caps.Channels
		}
	}
	app.Hopper = hopping.NewHopper(app.Config.Interface, channels, app.Config.Dwell(), nil)
}

// duration is the capture bound, scaled by the hop list length when asked.
func (app *Application) duration() time.Duration {
	d := app.Config.Duration
	if app.Config.ScaleDuration && app.Hopper != nil {
		d *= time.Duration(len(app.Hopper.Channels()))
	}
	return d
}

func (app *Application) sourceName() string {
	if app.Config.Live() {
		return app.Config.Interface
	}
	return filepath.Base(app.Config.PcapPath)
}

// Run captures until the session ends, then exports the result. The channel
// hopper and the web server stop with the session.
func (app *Application) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	if app.Hopper != nil {
		g.Go(func() error { return app.Hopper.Start(gctx) })
	}
	if app.Web != nil {
		g.Go(func() error {
			if err := app.Web.Run(gctx); err != nil {
				return fmt.Errorf("web server error: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return app.Session.Run(gctx)
	})

	runErr := g.Wait()
	app.logCaptureStats()

	snap, ok := app.Session.Result()
	if !ok {
		return runErr
	}
	// Export even after an interrupt or a capture failure.
	if err := app.Exporter.Export(context.WithoutCancel(ctx), snap, app.Config.Output); err != nil {
		return errors.Join(runErr, fmt.Errorf("export: %w", err))
	}
	if app.Config.Output != "" {
		app.Logger.Info("snapshot exported", "format", app.Config.Format, "path", app.Config.Output)
	}
	return runErr
}

func (app *Application) logCaptureStats() {
	if app.live == nil {
		return
	}
	received, dropped, err := app.live.Stats()
	if err != nil {
		app.Logger.Debug("capture stats unavailable", "error", err)
		return
	}
	app.Logger.Info("capture stats", "received", received, "dropped_by_kernel", dropped)
}

// Close releases the capture source and the vendor registries, and restores
// managed mode when monitor mode was enabled by New.
func (app *Application) Close() {
	if app.Source != nil {
		app.Source.Close()
	}
	if app.Vendors != nil {
		if err := app.Vendors.Close(); err != nil {
			app.Logger.Warn("closing vendor registries", "error", err)
		}
	}
	if app.monitorSet {
		log.Printf("Restoring managed mode on %s", app.Config.Interface)
		if err := driver.DisableMonitorMode(app.Config.Interface); err != nil {
			log.Printf("Error restoring managed mode: %v", err)
		}
	}
}
