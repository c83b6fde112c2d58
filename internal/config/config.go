package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/nearby/internal/adapters/export"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Interface     string
	PcapPath      string
	Duration      time.Duration
	ScaleDuration bool
	PeopleMode    bool
	OUIFile       string
	OUIDatabase   string
	Output        string
	Format        string
	Addr          string
	StaticDir     string
	Channels      []int
	DwellTime     int // in milliseconds
	NoHop         bool
	NoMonitor     bool
	Trace         bool
	Debug         bool
}

// Live reports whether frames come from an interface rather than a file.
func (c *Config) Live() bool { return c.PcapPath == "" }

// Dwell is DwellTime as a duration.
func (c *Config) Dwell() time.Duration {
	return time.Duration(c.DwellTime) * time.Millisecond
}

// Load builds the configuration from defaults, NEARBY_* environment variables
// and args (normally os.Args[1:]). Flags take precedence over environment
// variables.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("nearby", flag.ContinueOnError)

	// Defaults and Environment Variables
	cfg.Interface = getEnv("NEARBY_INTERFACE", "wlan0")
	cfg.PcapPath = getEnv("NEARBY_PCAP", "")
	cfg.Duration = getEnvDuration("NEARBY_DURATION", 15*time.Second)
	cfg.ScaleDuration = getEnvBool("NEARBY_SCALE_DURATION", false)
	cfg.PeopleMode = getEnvBool("NEARBY_PEOPLE", false)
	cfg.OUIFile = getEnv("NEARBY_OUI_FILE", "data/oui.txt")
	cfg.OUIDatabase = getEnv("NEARBY_OUI_DB", "")
	cfg.Output = getEnv("NEARBY_OUTPUT", "")
	cfg.Format = getEnv("NEARBY_FORMAT", export.FormatJSON)
	cfg.Addr = getEnv("NEARBY_ADDR", "")
	cfg.StaticDir = getEnv("NEARBY_STATIC", "./static")
	cfg.Trace = getEnvBool("NEARBY_TRACE", false)
	channels := getEnv("NEARBY_CHANNELS", "")

	// Command Line Flags (Override Env)
	fs.StringVar(&cfg.Interface, "i", cfg.Interface, "Wireless interface to capture on")
	fs.StringVar(&cfg.PcapPath, "pcap", cfg.PcapPath, "Replay a capture file instead of a live interface")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "How long to capture")
	fs.BoolVar(&cfg.ScaleDuration, "scale-duration", cfg.ScaleDuration, "Multiply -duration by the number of hopped channels")
	fs.BoolVar(&cfg.PeopleMode, "people", cfg.PeopleMode, "Detect nearby phones instead of mapping access points")
	fs.StringVar(&cfg.OUIFile, "oui", cfg.OUIFile, "IEEE OUI registry text file")
	fs.StringVar(&cfg.OUIDatabase, "oui-db", cfg.OUIDatabase, "SQLite OUI registry (optional)")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "Export path (empty writes to stdout)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Export format: "+strings.Join(export.Formats(), ", "))
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Visualization server address (empty to disable)")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory served at / by the visualization server")
	fs.StringVar(&channels, "channels", channels, "Comma separated channels to hop (default: interface capabilities)")
	fs.IntVar(&cfg.DwellTime, "dwell", 300, "Channel dwell time in milliseconds")
	fs.BoolVar(&cfg.NoHop, "no-hop", false, "Stay on the current channel")
	fs.BoolVar(&cfg.NoMonitor, "no-monitor", false, "Do not switch the interface to monitor mode")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Print OpenTelemetry traces to stderr")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if cfg.Channels, err = ParseChannels(channels); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := export.ForFormat(c.Format); err != nil {
		return err
	}
	if c.Format == export.FormatSQLite && c.Output == "" {
		return errors.New("-format sqlite needs -o")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.DwellTime <= 0 {
		return fmt.Errorf("dwell must be positive, got %dms", c.DwellTime)
	}
	if c.Live() {
		if c.Interface == "" {
			return errors.New("no interface given")
		}
		if !domain.IsValidInterface(c.Interface) {
			return fmt.Errorf("invalid interface name %q", c.Interface)
		}
	}
	return nil
}

// ParseChannels parses a comma separated channel list. Empty input gives nil.
func ParseChannels(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ch, err := strconv.Atoi(p)
		if err != nil || ch <= 0 || ch > 196 {
			return nil, fmt.Errorf("invalid channel %q", p)
		}
		out = append(out, ch)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
