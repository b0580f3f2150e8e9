package cli

import (
	"errors"
	"flag"
	"io"
	"strings"

	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/config"
)

// ErrMissingPlatform is returned when -platform is not given.
var ErrMissingPlatform = errors.New("-platform is required")

// CommonFlags are shared by every command.
type CommonFlags struct {
	ConfigPath string
	Store      string
	Verbose    bool
}

// SyncFlags are the flags of the sync command.
type SyncFlags struct {
	CommonFlags
	Platform    string
	Incremental bool
	MaxPages    int
}

// ReportFlags are the flags of the report command.
type ReportFlags struct {
	CommonFlags
	Platform string
	Start    string
	End      string
	Range    string
	JSON     bool
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	CommonFlags
	Port int
}

func (c *CommonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", "config.yaml", "Configuration file path (environment is used when missing)")
	fs.StringVar(&c.Store, "store", "", "Storage backend override: sqlite, pebble or memory")
	fs.BoolVar(&c.Verbose, "verbose", false, "Verbose output")
}

// Load reads the config file (or the environment) and applies the store
// override.
func (c CommonFlags) Load() *config.Config {
	cfg := config.LoadOrEnv_WithPath(c.ConfigPath)
	if c.Store != "" && c.Store != cfg.Storage.Backend {
		cfg.Storage.Backend = c.Store
		cfg.Storage.Path = ""
		cfg.ApplyDefaults()
	}
	return cfg
}

// ParseSyncFlags parses sync flags from args.
func ParseSyncFlags(args []string, output io.Writer) (SyncFlags, error) {
	var flags SyncFlags
	fs := newFlagSet("sync", output)
	flags.register(fs)
	fs.StringVar(&flags.Platform, "platform", "", "Platform to sync: zomato or swiggy")
	fs.BoolVar(&flags.Incremental, "incremental", false, "Stop at the first page of already stored orders")
	fs.IntVar(&flags.MaxPages, "max-pages", 0, "Page ceiling for this session (0 = platform default)")
	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	flags.Platform = normalizePlatform(flags.Platform)
	if flags.Platform == "" {
		return flags, ErrMissingPlatform
	}
	return flags, nil
}

// ToSyncRequest converts SyncFlags to a service request.
func (f SyncFlags) ToSyncRequest() service.SyncRequest {
	return service.SyncRequest{
		Platform:    f.Platform,
		Incremental: f.Incremental,
		MaxPages:    f.MaxPages,
	}
}

// ParseReportFlags parses report flags from args.
func ParseReportFlags(args []string, output io.Writer) (ReportFlags, error) {
	var flags ReportFlags
	fs := newFlagSet("report", output)
	flags.register(fs)
	fs.StringVar(&flags.Platform, "platform", "", "Platform to report on: zomato or swiggy")
	fs.StringVar(&flags.Start, "start", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&flags.End, "end", "", "End date (YYYY-MM-DD)")
	fs.StringVar(&flags.Range, "range", "all", "Quick range: all, 7, 30, 90 or 365 days")
	fs.BoolVar(&flags.JSON, "json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	flags.Platform = normalizePlatform(flags.Platform)
	if flags.Platform == "" {
		return flags, ErrMissingPlatform
	}
	return flags, nil
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags(args []string, output io.Writer) (ServeFlags, error) {
	var flags ServeFlags
	fs := newFlagSet("api", output)
	flags.register(fs)
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = config value)")
	err := fs.Parse(args)
	return flags, err
}

func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	return fs
}

func normalizePlatform(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
