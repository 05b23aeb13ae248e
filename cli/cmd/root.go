package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vigilo-home/vigilo/alarm"
	"github.com/vigilo-home/vigilo/auth"
	"github.com/vigilo-home/vigilo/camera"
	"github.com/vigilo-home/vigilo/cli/internal/profile"
	"github.com/vigilo-home/vigilo/common/config"
	"github.com/vigilo-home/vigilo/common/logging"
	"github.com/vigilo-home/vigilo/installations"
	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

var rootCmd = &cobra.Command{
	Use:   "vigilo",
	Short: "Securitas Direct alarm panel CLI",
	Long: `vigilo controls a Securitas Direct alarm installation from the
terminal: log in, list installations, arm and disarm the panel, read the
alarm state, and request camera images.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
	rootCmd.PersistentFlags().StringP("installation", "i", "", "installation number (default from profile)")
}

// app bundles the wired clients a command needs.
type app struct {
	cfg     *config.Config
	profile *profile.Profile

	sessions *session.Store
	files    *session.FileStore
	auth     *auth.Client
	installs *installations.Client
	alarm    *alarm.Client
	camera   *camera.Client
}

// newApp loads configuration and wires the client stack. Every command goes
// through here so flags, env and config files behave identically.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(log)

	files, err := session.NewFileStore(cfg.Session.Dir)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.Session.TTL)
	store.SetLocale(cfg.Session.Lang, "")
	if err := store.AttachFile(files); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	prof, err := profile.Load(files.Dir())
	if err != nil {
		log.Warn("could not load CLI profile", "error", err)
		prof = &profile.Profile{}
	}

	api := transport.NewClient(cfg.API.URL, cfg.API.Timeout)

	var cache installations.Cache
	if cfg.Cache.Backend == "redis" {
		rc, err := installations.NewRedisCache(cfg.Redis.URL, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		cache = rc
	} else {
		cache = installations.NewMemoryCache(cfg.Cache.TTL)
	}

	installs := installations.NewClient(api, store, cache, log)

	alarmOpts := alarm.Options{
		MaxAttempts:       cfg.Poll.MaxAttempts,
		Interval:          cfg.Poll.Interval,
		StatusMaxAttempts: cfg.Poll.StatusMaxAttempts,
	}
	cameraOpts := camera.Options{
		MaxAttempts: cfg.Camera.MaxAttempts,
		Interval:    cfg.Camera.Interval,
	}

	return &app{
		cfg:      cfg,
		profile:  prof,
		sessions: store,
		files:    files,
		auth:     auth.NewClient(api, store, files, log),
		installs: installs,
		alarm:    alarm.NewClient(api, store, installs, alarmOpts, log),
		camera:   camera.NewClient(api, store, installs, cameraOpts, log),
	}, nil
}

// installationID resolves the target installation from the flag or the
// saved profile default.
func (a *app) installationID(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString("installation")
	if id == "" {
		id = a.profile.DefaultInstallation
	}
	if id == "" {
		return "", fmt.Errorf("no installation given: pass --installation or set a default with 'vigilo installations use'")
	}
	return id, nil
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}
