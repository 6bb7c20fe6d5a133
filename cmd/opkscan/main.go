package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/opkscan/internal/config"
	"github.com/provide-io/opkscan/pkg/logging"
)

const version = "0.1.0"

var (
	configPath  string
	logLevel    string
	homePath    string
	platform    string
	anyPlatform bool
	versionFlag bool
	rootCmd     *cobra.Command
)

func getBuildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion() {
	fmt.Printf("opkscan %s\n", version)
	fmt.Printf("Built: %s\n", getBuildTimestamp())
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "opkscan",
		Short: "Install OPK packages into the launcher menu",
		Long: `opkscan finds OPK packages on internal storage and removable media and
writes a launch entry into the menu sections for every metadata document
that targets this device.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				printVersion()
				return nil
			}
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.toml (default $XDG_CONFIG_HOME/opkscan/config.toml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&homePath, "home", "", "Home path holding the menu sections")
	flags.StringVar(&platform, "platform", "", "Platform identifier of this device")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(newScanCmd(), newInfoCmd(), newListCmd(), newConfigCmd())
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration with the changed global flags, and
// any extra overrides, on top.
func loadConfig(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("home") {
		overrides[config.KeyHomePath] = homePath
	}
	if flags.Changed("platform") {
		overrides[config.KeyPlatform] = platform
	}
	if flags.Changed("log-level") {
		overrides[config.KeyLogLevel] = logLevel
	}
	for k, v := range extra {
		overrides[k] = v
	}

	return config.NewProvider().Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: configPath,
		Overrides:      overrides,
	})
}

func newLogger(cfg *config.Config) hclog.Logger {
	return logging.NewLogger("opkscan", logging.ResolveLevel(logLevel, cfg.LogLevel), os.Stderr)
}
