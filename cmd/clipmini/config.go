package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmini/internal/ipc"
	"go.klb.dev/clipmini/internal/logging"
	"go.klb.dev/clipmini/internal/prefs"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPMINI_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPMINI_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipmini")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipmini/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clipmini"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPMINI")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addPrefsFlag adds the --prefs flag naming the preferences file.
func addPrefsFlag(cmd *cobra.Command) {
	cmd.Flags().String("prefs", prefs.DefaultPath(), "preferences file (history size, shortcuts)")
}

// addClientFlags adds the flags shared by commands that talk to the daemon.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("socket", ipc.SocketPath(), "daemon socket path")
	cmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	addConfigFlag(cmd)
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
