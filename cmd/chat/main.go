package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/RichardoC/padchat/internal/backend"
	"github.com/RichardoC/padchat/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "chat",
	Short:         "Chat with a padchat server from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(viper.GetString("config"))
	},
	RunE: runChat,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $XDG_CONFIG_HOME/padchat/config.yaml)")
	flags.String("base-url", "http://localhost:8100", "padchat server URL")
	flags.Duration("timeout", 0, "per request timeout, 0 for none")
	flags.String("log-file", defaultLogFile(), "where to write logs")
	flags.String("log-level", "info", "debug, info, warn or error")

	rootCmd.Flags().Int("breakpoint", tui.DefaultBreakpoint, "terminal width at or below which the sidebar becomes a drawer")
	rootCmd.Flags().Int("max-input-height", tui.DefaultMaxInputHeight, "maximum height of the message input, in lines")

	cobra.CheckErr(viper.BindPFlags(flags))
	cobra.CheckErr(viper.BindPFlags(rootCmd.Flags()))

	rootCmd.AddCommand(exportCmd)
}

func loadConfig(path string) error {
	viper.SetEnvPrefix("PADCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "padchat"))
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "padchat", "chat.log")
}

func newClient(logger *zap.Logger) *backend.Client {
	return backend.New(viper.GetString("base-url"), logger,
		backend.WithTimeout(viper.GetDuration("timeout")))
}

func runChat(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("chat needs an interactive terminal; use 'chat export' to write a transcript")
	}

	logger, err := newLogger(viper.GetString("log-file"), viper.GetString("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting chat", zap.String("baseURL", viper.GetString("base-url")))
	return tui.Run(ctx, newClient(logger), logger, tui.Options{
		Breakpoint:     viper.GetInt("breakpoint"),
		MaxInputHeight: viper.GetInt("max-input-height"),
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
