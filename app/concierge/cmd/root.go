package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cchalm/task-concierge/internal/config"
)

var (
	cfg    config.Config
	logger zerolog.Logger

	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Conversational task assistant",
	Long: `Task Concierge is a conversational assistant that works through everyday
tasks ("track my order", "cancel a subscription") on the user's behalf. Chats are
driven either by scripted task walkthroughs or by a live generation backend.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo records build-time version information for the version command
func SetVersionInfo(v, commit, built string) {
	version = v
	gitCommit = commit
	buildTime = built
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file; environment variables alone are fine if it is absent
	_ = godotenv.Load()

	cfg = config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
