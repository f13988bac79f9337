package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Setup initializes the database, the music directory, and a config file
// when none exists.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	musicDir := filepath.Join(config.Storage.DataDir, "music")
	if err := os.MkdirAll(musicDir, 0o755); err != nil {
		return fmt.Errorf("failed to create music directory: %w", err)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	store := library.New(config, musicDir, r.logger)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to initialize library: %w", err)
	}
	defer store.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Library ready at %s\n", config.Database.Path)
	r.writePlain("✓ Music directory at %s\n", musicDir)
	return nil
}
