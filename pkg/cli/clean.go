package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/gearbox/pkg/cache"
)

func newCleanCommand() *Command {
	cmd := &Command{
		Name:        "clean",
		Description: "Remove generated output, unpacked dependencies, and the cache record",
	}

	cmd.Run = func(args []string) error {
		flags := flag.NewFlagSet("clean", flag.ExitOnError)
		configPath := flags.String("config", "", "Path to a gearbox.yaml configuration file")
		if err := flags.Parse(args); err != nil {
			return err
		}

		cfg, err := loadConfig(*configPath, "", "")
		if err != nil {
			return err
		}

		store, err := cache.NewStore(cfg.CacheDir)
		if err != nil {
			return err
		}
		if err := store.Invalidate(cfg.CacheNamespace); err != nil {
			return err
		}

		dirs := []string{cfg.ExternalIncludeDir, cfg.GeneratedDir}
		for _, plugin := range cfg.Plugins {
			dirs = append(dirs, plugin.OutputDir)
		}
		for _, dir := range dirs {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}

		fmt.Println("Cleaned generated output and cache record")
		return nil
	}

	return cmd
}
