package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/platinummonkey/gearbox/pkg/cache"
	"github.com/platinummonkey/gearbox/pkg/compiler"
	"github.com/platinummonkey/gearbox/pkg/config"
	"github.com/platinummonkey/gearbox/pkg/generate"
)

func newGenerateCommand() *Command {
	cmd := &Command{
		Name:        "generate",
		Description: "Compile .proto schemas, skipping when inputs are unchanged",
	}

	cmd.Run = func(args []string) error {
		flags := flag.NewFlagSet("generate", flag.ExitOnError)
		configPath := flags.String("config", "", "Path to a gearbox.yaml configuration file")
		sourceDir := flags.String("source", "", "Schema source directory (overrides config)")
		protocPath := flags.String("protoc", "", "Schema compiler executable (overrides config)")
		force := flags.Bool("force", false, "Recompile even when inputs are unchanged")
		if err := flags.Parse(args); err != nil {
			return err
		}

		cfg, err := loadConfig(*configPath, *sourceDir, *protocPath)
		if err != nil {
			return err
		}

		store, err := cache.NewStore(cfg.CacheDir)
		if err != nil {
			return err
		}
		if *force {
			if err := store.Invalidate(cfg.CacheNamespace); err != nil {
				return err
			}
		}

		task := generate.NewTask(cfg, store, compiler.NewExecInvoker())
		result, err := task.Run(context.Background())
		if err != nil {
			return err
		}

		if result.CacheHit {
			fmt.Printf("Up to date: %d generated files\n", len(result.GeneratedFiles))
		} else {
			fmt.Printf("Generated %d files in %s\n", len(result.GeneratedFiles), result.Duration.Round(timePrecision))
		}
		for _, dep := range cfg.Dependencies() {
			fmt.Printf("Library dependency: %s\n", dep)
		}
		return nil
	}

	return cmd
}

// loadConfig loads the configuration and applies command-line overrides
func loadConfig(path, sourceDir, protocPath string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if sourceDir != "" {
		// Keep the derived include path pointing at the overridden source dir
		for i, include := range cfg.IncludePaths {
			if include == cfg.SourceDir {
				cfg.IncludePaths[i] = sourceDir
			}
		}
		cfg.SourceDir = sourceDir
	}
	if protocPath != "" {
		cfg.ProtocPath = protocPath
	}
	return cfg, nil
}
