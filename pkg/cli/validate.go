package cli

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/bufbuild/protocompile"

	"github.com/platinummonkey/gearbox/pkg/protogen"
)

func newValidateCommand() *Command {
	cmd := &Command{
		Name:        "validate",
		Description: "Syntax-check .proto schemas without invoking the compiler",
	}

	cmd.Run = func(args []string) error {
		flags := flag.NewFlagSet("validate", flag.ExitOnError)
		configPath := flags.String("config", "", "Path to a gearbox.yaml configuration file")
		sourceDir := flags.String("source", "", "Schema source directory (overrides config)")
		if err := flags.Parse(args); err != nil {
			return err
		}

		cfg, err := loadConfig(*configPath, *sourceDir, "")
		if err != nil {
			return err
		}

		protoFiles, err := protogen.ScanProtoFiles(cfg.SourceDir)
		if err != nil {
			return err
		}
		if len(protoFiles) == 0 {
			fmt.Println("No schema files found")
			return nil
		}

		// protocompile resolves file names against import paths, so
		// schemas are referenced relative to the source directory
		names := make([]string, len(protoFiles))
		for i, path := range protoFiles {
			rel, err := filepath.Rel(cfg.SourceDir, path)
			if err != nil {
				return err
			}
			names[i] = filepath.ToSlash(rel)
		}

		parser := protocompile.Compiler{
			Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
				ImportPaths: cfg.IncludePaths,
			}),
		}
		if _, err := parser.Compile(context.Background(), names...); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}

		fmt.Printf("Validated %d schema files\n", len(protoFiles))
		return nil
	}

	return cmd
}
