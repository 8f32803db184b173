package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/gearbox/pkg/unpack"
)

func newUnpackCommand() *Command {
	cmd := &Command{
		Name:        "unpack",
		Description: "Extract .proto files from dependency archives into the external include directory",
	}

	cmd.Run = func(args []string) error {
		flags := flag.NewFlagSet("unpack", flag.ExitOnError)
		configPath := flags.String("config", "", "Path to a gearbox.yaml configuration file")
		if err := flags.Parse(args); err != nil {
			return err
		}

		cfg, err := loadConfig(*configPath, "", "")
		if err != nil {
			return err
		}

		archives, err := cfg.ResolveArchives()
		if err != nil {
			return err
		}

		unpacked, err := unpack.NewUnpacker(nil).Extract(archives, cfg.ExternalIncludeDir)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d proto files from %d archives into %s\n",
			len(unpacked.Files), len(archives), unpacked.Dir)
		return nil
	}

	return cmd
}
