package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haleqiu/zed-open-capture/internal/cliconfig"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "write a sensorctl configuration template",
	Long:    "init writes a YAML configuration template with the default serial/debug/poll-interval settings.\nWith --print it writes to stdout instead of a file.",
	Example: "  sensorctl init --print\n  sensorctl init -o /path/to/config.yaml -y",
	RunE: func(cmd *cobra.Command, args []string) error {
		printFlag, _ := cmd.Flags().GetBool("print")
		outputPath, _ := cmd.Flags().GetString("output")
		overwrite, _ := cmd.Flags().GetBool("yes")

		opt := cliconfig.NewOpt()

		if printFlag {
			buf, err := yaml.Marshal(opt)
			if err != nil {
				return err
			}
			fmt.Println(string(buf))
			return nil
		}

		if err := cliconfig.DumpConfig(opt, outputPath, overwrite); err != nil {
			log.Errorf("sensorctl: %v", err)
			return err
		}
		log.Infof("sensorctl: wrote config template to %s", outputPath)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("print", false, "print config to stdout instead of writing a file")
	initCmd.Flags().BoolP("yes", "y", false, "overwrite an existing file")
	initCmd.Flags().StringP("output", "o", cliconfig.DefaultConfigPath, "output path")
}
