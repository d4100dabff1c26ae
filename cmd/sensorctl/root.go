package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haleqiu/zed-open-capture/internal/cliconfig"
)

var rootCmd = &cobra.Command{
	Use:   "sensorctl",
	Short: "diagnostic CLI for the sensor acquisition core",
	Long:  "sensorctl enumerates, streams, and monitors the IMU/mag/env/camera-temp sensor stream over USB HID.",
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "configuration file path")
	cmd.Flags().Int("serial", 0, "device serial number, 0 to auto-pick")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
	cmd.Flags().Int("poll-millis", 200, "per-sample poll timeout in milliseconds")
}

func loadConfig(cmd *cobra.Command) cliconfig.Desc {
	desc := cliconfig.NewDesc()
	if err := desc.Parse(cmd); err != nil {
		log.Warnf("sensorctl: config parse failed, using defaults: %v", err)
	}
	desc.PostParse()
	return desc
}

func Execute() {
	addCommonFlags(enumerateCmd)
	rootCmd.AddCommand(enumerateCmd)

	addCommonFlags(streamCmd)
	rootCmd.AddCommand(streamCmd)

	addCommonFlags(monitorCmd)
	rootCmd.AddCommand(monitorCmd)

	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
