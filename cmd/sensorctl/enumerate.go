package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haleqiu/zed-open-capture/sensorcapture"
)

var enumerateCmd = &cobra.Command{
	Use:     "enumerate",
	Aliases: []string{"list", "ls"},
	Short:   "list eligible devices found on the bus",
	Example: "  sensorctl enumerate",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig(cmd)

		sc := sensorcapture.New()
		serials, err := sc.Enumerate()
		if err != nil {
			log.Errorf("sensorctl: enumerate failed: %v", err)
			return err
		}
		for _, sn := range serials {
			fmt.Println(sn)
		}
		return nil
	},
}
