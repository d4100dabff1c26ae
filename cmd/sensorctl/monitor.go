package main

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haleqiu/zed-open-capture/sensorcapture"
)

var monitorTableHeader = []string{"modality", "timestamp_ns", "a", "b", "c"}

func newMonitorTable() *widgets.Table {
	table := widgets.NewTable()
	table.Rows = [][]string{
		monitorTableHeader,
		{"imu", "-", "-", "-", "-"},
		{"mag", "-", "-", "-", "-"},
		{"env", "-", "-", "-", "-"},
		{"camtemp", "-", "-", "-", "-"},
	}
	table.ColumnWidths = []int{10, 20, 14, 14, 14}
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.TextAlignment = ui.AlignRight
	table.Title = "sensorctl monitor"
	table.SetRect(0, 0, 76, 8)
	return table
}

func runMonitorLoop(sc sensorcapture.SensorCapture, table *widgets.Table, timeout time.Duration) {
	for {
		if imu, ok := sc.LastIMU(timeout); ok {
			table.Rows[1] = []string{"imu", fmt.Sprintf("%d", imu.TimestampNs),
				fmt.Sprintf("%.2f", imu.Accel.X), fmt.Sprintf("%.2f", imu.Accel.Y), fmt.Sprintf("%.2f", imu.Accel.Z)}
		}
		if mag, ok := sc.LastMag(0); ok {
			table.Rows[2] = []string{"mag", fmt.Sprintf("%d", mag.TimestampNs),
				fmt.Sprintf("%.2f", mag.Field.X), fmt.Sprintf("%.2f", mag.Field.Y), fmt.Sprintf("%.2f", mag.Field.Z)}
		}
		if env, ok := sc.LastEnv(0); ok {
			table.Rows[3] = []string{"env", fmt.Sprintf("%d", env.TimestampNs),
				fmt.Sprintf("%.2f", env.TempC), fmt.Sprintf("%.2f", env.PressureHPa), fmt.Sprintf("%.2f", env.HumidityPct)}
		}
		if cam, ok := sc.LastCamTemp(0); ok {
			table.Rows[4] = []string{"camtemp", fmt.Sprintf("%d", cam.TimestampNs),
				fmt.Sprintf("%.2f", cam.LeftC), fmt.Sprintf("%.2f", cam.RightC), "-"}
		}
		ui.Render(table)
	}
}

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Short:   "render a live terminal dashboard of the last sample per modality",
	Example: "  sensorctl monitor --serial 1002",
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := loadConfig(cmd)

		sc := sensorcapture.New()
		if err := sc.Init(desc.Opt.ResolveSerial()); err != nil {
			log.Errorf("sensorctl: init failed: %v", err)
			return err
		}
		defer func() {
			if err := sc.Reset(); err != nil {
				log.Warnf("sensorctl: reset failed: %v", err)
			}
		}()

		if err := ui.Init(); err != nil {
			log.Errorf("sensorctl: failed to initialize termui: %v", err)
			return err
		}
		defer ui.Close()

		table := newMonitorTable()
		ui.Render(table)

		timeout := time.Duration(desc.Opt.PollMillis) * time.Millisecond
		go runMonitorLoop(sc, table, timeout)

		uiEvents := ui.PollEvents()
		for e := range uiEvents {
			switch e.ID {
			case "q", "<C-c>":
				return nil
			}
		}
		return nil
	},
}
