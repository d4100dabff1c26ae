package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haleqiu/zed-open-capture/sensorcapture"
)

var streamCmd = &cobra.Command{
	Use:     "stream",
	Short:   "open a device and print decoded samples to stdout until interrupted",
	Example: "  sensorctl stream --serial 1002",
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

		major, minor := sc.FirmwareVersion()
		log.Infof("sensorctl: streaming from serial=%d fw=%d.%d", sc.SerialNumber(), major, minor)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		timeout := time.Duration(desc.Opt.PollMillis) * time.Millisecond
		for {
			select {
			case <-sigCh:
				return nil
			default:
			}
			if imu, ok := sc.LastIMU(timeout); ok {
				fmt.Printf("imu  ts=%d accel=(%.3f,%.3f,%.3f) gyro=(%.3f,%.3f,%.3f) temp=%.2fC sync=%v\n",
					imu.TimestampNs, imu.Accel.X, imu.Accel.Y, imu.Accel.Z,
					imu.Gyro.X, imu.Gyro.Y, imu.Gyro.Z, imu.TempC, imu.Sync)
			}
			if mag, ok := sc.LastMag(0); ok {
				fmt.Printf("mag  ts=%d field=(%.3f,%.3f,%.3f)\n", mag.TimestampNs, mag.Field.X, mag.Field.Y, mag.Field.Z)
			}
			if env, ok := sc.LastEnv(0); ok {
				fmt.Printf("env  ts=%d temp=%.2fC press=%.2fhPa humid=%.2f%%\n", env.TimestampNs, env.TempC, env.PressureHPa, env.HumidityPct)
			}
			if cam, ok := sc.LastCamTemp(0); ok {
				fmt.Printf("cam  ts=%d left=%.2fC right=%.2fC\n", cam.TimestampNs, cam.LeftC, cam.RightC)
			}
		}
	},
}
