// Package cliconfig loads sensorctl's runtime options: viper layered over
// a YAML file, flags, and environment variables, unmarshaled into a plain
// struct.
package cliconfig

import (
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const DefaultAppName = "sensorctl"
const DefaultConfigName = "config"

var userHomeDir, _ = os.UserHomeDir()

var DefaultConfigSearchPath0 = path.Join(userHomeDir, ".config", DefaultAppName)

const DefaultConfigSearchPath1 = "/etc/" + DefaultAppName
const DefaultConfigSearchPath2 = "./"

// Opt holds the options sensorctl commands consult. Serial of 0 means
// "auto-pick the first enumerated device", matching SensorCapture.Init(-1)
// semantics via ResolveSerial.
type Opt struct {
	Serial     int    `yaml:"serial"`
	Debug      bool   `yaml:"debug"`
	PollMillis int    `yaml:"poll_millis"`
	VendorHex  string `yaml:"vendor_hex"`
}

func NewOpt() Opt {
	return Opt{
		Serial:     0,
		Debug:      false,
		PollMillis: 200,
		VendorHex:  "0x2b03",
	}
}

// ResolveSerial maps the zero value of Opt.Serial to SensorCapture's
// "auto-pick" sentinel of -1.
func (o Opt) ResolveSerial() int {
	if o.Serial == 0 {
		return -1
	}
	return o.Serial
}

// Desc bundles the parsed options with the viper instance that produced
// them, mirroring RFMoCapDesc.
type Desc struct {
	Opt   Opt
	Viper *viper.Viper
}

func NewDesc() Desc {
	return Desc{Opt: NewOpt()}
}

func (d *Desc) Parse(cmd *cobra.Command) error {
	v := viper.New()
	v.SetDefault("serial", 0)
	v.SetDefault("debug", false)
	v.SetDefault("poll_millis", 200)
	v.SetDefault("vendor_hex", "0x2b03")

	if cfgFile, err := cmd.Flags().GetString("config"); err == nil && cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if env := os.Getenv("SENSORCTL_CONFIG"); env != "" {
		v.SetConfigFile(env)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigSearchPath0)
		v.AddConfigPath(DefaultConfigSearchPath1)
		v.AddConfigPath(DefaultConfigSearchPath2)
	}

	v.SetEnvPrefix(DefaultAppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("serial", cmd.Flags().Lookup("serial"))
	_ = v.BindPFlag("debug", cmd.Flags().Lookup("debug"))
	_ = v.BindPFlag("poll_millis", cmd.Flags().Lookup("poll-millis"))

	if err := v.ReadInConfig(); err == nil {
		log.Debugln("using config file:", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&d.Opt); err != nil {
		return err
	}
	d.Viper = v
	return nil
}

func (d *Desc) PostParse() {
	if d.Opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
