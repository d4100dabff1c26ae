package cliconfig

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where init writes a config template absent an
// explicit output path.
var DefaultConfigPath = path.Join(DefaultConfigSearchPath0, DefaultConfigName+".yaml")

// DumpConfig marshals opt to YAML and writes it to outputPath, creating
// its parent directory if needed. If the file already exists and
// overwrite is false, it returns an error instead of clobbering it.
func DumpConfig(opt Opt, outputPath string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("cliconfig: %s already exists, pass --yes to overwrite", outputPath)
		}
	}

	parent := path.Dir(outputPath)
	if _, err := os.Stat(parent); os.IsNotExist(err) {
		if err := os.MkdirAll(parent, 0700); err != nil {
			return fmt.Errorf("cliconfig: create %s: %w", parent, err)
		}
	}

	buf, err := yaml.Marshal(opt)
	if err != nil {
		return fmt.Errorf("cliconfig: marshal config: %w", err)
	}

	if err := os.WriteFile(outputPath, buf, 0600); err != nil {
		return fmt.Errorf("cliconfig: write %s: %w", outputPath, err)
	}
	return nil
}
