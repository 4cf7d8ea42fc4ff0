// Package config loads an optional YAML config file and applies it to a
// command's flags, letting a config file supply values the user didn't
// pass explicitly on the command line.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/coreos/pcompress/yamlutil"
)

// Apply reads the YAML file at path and fills in any flag in fs that
// wasn't explicitly set on the command line. A missing path is not an
// error; it means no config file was requested.
func Apply(fs *pflag.FlagSet, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yamlutil.SetFlagsFromYaml(fs, raw); err != nil {
		return fmt.Errorf("config: applying %s: %w", path, err)
	}
	return nil
}
