// Package config loads the driver-level settings that sit outside the
// solver's own parameter map: data directories, worker count, and the log
// and save cycles. These are operational knobs, distinct from the model's
// own pmap-driven scalars, so they get their own YAML document read through
// a private viper instance (mirrors reinforcement.FromYaml's own viper.New()
// rather than the package-global viper instance).
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Driver holds the settings that govern where data lives and how the
// solver reports and checkpoints progress.
type Driver struct {
	DataDir   string `mapstructure:"data_dir"`
	TmpDir    string `mapstructure:"tmp_dir"`
	Workers   int    `mapstructure:"workers"`
	LogCycle  int    `mapstructure:"log_cycle"`
	SaveCycle int    `mapstructure:"save_cycle"`
	LogLevel  string `mapstructure:"log_level"`
}

// Default returns the driver settings used when no config file is present.
func Default() *Driver {
	return &Driver{
		DataDir:   "data",
		TmpDir:    "tmp",
		Workers:   3,
		LogCycle:  10,
		SaveCycle: 100,
		LogLevel:  "info",
	}
}

// FromYaml reads a driver config from a YAML file at path, starting from
// Default() so a partial file only overrides the settings it mentions.
func FromYaml(path string) (*Driver, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	d := Default()
	vp.SetDefault("data_dir", d.DataDir)
	vp.SetDefault("tmp_dir", d.TmpDir)
	vp.SetDefault("workers", d.Workers)
	vp.SetDefault("log_cycle", d.LogCycle)
	vp.SetDefault("save_cycle", d.SaveCycle)
	vp.SetDefault("log_level", d.LogLevel)

	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	if err := vp.Unmarshal(d); err != nil {
		return nil, fmt.Errorf("config: unmarshaling %q: %w", path, err)
	}
	return d, nil
}

// ModelPath returns the on-disk directory a model's checkpoint files live
// under, rooted at the driver's TmpDir.
func (d *Driver) ModelPath(modelName string) string {
	return filepath.Join(d.TmpDir, modelName)
}

// ParamPath returns the on-disk path of a parameter file, rooted at the
// driver's DataDir.
func (d *Driver) ParamPath(name string) string {
	return filepath.Join(d.DataDir, name)
}
