package satprop

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _satpropconfig{}
)

// _satpropconfig is a "hidden" struct, just use `satpropConfig`.
type _satpropconfig struct {
	gravityName string
	verifyDir   string
}

// satpropConfig returns the library configuration. Configuration is entirely
// optional: without SATPROP_CONFIG (or with an unreadable conf.toml) the
// compiled defaults apply.
func satpropConfig() _satpropconfig {
	if cfgLoaded {
		return config
	}
	config = _satpropconfig{gravityName: "72"}
	cfgLoaded = true
	confPath := os.Getenv("SATPROP_CONFIG")
	if confPath == "" {
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "satprop: ignoring %s/conf.toml: %s\n", confPath, err)
		return config
	}
	if name := viper.GetString("gravity.model"); name != "" {
		if _, err := GravityModelFromString(name); err != nil {
			fmt.Fprintf(os.Stderr, "satprop: %s, keeping default\n", err)
		} else {
			config.gravityName = name
		}
	}
	config.verifyDir = viper.GetString("verify.directory")
	return config
}

// DefaultGravityModel returns the gravity model new records are created with
// when none is selected explicitly. This is the modern WGS-72 set, not the
// legacy one, matching the reference propagator's observed default; a conf
// file may override it.
func DefaultGravityModel() GravityModel {
	g, err := GravityModelFromString(satpropConfig().gravityName)
	if err != nil {
		return WGS72
	}
	return g
}
