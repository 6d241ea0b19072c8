package featureflag

import (
	"strings"

	"github.com/brevdev/mixpanel-cli/pkg/cmd/version"
	"github.com/spf13/viper"
)

func IsDev() bool {
	if viper.IsSet("feature.dev") {
		return viper.GetBool("feature.dev")
	}
	return strings.HasPrefix(version.Version, "dev") || version.Version == ""
}

// Debug prints full wrapped errors with call sites instead of the root cause.
func Debug() bool {
	return viper.GetBool("feature.debug")
}

// DebugHTTP turns on resty request/response dumps.
func DebugHTTP() bool {
	return viper.GetBool("feature.debug_http")
}

// SpinnerDisabled is set for non-interactive runs (CI logs).
func SpinnerDisabled() bool {
	return viper.GetBool("feature.no_spinner")
}

func LoadFeatureFlags(path string) error {
	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/mixpanel/")
	viper.AddConfigPath(path)
	viper.SetEnvPrefix("mixpanel")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig() // do not nead to fail if can't find config file

	return nil
}
