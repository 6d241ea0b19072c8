package config

import (
	"os"
	"strconv"
	"time"
)

type EnvVarName string // should be caps with underscore

const (
	mixpanelAPIURL EnvVarName = "MIXPANEL_API_URL"
	mixpanelToken  EnvVarName = "MIXPANEL_TOKEN"
	requestTimeout EnvVarName = "MIXPANEL_TIMEOUT"
	batchLimit     EnvVarName = "MIXPANEL_BATCH_CONCURRENCY"
	sentryURL      EnvVarName = "MIXPANEL_SENTRY_URL"
	debugHTTP      EnvVarName = "MIXPANEL_DEBUG_HTTP"
	collectorAddr  EnvVarName = "MIXPANEL_COLLECTOR_ADDR"
)

type ConstantsConfig struct{}

func NewConstants() *ConstantsConfig {
	return &ConstantsConfig{}
}

func (c ConstantsConfig) GetMixpanelAPIURL() string {
	return getEnvOrDefault(mixpanelAPIURL, "https://api.mixpanel.com")
}

// GetToken is the default project token, "" when unset.
func (c ConstantsConfig) GetToken() string {
	return getEnvOrDefault(mixpanelToken, "")
}

// GetRequestTimeout returns 0 (no timeout) when unset or unparsable.
func (c ConstantsConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(getEnvOrDefault(requestTimeout, "0s"))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c ConstantsConfig) GetBatchConcurrency() int {
	n, err := strconv.Atoi(getEnvOrDefault(batchLimit, "8"))
	if err != nil || n <= 0 {
		return 8
	}
	return n
}

func (c ConstantsConfig) GetSentryURL() string {
	return getEnvOrDefault(sentryURL, "")
}

func (c ConstantsConfig) GetDebugHTTP() bool {
	on, err := strconv.ParseBool(getEnvOrDefault(debugHTTP, "false"))
	if err != nil {
		return false
	}
	return on
}

func (c ConstantsConfig) GetCollectorAddr() string {
	return getEnvOrDefault(collectorAddr, "localhost:3000")
}

func getEnvOrDefault(envVarName EnvVarName, defaultVal string) string {
	val := os.Getenv(string(envVarName))
	if val == "" {
		return defaultVal
	}
	return val
}

var GlobalConfig = NewConstants()

type AllConfig interface {
	GetMixpanelAPIURL() string
	GetToken() string
	GetRequestTimeout() time.Duration
	GetBatchConcurrency() int
	GetDebugHTTP() bool
}

var _ AllConfig = ConstantsConfig{}
