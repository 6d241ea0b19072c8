package mixpanel

import (
	"time"

	"github.com/brevdev/mixpanel-cli/pkg/config"
	"github.com/brevdev/mixpanel-cli/pkg/featureflag"
)

// Config is the client-wide default for every request. Per-request values in
// RequestConfig win over these.
type Config struct {
	BaseURL string
	// Token is the default project token; "" means each request brings its own.
	Token string
	// Timeout bounds a single request; 0 leaves it to the context.
	Timeout          time.Duration
	BatchConcurrency int
	DebugHTTP        bool
}

func ConfigFromEnv(c config.AllConfig) Config {
	return Config{
		BaseURL:          c.GetMixpanelAPIURL(),
		Token:            c.GetToken(),
		Timeout:          c.GetRequestTimeout(),
		BatchConcurrency: c.GetBatchConcurrency(),
		DebugHTTP:        c.GetDebugHTTP() || featureflag.DebugHTTP(),
	}
}
