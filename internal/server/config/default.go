package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr  = "127.0.0.1:4000"
	DefaultRateLimit = 0
	DefaultRateBurst = 20

	DefaultRelayQueue    = 256
	DefaultRelayRate     = 0
	DefaultRelayBurst    = 64
	DefaultRelayMaxFrame = 8 << 20
	DefaultRelayPing     = 30 * time.Second

	DefaultReaperIdle     = 30 * time.Minute
	DefaultReaperInterval = time.Minute

	DefaultBcryptCost = 10
	DefaultTicketTTL  = 5 * time.Minute

	DefaultEngine = "automerge"

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogBackend = "slog"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:      DefaultHTTPAddr,
				Origins:   []string{"*"},
				RateLimit: DefaultRateLimit,
				RateBurst: DefaultRateBurst,
			},
		},
		Relay: RelaySection{
			Queue:    DefaultRelayQueue,
			Rate:     DefaultRelayRate,
			Burst:    DefaultRelayBurst,
			MaxFrame: DefaultRelayMaxFrame,
			Ping:     DefaultRelayPing,
		},
		Reaper: ReaperSection{
			Idle:     DefaultReaperIdle,
			Interval: DefaultReaperInterval,
		},
		Security: SecuritySection{
			Cost:      DefaultBcryptCost,
			Tickets:   true,
			TicketTTL: DefaultTicketTTL,
		},
		Replica: ReplicaSection{
			Engine: DefaultEngine,
		},
		Log: LogSection{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			Backend: DefaultLogBackend,
		},
	}
}
