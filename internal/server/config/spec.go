package config

import "time"

// ServerConfig is the root configuration for docmesh-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Relay    RelaySection    `koanf:"relay"`
	Reaper   ReaperSection   `koanf:"reaper"`
	Security SecuritySection `koanf:"security"`
	Replica  ReplicaSection  `koanf:"replica"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// Origins lists the allowed CORS and WebSocket origins. "*" allows any.
	Origins []string `koanf:"origins"`

	TLSCert string `koanf:"tlscert"`
	TLSKey  string `koanf:"tlskey"`

	// RateLimit is the per-client-IP request rate (req/s). 0 disables.
	RateLimit float64 `koanf:"ratelimit"`
	RateBurst int     `koanf:"rateburst"`
}

// RelaySection tunes the synchronization relay.
type RelaySection struct {
	// Queue is the number of outbound frames buffered per connection.
	Queue int `koanf:"queue"`

	// Rate is the inbound frame rate per connection (frames/s). 0 disables.
	Rate  float64 `koanf:"rate"`
	Burst int     `koanf:"burst"`

	// MaxFrame is the largest inbound WebSocket message in bytes.
	MaxFrame int64 `koanf:"maxframe"`

	// Ping is the keepalive interval; the pong deadline is twice this.
	Ping time.Duration `koanf:"ping"`
}

// ReaperSection configures idle session eviction.
type ReaperSection struct {
	Idle     time.Duration `koanf:"idle"`
	Interval time.Duration `koanf:"interval"`
}

// SecuritySection configures document access.
type SecuritySection struct {
	// Cost is the bcrypt cost for document passwords.
	Cost int `koanf:"cost"`

	// Tickets requires a join ticket to open a socket on a private document.
	Tickets   bool          `koanf:"tickets"`
	TicketTTL time.Duration `koanf:"ticketttl"`
}

// ReplicaSection selects the replicated state engine.
type ReplicaSection struct {
	Engine string `koanf:"engine"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	Backend string `koanf:"backend"`
	File    string `koanf:"file"`
}
