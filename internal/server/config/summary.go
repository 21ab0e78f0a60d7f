package config

// Summary flattens the settings worth logging at startup into key/value
// pairs for a logger call. File paths of TLS material are reduced to
// whether TLS is on.
func Summary(cfg *ServerConfig) []any {
	return []any{
		"addr", cfg.Server.HTTP.Addr,
		"tls", cfg.Server.HTTP.TLSCert != "",
		"origins", cfg.Server.HTTP.Origins,
		"http_rate", cfg.Server.HTTP.RateLimit,
		"relay_queue", cfg.Relay.Queue,
		"relay_rate", cfg.Relay.Rate,
		"relay_max_frame", cfg.Relay.MaxFrame,
		"ping", cfg.Relay.Ping,
		"reaper_idle", cfg.Reaper.Idle,
		"reaper_interval", cfg.Reaper.Interval,
		"bcrypt_cost", cfg.Security.Cost,
		"tickets", cfg.Security.Tickets,
		"ticket_ttl", cfg.Security.TicketTTL,
		"engine", cfg.Replica.Engine,
		"log_level", cfg.Log.Level,
	}
}
