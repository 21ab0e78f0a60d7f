package config

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/crypto/bcrypt"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyRelay(&cfg.Relay); err != nil {
		return err
	}
	if err := verifyReaper(&cfg.Reaper); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	if cfg.Replica.Engine == "" {
		return errors.New("replica.engine is required")
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if (cfg.HTTP.TLSCert == "") != (cfg.HTTP.TLSKey == "") {
		return errors.New("server.http.tlscert and server.http.tlskey must be set together")
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.ratelimit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		return errors.New("server.http.rateburst must be at least 1")
	}
	return nil
}

func verifyRelay(cfg *RelaySection) error {
	if cfg.Queue < 1 {
		return errors.New("relay.queue must be at least 1")
	}
	if cfg.Rate < 0 {
		return errors.New("relay.rate must not be negative")
	}
	if cfg.Rate > 0 && cfg.Burst < 1 {
		return errors.New("relay.burst must be at least 1")
	}
	if cfg.MaxFrame <= 0 {
		return errors.New("relay.maxframe must be positive")
	}
	if cfg.Ping <= 0 {
		return errors.New("relay.ping must be positive")
	}
	return nil
}

// verifyReaper validates the reaper section.
func verifyReaper(cfg *ReaperSection) error {
	if cfg.Idle <= 0 {
		return errors.New("reaper.idle must be positive")
	}
	if cfg.Interval <= 0 {
		return errors.New("reaper.interval must be positive")
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return fmt.Errorf("security.cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.Tickets && cfg.TicketTTL <= 0 {
		return errors.New("security.ticketttl must be positive when tickets are enabled")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	switch cfg.Backend {
	case "slog", "zap":
	default:
		return fmt.Errorf("log.backend %q is not one of slog, zap", cfg.Backend)
	}
	return nil
}
