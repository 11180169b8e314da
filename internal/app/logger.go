package app

import "go.uber.org/zap"

// NewLogger returns a production logger when APP_ENV is production.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
