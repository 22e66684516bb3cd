// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/harunote/harunote-go/core/config"
//
//	type APIConfig struct {
//		BaseURL string        `env:"HARUNOTE_API_BASE_URL,required"`
//		Timeout time.Duration `env:"HARUNOTE_API_TIMEOUT" envDefault:"30s"`
//	}
//
//	func main() {
//		var cfg APIConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 APIConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 APIConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently, so each subsystem can declare its
// own configuration struct without coordinating load order.
package config
