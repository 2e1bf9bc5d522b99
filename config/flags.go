package config

import "flag"

// parseFlags overlays command-line flags on config.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g. ":3000")
//	-driver string     database driver, "sqlite3" or "pgx"
//	-d string          database DSN
//	-s string          session token secret key
//	-courses string    course catalog JSON file
//	-secure-cookie     mark the session cookie Secure
//	-log-level string  log level
//	-trust-proxy       derive client addresses from proxy headers
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("portal", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (sqlite3 or pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CoursesFile, "courses", config.CoursesFile, "course catalog JSON file")
	fs.BoolVar(&config.CookieSecure, "secure-cookie", config.CookieSecure, "mark the session cookie Secure")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.BoolVar(&config.TrustProxy, "trust-proxy", config.TrustProxy, "derive client addresses from X-Forwarded-For / X-Real-IP")

	return fs.Parse(args)
}
