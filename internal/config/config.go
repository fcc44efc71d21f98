package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// insecureDefaultSecret signs tokens when JWT_SECRET is unset. It exists so
// the server boots in development; any real deployment must override it.
const insecureDefaultSecret = "supersecret_replace_me"

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Database variables are required; everything else
// falls back to a development-friendly default.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign JWTs
	TokenTTLMin   int    // access token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
	AdminEmail    string // bootstrap admin email
	AdminPassword string // bootstrap admin password
}

// Load reads configuration values from environment variables and returns a
// Config. Missing database variables cause the program to exit with a fatal
// log message; the rest use defaults.
func Load() Config {
	return Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          getenv("APP_PORT", "8080"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     getenv("JWT_SECRET", insecureDefaultSecret),
		TokenTTLMin:   getenvInt("TOKEN_TTL_MIN", 24*60), // 1 day default
		BcryptCost:    getenvInt("BCRYPT_COST", 10),
		AdminEmail:    getenv("DEFAULT_ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getenv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an environment variable or a default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value into an integer. Unset
// values fall back to the default; malformed values are fatal.
func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
