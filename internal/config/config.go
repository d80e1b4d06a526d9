package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time is used for duration-typed settings
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Gateway and signature secrets are supplied
// here and nowhere else; nothing in the codebase hard-codes them.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTSecret     string // secret used to sign admin access tokens
    AccessTTLMin  int    // admin access token time-to-live in minutes
    AdminUser     string // admin login username
    AdminPassHash string // bcrypt hash of the admin password

    SecretKey string // payment gateway secret key (signature input)

    GatewayBaseURL string        // upstream booking gateway base URL
    GatewayUser    string        // guest credential for gateway token issuance
    GatewayPass    string        // guest credential for gateway token issuance
    GatewayTimeout time.Duration // timeout applied to every gateway call

    SweepWindowStart int  // scan window start parameter passed to the gateway
    SweepWindowSize  int  // scan window size parameter passed to the gateway
    SweepStaleMin    int  // minutes before a locked booking counts as stale
    SweepAutoRelease bool // whether the sweeper calls release itself
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Sweep parameters
// have defaults matching the production polling window.
func Load() Config {
    return Config{
        Env:  must("APP_ENV"),
        Port: must("APP_PORT"),

        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"), // empty allowed
        DBHost: must("DB_HOST"),
        DBPort: must("DB_PORT"),
        DBName: must("DB_NAME"),

        JWTSecret:     must("JWT_SECRET"),
        AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
        AdminUser:     must("ADMIN_USER"),
        AdminPassHash: must("ADMIN_PASS_HASH"),

        SecretKey: must("SECRET_KEY"),

        GatewayBaseURL: must("GATEWAY_BASE_URL"),
        GatewayUser:    must("GATEWAY_USER"),
        GatewayPass:    must("GATEWAY_PASS"),
        GatewayTimeout: envDur("GATEWAY_TIMEOUT", 10*time.Second),

        SweepWindowStart: envInt("SWEEP_WINDOW_START", 2),
        SweepWindowSize:  envInt("SWEEP_WINDOW_SIZE", 50),
        SweepStaleMin:    envInt("SWEEP_STALE_MIN", 10),
        SweepAutoRelease: envBool("SWEEP_AUTO_RELEASE", true),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
