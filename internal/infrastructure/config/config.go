package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete service configuration. Every key can come from
// config.toml or from a BO_ environment variable, e.g. BO_JWT_ACCESS_SECRET
// for jwt.access_secret.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // postgres or sqlite
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"` // ":memory:" for a throwaway database

	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"` // minutes

	// Statements slower than this are logged at warn.
	SlowQuery time.Duration `mapstructure:"slow_query"`
}

// DSN renders a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// JWTConfig signs access and refresh tokens with separate secrets. The TTLs
// also accept a day count such as "7d".
type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"-"`
	RefreshTTL    time.Duration `mapstructure:"-"`
	Issuer        string        `mapstructure:"issuer"`
	Leeway        time.Duration `mapstructure:"leeway"` // clock skew allowed on exp and nbf
}

// CookieConfig describes the refresh token cookie.
type CookieConfig struct {
	Name     string `mapstructure:"name"`
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"` // strict, lax or none
}

// AuthConfig throttles failed logins per email and client IP.
type AuthConfig struct {
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
}

// BootstrapConfig controls seeding on first start. No admin account is
// created while AdminEmail is empty.
type BootstrapConfig struct {
	SeedPermissions bool   `mapstructure:"seed_permissions"`
	AdminRoleName   string `mapstructure:"admin_role_name"`
	AdminEmail      string `mapstructure:"admin_email"`
	AdminPassword   string `mapstructure:"admin_password"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"` // empty refuses cross-origin calls
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// SwaggerConfig guards /swagger. An empty AllowedIPs admits everyone.
type SwaggerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"` // traces
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
	LogsEnabled       bool    `mapstructure:"logs_enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"` // OTLP gRPC host:port
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool    `mapstructure:"insecure"`
	DBTraceEnabled    bool    `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool    `mapstructure:"db_log_full_sql"`
}

// ProfilingConfig drives the Pyroscope agent.
type ProfilingConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	ServerAddress      string `mapstructure:"server_address"`
	SpanProfiles       bool   `mapstructure:"span_profiles"`
	BasicAuthUser      string `mapstructure:"basic_auth_user"`
	BasicAuthPassword  string `mapstructure:"basic_auth_password"`
	ProfileGoroutines  bool   `mapstructure:"goroutines"`
	ProfileMutexes     bool   `mapstructure:"mutexes"`
	ProfileAllocations bool   `mapstructure:"allocations"`
}

// defaults registers every key with viper. A key viper has never seen is
// not looked up in the environment during Unmarshal, so keys without a
// meaningful default are listed with their zero value.
var defaults = map[string]any{
	"app.name": "backoffice",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "backoffice",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "backoffice.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.slow_query":         200 * time.Millisecond,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.access_secret":  "",
	"jwt.refresh_secret": "",
	"jwt.access_ttl":     "15m",
	"jwt.refresh_ttl":    "7d",
	"jwt.issuer":         "backoffice",
	"jwt.leeway":         time.Duration(0),

	"cookie.name":      "refresh_token",
	"cookie.domain":    "",
	"cookie.path":      "/",
	"cookie.secure":    false,
	"cookie.same_site": "lax",

	"auth.login_max_attempts": 5,
	"auth.login_window":       15 * time.Minute,

	"bootstrap.seed_permissions": true,
	"bootstrap.admin_role_name":  "Admin",
	"bootstrap.admin_email":      "",
	"bootstrap.admin_password":   "",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       15 * time.Second,
	"http.idle_timeout":        60 * time.Second,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       1 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":     []string{},

	"swagger.enabled":     false,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":            false,
	"telemetry.metrics_enabled":    false,
	"telemetry.logs_enabled":       false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           false,
	"telemetry.db_trace_enabled":   false,
	"telemetry.db_log_full_sql":    false,

	"profiling.enabled":             false,
	"profiling.server_address":      "http://localhost:4040",
	"profiling.span_profiles":       false,
	"profiling.basic_auth_user":     "",
	"profiling.basic_auth_password": "",
	"profiling.goroutines":          false,
	"profiling.mutexes":             false,
	"profiling.allocations":         false,
}

// Load reads ./config.toml or /etc/backoffice/config.toml when present and
// overlays BO_ environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/backoffice")

	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix("BO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if cfg.JWT.AccessTTL, err = parseTTL(v.GetString("jwt.access_ttl")); err != nil {
		return nil, fmt.Errorf("jwt.access_ttl: %w", err)
	}
	if cfg.JWT.RefreshTTL, err = parseTTL(v.GetString("jwt.refresh_ttl")); err != nil {
		return nil, fmt.Errorf("jwt.refresh_ttl: %w", err)
	}

	cfg.derive()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// derive fills values that depend on other settings.
func (c *Config) derive() {
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.App.Name
	}
	// Outside production missing secrets get fixed placeholders so a fresh
	// checkout starts without any setup.
	if !c.IsProduction() {
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = "dev-access-secret-not-for-production"
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = "dev-refresh-secret-not-for-production"
		}
	}
}

// parseTTL extends time.ParseDuration with whole days ("7d"). Negative
// values are rejected; an empty string is zero.
// maxTTLDays keeps n*24h inside time.Duration.
const maxTTLDays = int(math.MaxInt64 / int64(24*time.Hour))

func parseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		if n > maxTTLDays {
			return 0, fmt.Errorf("day duration %q exceeds %d days", s, maxTTLDays)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	case d < 0:
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// validate reports every problem at once, joined into one error.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(db.Driver == "postgres" || db.Driver == "sqlite", "database.driver must be postgres or sqlite, got %q", db.Driver)
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	check(c.JWT.Leeway >= 0, "jwt.leeway cannot be negative")
	check(c.JWT.AccessTTL > 0, "jwt.access_ttl must be positive")
	check(c.JWT.AccessTTL < c.JWT.RefreshTTL,
		"jwt.access_ttl (%s) must be shorter than jwt.refresh_ttl (%s)", c.JWT.AccessTTL, c.JWT.RefreshTTL)
	check(c.JWT.AccessSecret == "" || c.JWT.AccessSecret != c.JWT.RefreshSecret,
		"jwt.access_secret and jwt.refresh_secret must differ")

	check(c.Auth.LoginMaxAttempts >= 0, "auth.login_max_attempts cannot be negative")
	check(c.Bootstrap.AdminEmail == "" || c.Bootstrap.AdminPassword != "",
		"bootstrap.admin_password is required when bootstrap.admin_email is set")
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio)

	if c.IsProduction() {
		check(len(c.JWT.AccessSecret) >= 32, "jwt.access_secret must be at least 32 characters in production")
		check(len(c.JWT.RefreshSecret) >= 32, "jwt.refresh_secret must be at least 32 characters in production")
		check(db.Driver != "sqlite", "database.driver sqlite is not supported in production")
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(c.Cookie.Secure, "cookie.secure must be true in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot contain '*' in production")
		check(!c.Swagger.Enabled || len(c.Swagger.AllowedIPs) > 0,
			"swagger endpoint must be disabled or IP-restricted in production")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
