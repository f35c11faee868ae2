package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App        app.Config
	Logging    Logging
	Sentry     Sentry
	Flags      map[string]string
	Args       []string
	Positional []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Sentry struct {
	DSN         string
	Environment string
}

const (
	envServer    = "MATHTUTOR_SERVER"
	envTimeout   = "MATHTUTOR_TIMEOUT"
	envRate      = "MATHTUTOR_RATE"
	envBurst     = "MATHTUTOR_BURST"
	envFile      = "MATHTUTOR_FILE"
	envTrace     = "MATHTUTOR_TRACE"
	envLogFile   = "MATHTUTOR_LOG_FILE"
	envSentryDSN = "MATHTUTOR_SENTRY_DSN"
	envEnv       = "MATHTUTOR_ENV"
	envNoMouse   = "MATHTUTOR_NO_MOUSE"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Load parses configuration from CLI arguments, the environment and an
// optional .env file. Process environment wins over .env values.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], mergeDotEnv(DotEnvFile, os.Environ()))
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("mathtutor", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	f := bindFlags(fs, env)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			API: api.Config{
				BaseURL:   *f.server,
				Timeout:   *f.timeout,
				RateLimit: *f.rate,
				Burst:     *f.burst,
				UserAgent: api.DefaultConfig().UserAgent,
			},
			InitialFile: *f.file,
			Mouse:       !*f.noMouse,
		},
		Logging: Logging{
			FilePath: *f.logFile,
			Trace:    *f.trace,
		},
		Sentry: Sentry{
			DSN:         *f.sentryDSN,
			Environment: *f.environment,
		},
		Flags: map[string]string{
			"server":  *f.server,
			"timeout": f.timeout.String(),
			"rate":    strconv.FormatFloat(*f.rate, 'f', -1, 64),
			"burst":   strconv.Itoa(*f.burst),
			"file":    *f.file,
			"trace":   strconv.FormatBool(*f.trace),
			"logFile": *f.logFile,
			"sentry":  strconv.FormatBool(*f.sentryDSN != ""),
			"env":     *f.environment,
			"noMouse": strconv.FormatBool(*f.noMouse),
		},
		Args:       append([]string(nil), args...),
		Positional: append([]string(nil), fs.Args()...),
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type flagValues struct {
	server      *string
	timeout     *time.Duration
	rate        *float64
	burst       *int
	file        *string
	trace       *bool
	logFile     *string
	sentryDSN   *string
	environment *string
	noMouse     *bool
}

func bindFlags(fs *flag.FlagSet, env map[string]string) flagValues {
	defaults := api.DefaultConfig()
	return flagValues{
		server:      fs.String("server", envOrDefault(env, envServer, defaults.BaseURL), "base URL of the tutor service"),
		timeout:     fs.Duration("timeout", envOrDuration(env, envTimeout, defaults.Timeout), "per-request timeout (0 disables)"),
		rate:        fs.Float64("rate", envOrFloat(env, envRate, defaults.RateLimit), "maximum requests per second (0 disables limiting)"),
		burst:       fs.Int("burst", envOrInt(env, envBurst, defaults.Burst), "request burst size"),
		file:        fs.String("file", envOrDefault(env, envFile, ""), "image to pre-fill on the Scan panel"),
		trace:       fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging"),
		logFile:     fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file"),
		sentryDSN:   fs.String("sentry-dsn", envOrDefault(env, envSentryDSN, ""), "Sentry DSN for error reporting"),
		environment: fs.String("env", envOrDefault(env, envEnv, "development"), "environment name reported to Sentry"),
		noMouse:     fs.Bool("no-mouse", envOrBool(env, envNoMouse, false), "disable mouse support"),
	}
}

// Usage returns the global flag reference with defaults resolved from
// the environment.
func Usage(environ []string) string {
	var out strings.Builder
	fs := flag.NewFlagSet("mathtutor", flag.ContinueOnError)
	fs.SetOutput(&out)
	bindFlags(fs, parseEnv(environ))
	fs.PrintDefaults()
	return out.String()
}

// mergeDotEnv layers the process environment over values from path.
// A missing file is not an error.
func mergeDotEnv(path string, environ []string) []string {
	values, err := godotenv.Read(path)
	if err != nil {
		return environ
	}
	merged := make([]string, 0, len(values)+len(environ))
	for k, v := range values {
		merged = append(merged, k+"="+v)
	}
	// Later entries win in parseEnv.
	return append(merged, environ...)
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Print(Usage(os.Environ()))
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures the service settings are usable.
func Validate(cfg Config) error {
	if _, err := api.ParseBaseURL(cfg.App.API.BaseURL); err != nil {
		return err
	}
	if cfg.App.API.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", cfg.App.API.Timeout)
	}
	if cfg.App.API.RateLimit < 0 {
		return fmt.Errorf("rate must be >= 0 (got %g)", cfg.App.API.RateLimit)
	}
	if cfg.App.API.Burst < 0 {
		return fmt.Errorf("burst must be >= 0 (got %d)", cfg.App.API.Burst)
	}
	return nil
}
