// Package config loads application configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// Transport names the query transport used to reach the platform.
type Transport string

const (
	TransportCLI Transport = "cli"
	TransportAPI Transport = "api"
)

// Output names the rendering of the status command.
type Output string

const (
	OutputTable Output = "table"
	OutputJSON  Output = "json"
	OutputYAML  Output = "yaml"
)

// EnvFile is loaded before the environment is read. Variables already set in
// the environment win.
const EnvFile = ".env"

// ErrInvalidConfig is wrapped by every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the validated application configuration.
type Config struct {
	GitHubUsername string // Empty means resolve the login through the transport.
	GitHubHost     string
	Transport      Transport
	QueryTimeout   time.Duration
	PageSize       int
	MaxPages       int
	PollInterval   time.Duration
	ListenAddr     string
	DBPath         string
	LogLevel       string
	LogFormat      string
	Filters        model.FilterSettings
	Output         Output
}

// HasCheckFilters reports whether any check names were configured. Configured
// names seed the filter store at startup.
func (c *Config) HasCheckFilters() bool {
	return len(c.Filters.RequiredChecks) > 0 || len(c.Filters.IgnoredChecks) > 0
}

// Init creates the viper instance for the process, binds the persistent flags
// of root to it and registers defaults. root may be nil.
func Init(root *cobra.Command) *viper.Viper {
	_ = godotenv.Load(EnvFile)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if root != nil {
		registerFlags(root, v)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyGitHubUsername, "")
	v.SetDefault(KeyGitHubHost, "github.com")
	v.SetDefault(KeyTransport, string(TransportCLI))
	v.SetDefault(KeyQueryTimeout, 30*time.Second)
	v.SetDefault(KeyPageSize, 100)
	v.SetDefault(KeyMaxPages, 10)
	v.SetDefault(KeyPollInterval, 300)
	v.SetDefault(KeyListenAddr, "127.0.0.1:8080")
	v.SetDefault(KeyDBPath, "prwatch.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyRequiredChecks, "")
	v.SetDefault(KeyIgnoredChecks, "")
	v.SetDefault(KeyOutput, string(OutputTable))
}

func registerFlags(root *cobra.Command, v *viper.Viper) {
	flags := root.PersistentFlags()
	flags.String("github-username", "", "GitHub login to watch (default: the authenticated user)")
	flags.String("github-host", "github.com", "GitHub host for the api transport")
	flags.String("transport", string(TransportCLI), "query transport: cli or api")
	flags.Duration("query-timeout", 30*time.Second, "deadline for a single query")
	flags.Int("page-size", 100, "search results per page (1-100)")
	flags.Int("max-pages", 10, "page cap per search")
	flags.Int("poll-interval", 300, "seconds between fetch cycles")
	flags.String("listen-addr", "127.0.0.1:8080", "HTTP listen address")
	flags.String("db-path", "prwatch.db", "SQLite database path")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.String("required-checks", "", "comma separated check names that must pass")
	flags.String("ignored-checks", "", "comma separated check names to ignore")

	for _, key := range []string{
		KeyGitHubUsername, KeyGitHubHost, KeyTransport, KeyQueryTimeout,
		KeyPageSize, KeyMaxPages, KeyPollInterval, KeyListenAddr, KeyDBPath,
		KeyLogLevel, KeyLogFormat, KeyRequiredChecks, KeyIgnoredChecks,
	} {
		_ = v.BindPFlag(key, flags.Lookup(flagName(key)))
	}
}

// BindOutputFlag registers --output on a command that renders results and
// binds it to the output key.
func BindOutputFlag(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().StringP("output", "o", string(OutputTable), "output format: table, json or yaml")
	_ = v.BindPFlag(KeyOutput, cmd.Flags().Lookup("output"))
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Load reads every key from v and returns a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		GitHubUsername: strings.TrimSpace(v.GetString(KeyGitHubUsername)),
		GitHubHost:     strings.TrimSpace(v.GetString(KeyGitHubHost)),
		Transport:      Transport(strings.ToLower(v.GetString(KeyTransport))),
		QueryTimeout:   v.GetDuration(KeyQueryTimeout),
		PageSize:       v.GetInt(KeyPageSize),
		MaxPages:       v.GetInt(KeyMaxPages),
		ListenAddr:     v.GetString(KeyListenAddr),
		DBPath:         v.GetString(KeyDBPath),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:      strings.ToLower(v.GetString(KeyLogFormat)),
		Filters: model.FilterSettings{
			RequiredChecks: splitList(v.GetString(KeyRequiredChecks)),
			IgnoredChecks:  splitList(v.GetString(KeyIgnoredChecks)),
		},
		Output: Output(strings.ToLower(v.GetString(KeyOutput))),
	}

	seconds, err := parsePositiveInt(v.GetString(KeyPollInterval))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, KeyPollInterval, err)
	}
	cfg.PollInterval = time.Duration(seconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its allowed range.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportCLI, TransportAPI:
	default:
		return invalid(KeyTransport, "must be cli or api, got %q", c.Transport)
	}
	if c.GitHubHost == "" {
		return invalid(KeyGitHubHost, "must not be empty")
	}
	if c.QueryTimeout <= 0 {
		return invalid(KeyQueryTimeout, "must be positive, got %s", c.QueryTimeout)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return invalid(KeyPageSize, "must be between 1 and 100, got %d", c.PageSize)
	}
	if c.MaxPages < 1 {
		return invalid(KeyMaxPages, "must be at least 1, got %d", c.MaxPages)
	}
	if c.PollInterval <= 0 {
		return invalid(KeyPollInterval, "must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid(KeyLogLevel, "unknown level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return invalid(KeyLogFormat, "must be console or json, got %q", c.LogFormat)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return invalid(KeyOutput, "must be table, json or yaml, got %q", c.Output)
	}
	if err := c.Filters.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, key, fmt.Sprintf(format, args...))
}

// splitList splits a comma separated value, trimming blanks and skipping
// empty entries. It never returns nil.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
