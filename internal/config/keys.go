package config

const (
	KeyGitHubUsername = "github_username"
	KeyGitHubHost     = "github_host"
	KeyTransport      = "transport"
	KeyQueryTimeout   = "query_timeout"
	KeyPageSize       = "page_size"
	KeyMaxPages       = "max_pages"
	KeyPollInterval   = "poll_interval"
	KeyListenAddr     = "listen_addr"
	KeyDBPath         = "db_path"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyRequiredChecks = "required_checks"
	KeyIgnoredChecks  = "ignored_checks"
	KeyOutput         = "output"
)

// EnvPrefix is prepended to every key when read from the environment, e.g.
// poll_interval is PRWATCH_POLL_INTERVAL.
const EnvPrefix = "PRWATCH"
