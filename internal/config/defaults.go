package config

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

const (
	defaultDataDir               = "~/.local/share/storyreel"
	defaultLogDir                = "~/.local/share/storyreel/logs"
	defaultAPIBind               = "127.0.0.1:7687"
	defaultEnvironment           = EnvironmentSandbox
	defaultShotstackAPIBase      = "https://api.shotstack.io"
	defaultRequestTimeoutSeconds = 30
	defaultRequestsPerSecond     = 5
	defaultBurst                 = 2
	defaultPollIntervalMS        = 3000
	defaultMaxPollAttempts       = 120
	defaultMaxConcurrentPolls    = 4
	defaultResumeIntervalSeconds = 30
	defaultBackground            = "#000000"
	defaultFormat                = "mp4"
	defaultResolution            = "hd"
	defaultAspectRatio           = "16:9"
	defaultFPS                   = 25
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Shotstack: Shotstack{
			Environment:           defaultEnvironment,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			RequestsPerSecond:     defaultRequestsPerSecond,
			Burst:                 defaultBurst,
		},
		Render: Render{
			PollIntervalMS:        defaultPollIntervalMS,
			MaxPollAttempts:       defaultMaxPollAttempts,
			MaxConcurrentPolls:    defaultMaxConcurrentPolls,
			ResumeIntervalSeconds: defaultResumeIntervalSeconds,
			Background:            defaultBackground,
			Cache:                 true,
			Format:                defaultFormat,
			Resolution:            defaultResolution,
			AspectRatio:           defaultAspectRatio,
			FPS:                   defaultFPS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// editBaseURL returns the edit API root for the selected environment.
func editBaseURL(environment string) string {
	if environment == EnvironmentProduction {
		return defaultShotstackAPIBase + "/edit/v1"
	}
	return defaultShotstackAPIBase + "/edit/stage"
}

// ingestBaseURL returns the ingest API root for the selected environment.
func ingestBaseURL(environment string) string {
	if environment == EnvironmentProduction {
		return defaultShotstackAPIBase + "/ingest/v1"
	}
	return defaultShotstackAPIBase + "/ingest/stage"
}
