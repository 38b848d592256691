package config

const (
	defaultAPIBaseURL     = "http://localhost:8080/api/v1"
	defaultAPITimeout     = 15
	defaultDataDir        = "~/.local/share/taskline"
	defaultLogDir         = "~/.local/share/taskline/logs"
	defaultCaptureBinary  = "ffmpeg"
	defaultPlaybackBinary = "ffplay"
	defaultAudioDevice    = "default"
	defaultSampleRate     = 16000
	defaultMaxSeconds     = 120
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeout,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Audio: Audio{
			CaptureBinary:  defaultCaptureBinary,
			PlaybackBinary: defaultPlaybackBinary,
			Device:         defaultAudioDevice,
			SampleRate:     defaultSampleRate,
			MaxSeconds:     defaultMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
