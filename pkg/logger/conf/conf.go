package conf

type Level string

const (
	TraceLevel Level = "trace"
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	FatalLevel Level = "fatal"
)

type Formatter string

const (
	JSONFormater    Formatter = "json"
	ConsoleFormater Formatter = "console"
)

func isValidFormatter(f Formatter) bool {
	return (f == JSONFormater) || (f == ConsoleFormater)
}

type LogConfig struct {
	Level     Level     `json:"level" yaml:"level"`
	Formatter Formatter `json:"formatter" yaml:"formatter"`

	// File output. Empty FilePath keeps logging on stderr.
	FilePath   string `json:"file_path" yaml:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

func DefaultConfig() *LogConfig {
	return &LogConfig{
		Level:      InfoLevel,
		Formatter:  ConsoleFormater,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

func (c *LogConfig) Normalize() {
	if c.Level == "" {
		c.Level = InfoLevel
	}
	if !isValidFormatter(c.Formatter) {
		c.Formatter = ConsoleFormater
	}
}
