package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps "text" and "console" to FormatText and anything else to
// FormatJSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "console":
		return FormatText
	}
	return FormatJSON
}

// FileOptions controls rotation of the log file.
type FileOptions struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RotatingFile returns a compressed, size-rotated writer for
// <dir>/gsms.log. Zero sizes default to 10 MB and three backups.
func RotatingFile(opts FileOptions) io.WriteCloser {
	if opts.MaxSizeMB == 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups == 0 {
		opts.MaxBackups = 3
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "gsms.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}

// Config configures New. A nil Output writes to stderr.
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	AddSource bool

	// Attached to every record as "service" and "version".
	ServiceName    string
	ServiceVersion string
}

func (c Config) writer() io.Writer {
	if c.Output == nil {
		return os.Stderr
	}
	return c.Output
}

// close releases a rotating file. Borrowed writers stay open.
func (c Config) close() error {
	if f, ok := c.Output.(*lumberjack.Logger); ok {
		return f.Close()
	}
	return nil
}

// DefaultConfig logs warnings and errors as text to stderr, keeping stdout
// free for command output.
func DefaultConfig() Config {
	return Config{
		Level:          LevelWarn,
		Format:         FormatText,
		ServiceName:    "gsms",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs everything with source locations.
func DevelopmentConfig() Config {
	c := DefaultConfig()
	c.Level = LevelDebug
	c.AddSource = true
	return c
}

// FileConfig logs JSON to a rotating file in dir.
func FileConfig(dir string, level Level) Config {
	c := DefaultConfig()
	c.Level = level
	c.Format = FormatJSON
	c.Output = RotatingFile(FileOptions{Dir: dir})
	return c
}
