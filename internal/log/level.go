package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levels = []struct {
	name  string
	slog  slog.Level
	alias string
}{
	LevelDebug: {"debug", slog.LevelDebug, ""},
	LevelInfo:  {"info", slog.LevelInfo, ""},
	LevelWarn:  {"warn", slog.LevelWarn, "warning"},
	LevelError: {"error", slog.LevelError, ""},
}

func (l Level) valid() bool { return l >= 0 && int(l) < len(levels) }

// String returns the upper-case level name, or UNKNOWN.
func (l Level) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return strings.ToUpper(levels[l].name)
}

// ToSlogLevel maps l onto slog. Unknown levels become info.
func (l Level) ToSlogLevel() slog.Level {
	if !l.valid() {
		return slog.LevelInfo
	}
	return levels[l].slog
}

// ParseLevel is lenient: unknown names give LevelInfo.
func ParseLevel(s string) Level {
	l, err := lookupLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

func lookupLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelInfo, nil
	}
	for i, l := range levels {
		if s == l.name || (l.alias != "" && s == l.alias) {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (supported: debug, info, warn, error)", s)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText is strict so config typos surface at load time.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := lookupLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
