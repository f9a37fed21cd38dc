package logger

import (
	"log/slog"
	"strings"
)

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var allowedStatus = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"skip":         "skip",
	"retry":        "retry",
	"rate_limited": "rate_limited",
	"cancelled":    "cancelled",
}

var allowedCache = map[string]string{
	"hit":     "hit",
	"miss":    "miss",
	"refresh": "refresh",
}

var allowedOutcome = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"cancelled":    "cancelled",
	"rate_limited": "rate_limited",
}

func normalizeLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}

func normalizeEnum(allowed map[string]string, value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if mapped, ok := allowed[value]; ok {
		return mapped
	}
	return value
}

// normalizeFields folds known enum-valued fields into their canonical
// lowercase spelling so dashboards can group on them reliably.
func normalizeFields(fields map[string]any) {
	for key, allowed := range map[string]map[string]string{
		"status":  allowedStatus,
		"cache":   allowedCache,
		"outcome": allowedOutcome,
	} {
		if raw, ok := fields[key]; ok {
			if s, ok := raw.(string); ok {
				fields[key] = normalizeEnum(allowed, s)
			}
		}
	}
}
