// Package envconfig reads seqnn settings from SEQNN_* environment variables.
//
// Each setting is a getter that re-reads the environment on every call, so
// tests can change values with t.Setenv. Invalid values are logged and the
// default is used.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// Debug enables debug logging. SEQNN_DEBUG=1
	Debug = Bool("SEQNN_DEBUG")
	// NumThreads bounds the CPU backend worker pool; 0 means one per CPU. SEQNN_NUM_THREADS
	NumThreads = Uint("SEQNN_NUM_THREADS", 0)
	// Seed seeds weight initialization. SEQNN_SEED
	Seed = Int64("SEQNN_SEED", 42)
	// Tokenizer names the tokenizer used by the CLI. SEQNN_TOKENIZER
	Tokenizer = String("SEQNN_TOKENIZER", "whitespace")
)

// LogLevel returns Debug when SEQNN_DEBUG is set, Info otherwise.
func LogLevel() slog.Level {
	if Debug() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Var returns an environment variable stripped of surrounding space and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a getter for a boolean variable. A set but
// unparsable value counts as true.
func BoolWithDefault(key string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable defaulting to false.
func Bool(key string) func() bool {
	withDefault := BoolWithDefault(key)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a getter for a string variable.
func String(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// Uint returns a getter for an unsigned integer variable.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Int64 returns a getter for a signed integer variable.
func Int64(key string, defaultValue int64) func() int64 {
	return func() int64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// EnvVar describes one setting for display.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every setting with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"SEQNN_DEBUG":       {"SEQNN_DEBUG", Debug(), "Show additional debug information (e.g. SEQNN_DEBUG=1)"},
		"SEQNN_NUM_THREADS": {"SEQNN_NUM_THREADS", NumThreads(), "Maximum worker goroutines for CPU kernels (0 = one per CPU)"},
		"SEQNN_SEED":        {"SEQNN_SEED", Seed(), "Seed for weight initialization"},
		"SEQNN_TOKENIZER":   {"SEQNN_TOKENIZER", Tokenizer(), "Tokenizer: whitespace, whitespace-lower or a tiktoken encoding"},
	}
}

// Values returns every setting formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
