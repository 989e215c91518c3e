package envconfig

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"true":  true,
		"1":     true,
		"false": false,
		"0":     false,
		"'1'":   true,
		"junk":  true,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SEQNN_DEBUG", value)
			assert.Equal(t, want, Debug())
		})
	}
}

func TestUint(t *testing.T) {
	cases := map[string]uint{
		"":   0,
		"4":  4,
		"-1": 0,
		"x":  0,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SEQNN_NUM_THREADS", value)
			assert.Equal(t, want, NumThreads())
		})
	}
}

func TestInt64(t *testing.T) {
	t.Setenv("SEQNN_SEED", "")
	assert.Equal(t, int64(42), Seed())

	t.Setenv("SEQNN_SEED", " -7 ")
	assert.Equal(t, int64(-7), Seed())

	t.Setenv("SEQNN_SEED", "seven")
	assert.Equal(t, int64(42), Seed())
}

func TestString(t *testing.T) {
	t.Setenv("SEQNN_TOKENIZER", "")
	assert.Equal(t, "whitespace", Tokenizer())

	t.Setenv("SEQNN_TOKENIZER", "\"cl100k_base\"")
	assert.Equal(t, "cl100k_base", Tokenizer())
}

func TestLogLevel(t *testing.T) {
	t.Setenv("SEQNN_DEBUG", "")
	assert.Equal(t, slog.LevelInfo, LogLevel())

	t.Setenv("SEQNN_DEBUG", "1")
	assert.Equal(t, slog.LevelDebug, LogLevel())
}

func TestValues(t *testing.T) {
	t.Setenv("SEQNN_NUM_THREADS", "3")
	vals := Values()
	assert.Equal(t, "3", vals["SEQNN_NUM_THREADS"])
	assert.Len(t, vals, len(AsMap()))
}
