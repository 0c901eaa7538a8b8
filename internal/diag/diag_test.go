package diag

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "SIGNAL", LevelSignal.String())
}

func TestSetCallbackAndLog(t *testing.T) {
	defer SetCallback(nil)

	var got []string
	SetCallback(func(level Level, msg string) {
		got = append(got, level.String()+" "+msg)
	})

	Log(LevelInfo, "hello")
	Logf(LevelSignal, "action=%s", "BUY")

	assert.Equal(t, []string{"INFO hello", "SIGNAL action=BUY"}, got)
}

func TestNilCallbackDiscards(t *testing.T) {
	SetCallback(nil)
	// Must not panic.
	Log(LevelError, "dropped")
}

func TestConcurrentLogAndReplace(t *testing.T) {
	defer SetCallback(nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				Log(LevelInfo, "msg")
			}
		}()
	}
	for i := 0; i < 100; i++ {
		SetCallback(func(Level, string) {})
		SetCallback(nil)
	}
	wg.Wait()
}

func TestZerologCallback(t *testing.T) {
	defer SetCallback(nil)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	SetCallback(ZerologCallback(logger))

	Log(LevelSignal, "BUY BTC")
	Log(LevelError, "boom")

	out := buf.String()
	assert.True(t, strings.Contains(out, "BUY BTC"))
	assert.True(t, strings.Contains(out, `"channel":"signal"`))
	assert.True(t, strings.Contains(out, `"level":"error"`))
}
