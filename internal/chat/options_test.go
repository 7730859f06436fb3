package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatConfig struct {
	script string
	mode   string
}

func (c chatConfig) GetChatTimeout() time.Duration           { return time.Second }
func (c chatConfig) GetChatOrdering() string                 { return "arrival" }
func (c chatConfig) GetChatBooleanMode() string              { return c.mode }
func (c chatConfig) GetChatAffirmatives() []string           { return nil }
func (c chatConfig) GetChatScriptPath() string               { return c.script }
func (c chatConfig) GetChatMinSubmitInterval() time.Duration { return 0 }

func TestFactoryAppliesConfig(t *testing.T) {
	f, err := NewFactory(&fakeAnalyzer{}, chatConfig{mode: "token"}, nil, nil)
	require.NoError(t, err)

	c := f.New("s-9", "")
	_, _ = c.Submit(context.Background(), "casa")
	_, _ = c.Submit(context.Background(), "Cali")
	_, _ = c.Submit(context.Background(), "1")
	_, _ = c.Submit(context.Background(), "1")
	_, _ = c.Submit(context.Background(), "1")
	_, _ = c.Submit(context.Background(), "sin garaje")

	snap := c.Snapshot()
	assert.Equal(t, "s-9", snap.SessionID)
	assert.Equal(t, false, snap.Preferences[KeyParking])
	assert.Equal(t, OrderingArrival, c.ordering)
}

func TestFactoryFailsOnMissingScript(t *testing.T) {
	_, err := NewFactory(&fakeAnalyzer{}, chatConfig{script: filepath.Join(t.TempDir(), "nope.yaml")}, nil, nil)
	assert.Error(t, err)
}

func TestFactoryLoadsScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {key: zona, prompt: \"¿Dónde?\"}\n"), 0o600))

	f, err := NewFactory(&fakeAnalyzer{}, chatConfig{script: path}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, f.Script().Steps, 1)
	assert.Equal(t, "¿Dónde?", f.New("x", "").Snapshot().Prompt)
}
