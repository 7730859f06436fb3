package handler

import (
	"context"
	"testing"
	"time"

	"fullhouse_client/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepClosesIdleSessions(t *testing.T) {
	analyzer := &echoAnalyzer{}
	factory := factoryFunc(func(id, contact string) *chat.Collector {
		return chat.NewCollector(analyzer, chat.Options{SessionID: id, ContactKey: contact})
	})
	store := NewSessionStore(factory, time.Minute, 0, nil)

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old, err := store.Create("ana@example.com")
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	fresh, err := store.Create("")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, store.Sweep())

	_, ok := store.Get(old.SessionID())
	assert.False(t, ok)
	_, ok = store.Get(fresh.SessionID())
	assert.True(t, ok)

	_, err = old.Submit(context.Background(), "casa")
	assert.ErrorIs(t, err, chat.ErrClosed)
}

func TestGetRefreshesIdleTimer(t *testing.T) {
	factory := factoryFunc(func(id, contact string) *chat.Collector {
		return chat.NewCollector(&echoAnalyzer{}, chat.Options{SessionID: id})
	})
	store := NewSessionStore(factory, time.Minute, 0, nil)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	c, err := store.Create("")
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	_, ok := store.Get(c.SessionID())
	require.True(t, ok)

	now = now.Add(50 * time.Second)
	assert.Equal(t, 0, store.Sweep())
}

func TestRunClosesEverythingOnShutdown(t *testing.T) {
	factory := factoryFunc(func(id, contact string) *chat.Collector {
		return chat.NewCollector(&echoAnalyzer{}, chat.Options{SessionID: id})
	})
	store := NewSessionStore(factory, time.Hour, 0, nil)
	c, err := store.Create("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, 0, store.Len())
	assert.True(t, c.Snapshot().Closed)
}
