package analytics

import (
	"context"
	"testing"

	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reachSteps(t *testing.T, f *Funnel, sessionID string, n int) {
	t.Helper()
	ctx := context.Background()
	for i, step := range chat.DefaultScript().Steps[:n] {
		require.NoError(t, f.Handle(ctx, chat.StepAdvanced{SessionID: sessionID, StepIndex: i, StepKey: step.Key}))
	}
}

func TestFunnelCountsUniqueSessions(t *testing.T) {
	f := NewFunnel(NewMemoryFunnelRepo(), nil)
	ctx := context.Background()

	reachSteps(t, f, "s1", 6)
	reachSteps(t, f, "s1", 2)
	reachSteps(t, f, "s2", 3)
	reachSteps(t, f, "s3", 1)
	reachSteps(t, f, "s4", 6)
	require.NoError(t, f.Handle(ctx, chat.ConversationCompleted{SessionID: "s1"}))

	stages, err := f.Stages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 7)

	assert.Equal(t, chat.KeyPropertyType, stages[0].Key)
	assert.Equal(t, 4, stages[0].Count)
	assert.Equal(t, 100, stages[0].PctOfBase)
	assert.Equal(t, 100, stages[0].PctOfPrevious)

	assert.Equal(t, 3, stages[1].Count)
	assert.Equal(t, 75, stages[1].PctOfBase)

	assert.Equal(t, StageCompleted, stages[6].Key)
	assert.Equal(t, 1, stages[6].Count)
	assert.Equal(t, 50, stages[6].PctOfPrevious)

	labels, values, err := f.GraphData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tipo de propiedad", labels[0])
	assert.Equal(t, []int{4, 3, 3, 2, 2, 2, 1}, values)
}

func TestFunnelChart(t *testing.T) {
	f := NewFunnel(NewMemoryFunnelRepo(), nil)
	ctx := context.Background()

	empty, err := f.Chart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Aún no hay datos del embudo", empty)

	reachSteps(t, f, "s1", 2)
	reachSteps(t, f, "s2", 1)

	chart, err := f.Chart(ctx)
	require.NoError(t, err)
	assert.Contains(t, chart, "- Tipo de propiedad: 2 | 100% del inicio | 100% del anterior [####################]")
	assert.Contains(t, chart, "- Zona: 1 |  50% del inicio |  50% del anterior [##########----------]")
}

func TestFunnelSubscribesToBus(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	f := NewFunnel(NewMemoryFunnelRepo(), nil)
	f.Subscribe(bus)
	ctx := context.Background()

	require.NoError(t, bus.PublishSync(ctx, chat.StepAdvanced{SessionID: "s1", StepKey: chat.KeyPropertyType}))
	require.NoError(t, bus.PublishSync(ctx, chat.TurnFailed{SessionID: "s1"}))

	stages, err := f.Stages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stages[0].Count)
}

func TestFunnelIgnoresBlankIdentifiers(t *testing.T) {
	repo := NewMemoryFunnelRepo()
	f := NewFunnel(repo, nil)

	require.NoError(t, f.Reach(context.Background(), "", chat.KeyZone))
	require.NoError(t, f.Reach(context.Background(), "s1", ""))

	counts, _ := repo.Counts(context.Background())
	assert.Empty(t, counts)
}

func TestRedisFunnelRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewRedisFunnelRepo(rdb, "")
	ctx := context.Background()

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	require.NoError(t, repo.Hit(ctx, chat.KeyZone, "s1"))
	require.NoError(t, repo.Hit(ctx, chat.KeyZone, "s1"))
	require.NoError(t, repo.Hit(ctx, chat.KeyZone, "s2"))
	require.NoError(t, repo.Hit(ctx, StageCompleted, "s2"))

	counts, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{chat.KeyZone: 2, StageCompleted: 1}, counts)
	assert.True(t, mr.Exists("fullhouse:funnel:stage:zona"))
}
