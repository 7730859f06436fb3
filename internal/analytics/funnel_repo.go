package analytics

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

type MemoryFunnelRepo struct {
	mu     sync.RWMutex
	counts map[string]map[string]struct{}
}

func NewMemoryFunnelRepo() *MemoryFunnelRepo {
	return &MemoryFunnelRepo{counts: make(map[string]map[string]struct{})}
}

func (r *MemoryFunnelRepo) Hit(_ context.Context, stage, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.counts[stage]
	if !ok {
		m = make(map[string]struct{})
		r.counts[stage] = m
	}
	m[sessionID] = struct{}{}
	return nil
}

func (r *MemoryFunnelRepo) Counts(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.counts))
	for s, set := range r.counts {
		out[s] = len(set)
	}
	return out, nil
}

// RedisFunnelRepo stores one set of session ids per stage plus an index of stages.
type RedisFunnelRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisFunnelRepo(rdb *redis.Client, prefix string) *RedisFunnelRepo {
	if prefix == "" {
		prefix = "fullhouse:funnel"
	}
	return &RedisFunnelRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisFunnelRepo) stagesKey() string { return r.prefix + ":stages" }

func (r *RedisFunnelRepo) stageKey(stage string) string { return r.prefix + ":stage:" + stage }

func (r *RedisFunnelRepo) Hit(ctx context.Context, stage, sessionID string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, r.stagesKey(), stage)
		p.SAdd(ctx, r.stageKey(stage), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("funnel hit %s: %w", stage, err)
	}
	return nil
}

func (r *RedisFunnelRepo) Counts(ctx context.Context) (map[string]int, error) {
	stages, err := r.rdb.SMembers(ctx, r.stagesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("funnel stages: %w", err)
	}
	if len(stages) == 0 {
		return map[string]int{}, nil
	}

	cmds := make([]*redis.IntCmd, len(stages))
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, stage := range stages {
			cmds[i] = p.SCard(ctx, r.stageKey(stage))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("funnel counts: %w", err)
	}

	out := make(map[string]int, len(stages))
	for i, stage := range stages {
		out[stage] = int(cmds[i].Val())
	}
	return out, nil
}
