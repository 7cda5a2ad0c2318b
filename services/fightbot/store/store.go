// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/octagonops/fightbot/services/fightbot/cache"
)

// Cache TTLs per key class. The roster changes rarely; rankings and
// detail records track event results.
const (
	RosterTTL = 24 * time.Hour
	DetailTTL = time.Hour
)

// Redis key prefixes.
const (
	keyRoster   = "fightbot:roster"
	keyRankings = "fightbot:rankings"
	keyFighter  = "fightbot:fighter:"
	keyDivision = "fightbot:division:"
)

// ErrNotFound is the single "no data" answer of the store. Origin
// failures, decode failures, and genuinely absent entities all surface as
// ErrNotFound after logging; callers render a "could not find" message.
var ErrNotFound = errors.New("store: not found")

// Origin is the origin-fetch contract the store depends on, expressed in
// domain types. OriginClient adapts *upstream.Client; tests inject fakes.
type Origin interface {
	Fighters(ctx context.Context) (map[string]Fighter, error)
	Rankings(ctx context.Context) ([]Division, error)
	Fighter(ctx context.Context, id string) (Fighter, error)
	Division(ctx context.Context, id string) (Division, error)
}

// Store layers the optional distributed cache and the local expiring
// caches in front of the origin. All caches are process-wide shared
// state owned by the Store; one Store instance serves the whole server.
//
// Thread Safety: Store is safe for concurrent use. Redundant fetches of
// the same key by racing requests are tolerated (writes are idempotent);
// only the whole-roster load is collapsed through singleflight because it
// is the one expensive call.
type Store struct {
	origin  Origin
	dist    cache.Distributed // nil when the tier is not configured
	retired *RetiredRegistry
	logger  *slog.Logger

	roster    *cache.Expiring[map[string]Fighter]
	rankings  *cache.Expiring[[]Division]
	fighters  *cache.Expiring[Fighter]
	divisions *cache.Expiring[Division]
	all       *cache.Expiring[[]Fighter]

	group singleflight.Group

	hookMu sync.Mutex
	hooks  []func()
}

// New creates a Store. dist may be nil (the tier is optional by
// configuration); logger may be nil.
func New(origin Origin, dist cache.Distributed, retired *RetiredRegistry, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		origin:    origin,
		dist:      dist,
		retired:   retired,
		logger:    logger,
		roster:    cache.NewExpiring[map[string]Fighter]("roster", RosterTTL),
		rankings:  cache.NewExpiring[[]Division]("rankings", DetailTTL),
		fighters:  cache.NewExpiring[Fighter]("fighter_detail", DetailTTL),
		divisions: cache.NewExpiring[Division]("division_detail", DetailTTL),
		all:       cache.NewExpiring[[]Fighter]("all_fighters", RosterTTL),
	}
}

// Retired exposes the curated registry (the resolver scans it directly).
func (s *Store) Retired() *RetiredRegistry { return s.retired }

// OnInvalidate registers a callback run by InvalidateAll. The resolver
// and the division normalizer hook their derived mappings here.
func (s *Store) OnInvalidate(fn func()) {
	s.hookMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hookMu.Unlock()
}

// lookup walks the tiered fallback for one key: distributed (best-effort)
// → local → origin, writing back to both tiers on origin success.
// Failures are logged and mapped to ErrNotFound; they are never cached.
func lookup[T any](ctx context.Context, s *Store, redisKey string, local *cache.Expiring[T],
	localKey string, fetch func(context.Context) (T, error)) (T, error) {

	var zero T

	if s.dist != nil {
		if raw, ok := s.dist.GetBytes(ctx, redisKey); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				local.Set(localKey, v)
				return v, nil
			}
			// A corrupt shared entry is a miss, not an error.
			s.logger.Debug("discarding undecodable redis entry", "key", redisKey)
		}
	}

	if v, ok := local.Get(localKey); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		s.logger.Warn("origin fetch failed, returning no data",
			"key", redisKey, "error", err.Error())
		return zero, ErrNotFound
	}

	local.Set(localKey, v)
	if s.dist != nil {
		if raw, err := json.Marshal(v); err == nil {
			s.dist.SetBytes(ctx, redisKey, raw, local.TTL())
		}
	}
	return v, nil
}

// Roster returns the full live roster keyed by fighter id. Concurrent
// first loads collapse into one origin call.
func (s *Store) Roster(ctx context.Context) (map[string]Fighter, error) {
	v, err, _ := s.group.Do(keyRoster, func() (any, error) {
		return lookup(ctx, s, keyRoster, s.roster, "roster", s.origin.Fighters)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]Fighter), nil
}

// Rankings returns every division with its champion and contenders.
func (s *Store) Rankings(ctx context.Context) ([]Division, error) {
	return lookup(ctx, s, keyRankings, s.rankings, "rankings", s.origin.Rankings)
}

// GetFighter returns one fighter by canonical id. Retired ids are served
// from the registry and never reach the origin.
func (s *Store) GetFighter(ctx context.Context, id string) (Fighter, error) {
	if strings.HasPrefix(id, RetiredIDPrefix) {
		if f, ok := s.retired.Get(id); ok {
			return f, nil
		}
		return Fighter{}, ErrNotFound
	}
	return lookup(ctx, s, keyFighter+id, s.fighters, id, func(ctx context.Context) (Fighter, error) {
		return s.origin.Fighter(ctx, id)
	})
}

// GetDivision returns one division by canonical id.
func (s *Store) GetDivision(ctx context.Context, id string) (Division, error) {
	return lookup(ctx, s, keyDivision+id, s.divisions, id, func(ctx context.Context) (Division, error) {
		return s.origin.Division(ctx, id)
	})
}

// AllFighters merges the live roster with the retired registry into one
// deterministic, name-ordered list. The merge is a derived view cached
// locally for the roster TTL.
func (s *Store) AllFighters(ctx context.Context) ([]Fighter, error) {
	if v, ok := s.all.Get("all"); ok {
		return v, nil
	}

	roster, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}

	merged := make([]Fighter, 0, len(roster)+len(s.retired.ids))
	for id, f := range roster {
		if f.ID == "" {
			f.ID = id
		}
		merged = append(merged, f)
	}
	merged = append(merged, s.retired.All()...)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Name != merged[j].Name {
			return merged[i].Name < merged[j].Name
		}
		return merged[i].ID < merged[j].ID
	})

	s.all.Set("all", merged)
	return merged, nil
}

// FightersByAttribute answers roster-wide extremal queries ("who has the
// longest reach"). Fighters with an unknown (0) value for attr are
// excluded rather than ranked as zero. divisionFilter is an optional
// canonical division id; empty means the whole roster.
func (s *Store) FightersByAttribute(ctx context.Context, attr Attribute, max int,
	findMax bool, divisionFilter string) ([]Fighter, error) {

	fighters, err := s.AllFighters(ctx)
	if err != nil {
		return nil, err
	}

	var eligible []Fighter
	for _, f := range fighters {
		if f.Value(attr) <= 0 {
			continue
		}
		if divisionFilter != "" && !categoryMatchesDivision(f.Category, divisionFilter) {
			continue
		}
		eligible = append(eligible, f)
	}

	sort.Slice(eligible, func(i, j int) bool {
		vi, vj := eligible[i].Value(attr), eligible[j].Value(attr)
		if vi != vj {
			if findMax {
				return vi > vj
			}
			return vi < vj
		}
		return eligible[i].Name < eligible[j].Name
	})

	if max > 0 && len(eligible) > max {
		eligible = eligible[:max]
	}
	return eligible, nil
}

// similarity scales per attribute: a delta equal to the scale contributes
// a full point of distance.
var similarityScales = map[Attribute]float64{
	AttrHeight: 4,
	AttrWeight: 15,
	AttrReach:  4,
}

// SimilarFighters ranks same-division fighters by physical closeness to
// the subject, nearest first, excluding the subject itself.
func (s *Store) SimilarFighters(ctx context.Context, id string, limit int) ([]Fighter, error) {
	subject, err := s.GetFighter(ctx, id)
	if err != nil {
		return nil, err
	}

	fighters, err := s.AllFighters(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		f    Fighter
		dist float64
	}
	var candidates []scored
	for _, f := range fighters {
		if f.ID == subject.ID || !sameCategory(f.Category, subject.Category) {
			continue
		}
		var dist float64
		var signals int
		for attr, scale := range similarityScales {
			a, b := subject.Value(attr), f.Value(attr)
			if a <= 0 || b <= 0 {
				continue
			}
			dist += math.Abs(a-b) / scale
			signals++
		}
		if signals == 0 {
			continue
		}
		candidates = append(candidates, scored{f: f, dist: dist / float64(signals)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].f.Name < candidates[j].f.Name
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Fighter, len(candidates))
	for i, c := range candidates {
		out[i] = c.f
	}
	return out, nil
}

// InvalidateAll clears every tier: the local caches, the derived views,
// the registered alias/division mappings, and (best-effort) the
// distributed cache.
func (s *Store) InvalidateAll(ctx context.Context) {
	s.roster.Clear()
	s.rankings.Clear()
	s.fighters.Clear()
	s.divisions.Clear()
	s.all.Clear()

	s.hookMu.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.hookMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	if s.dist != nil {
		s.dist.FlushAll(ctx)
	}
	s.logger.Info("all cache tiers invalidated")
}

// categoryMatchesDivision compares an API category label ("Light
// Heavyweight Division") against a canonical division id
// ("light-heavyweight").
func categoryMatchesDivision(category, divisionID string) bool {
	return slugifyCategory(category) == strings.ToLower(strings.TrimSpace(divisionID))
}

func sameCategory(a, b string) bool {
	return a != "" && slugifyCategory(a) == slugifyCategory(b)
}

func slugifyCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	c = strings.TrimSuffix(c, " division")
	c = strings.ReplaceAll(c, "'", "")
	return strings.ReplaceAll(c, " ", "-")
}
