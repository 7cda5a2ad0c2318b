// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolve turns fuzzy human fighter references ("GSP",
// "khabib", "that sambo guy makhachev") into canonical fighter ids.
//
// Resolution is a fixed-order pipeline: static nickname rewrite, then
// the memoized alias map, then the retired-fighter registry, then
// exact and finally fuzzy matching against the live roster. A failed
// resolution is not an error; callers treat it as "intent
// undetermined" and fall through to weaker matchers.
package resolve

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/octagonops/fightbot/pkg/fuzzy"
	"github.com/octagonops/fightbot/services/fightbot/store"
)

//go:embed data/nicknames.yaml
var nicknamesYAML []byte

//go:embed data/styles.yaml
var stylesYAML []byte

// Fuzzy scoring weights. A candidate's combined score is
// max(nameScore, nicknameScore) + 0.5*styleScore, and anything below
// scoreCutoff is discarded.
const (
	nicknameWeight = 0.8
	styleWeight    = 0.3
	scoreCutoff    = 0.6

	// tokenSubstringScore is awarded when the query is a non-trivial
	// substring of a single name token ("pereir" in "Pereira").
	tokenSubstringScore = 0.85

	// minTokenQueryLen guards token-substring matching against
	// two-letter fragments lighting up half the roster.
	minTokenQueryLen = 4
)

// RosterSource supplies the live fighter roster, keyed by id.
type RosterSource interface {
	Roster(ctx context.Context) (map[string]store.Fighter, error)
}

type nicknameFile struct {
	Nicknames map[string]string `yaml:"nicknames"`
}

type styleFile struct {
	Styles map[string]string `yaml:"styles"`
}

// Resolver resolves free-text fighter references to canonical ids.
// Safe for concurrent use. The alias map memoizes every successful
// resolution until Reset.
type Resolver struct {
	roster  RosterSource
	retired *store.RetiredRegistry
	logger  *slog.Logger

	nicknames    map[string]string // lowercase nickname -> canonical display name
	nicknameKeys []string          // nicknames keys, longest first
	styles       map[string]string // lowercase keyword -> canonical style label

	mu         sync.RWMutex
	aliases    map[string]string // lowercase query -> fighter id
	bulkLoaded bool

	populate singleflight.Group
}

// New builds a Resolver over the given roster source and retired
// registry. The alias map is seeded with retired-fighter names so
// historical fighters resolve before the roster is ever fetched.
func New(roster RosterSource, retired *store.RetiredRegistry, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var nicks nicknameFile
	if err := yaml.Unmarshal(nicknamesYAML, &nicks); err != nil {
		return nil, fmt.Errorf("parse nickname table: %w", err)
	}
	var styles styleFile
	if err := yaml.Unmarshal(stylesYAML, &styles); err != nil {
		return nil, fmt.Errorf("parse style table: %w", err)
	}

	r := &Resolver{
		roster:    roster,
		retired:   retired,
		logger:    logger.With("component", "resolve"),
		nicknames: make(map[string]string, len(nicks.Nicknames)),
		styles:    make(map[string]string, len(styles.Styles)),
		aliases:   make(map[string]string),
	}
	for k, v := range nicks.Nicknames {
		r.nicknames[strings.ToLower(k)] = v
	}
	// Longer nicknames are tried first so "the last stylebender" wins
	// over "stylebender".
	r.nicknameKeys = make([]string, 0, len(r.nicknames))
	for nick := range r.nicknames {
		r.nicknameKeys = append(r.nicknameKeys, nick)
	}
	sort.Slice(r.nicknameKeys, func(i, j int) bool {
		return len(r.nicknameKeys[i]) > len(r.nicknameKeys[j])
	})
	for k, v := range styles.Styles {
		r.styles[strings.ToLower(k)] = v
	}
	r.seedRetiredAliases()
	return r, nil
}

func (r *Resolver) seedRetiredAliases() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.retired.All() {
		name := strings.ToLower(f.Name)
		r.aliases[name] = f.ID
		r.aliases[f.ID] = f.ID
		if last := lastToken(name); last != "" {
			r.aliases[last] = f.ID
		}
	}
}

// Reset clears the memoized alias map back to its retired-fighter
// seed. Wired to the store's invalidation hook.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.aliases = make(map[string]string)
	r.bulkLoaded = false
	r.mu.Unlock()
	r.seedRetiredAliases()
	r.logger.Debug("alias map reset")
}

// Resolve maps a free-text fighter reference to a canonical id.
// Returns ok=false when nothing clears the fuzzy score cutoff.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, bool) {
	raw := strings.ToLower(strings.TrimSpace(query))
	if raw == "" {
		return "", false
	}
	if id, ok := r.lookupAlias(raw); ok {
		return id, true
	}

	id, ok := r.resolve(ctx, stripPossessives(raw))
	if ok {
		r.memoize(raw, id)
	}
	return id, ok
}

func (r *Resolver) resolve(ctx context.Context, q string) (string, bool) {
	if q == "" {
		return "", false
	}

	// A known nickname anywhere in the query rewrites it to the
	// canonical name before anything else runs.
	styleMention := r.styleMention(q)
	if canonical, ok := r.nicknameRewrite(q); ok {
		q = strings.ToLower(canonical)
	}

	if id, ok := r.lookupAlias(q); ok {
		return id, true
	}

	if id, ok := r.retired.MatchName(q); ok {
		r.memoize(q, id)
		return id, true
	}

	fighters, err := r.roster.Roster(ctx)
	if err != nil {
		r.logger.Warn("roster unavailable during resolution", "error", err)
		return "", false
	}
	r.ensureBulkAliases(fighters)

	if id, ok := r.lookupAlias(q); ok {
		return id, true
	}

	// A style phrase in the query ("wrestler khabib") pollutes name
	// matching; strip it and retry the cheap paths.
	stripped := r.stripStyles(q)
	if stripped != q {
		q = stripped
		if id, ok := r.lookupAlias(q); ok {
			return id, true
		}
	}

	for id, f := range fighters {
		if strings.ToLower(f.Name) == q {
			r.memoize(q, id)
			return id, true
		}
	}

	if id, ok := r.fuzzyMatch(q, styleMention, fighters); ok {
		r.memoize(q, id)
		return id, true
	}
	return "", false
}

// nicknameRewrite finds a static nickname inside the query and returns
// the canonical name it maps to.
func (r *Resolver) nicknameRewrite(q string) (string, bool) {
	for _, nick := range r.nicknameKeys {
		if q == nick || containsWord(q, nick) {
			return r.nicknames[nick], true
		}
	}
	return "", false
}

// styleMention returns the canonical style label mentioned in the
// query, if any.
func (r *Resolver) styleMention(q string) string {
	for keyword, label := range r.styles {
		if containsWord(q, keyword) {
			return label
		}
	}
	return ""
}

// stripStyles removes style keywords from the query.
func (r *Resolver) stripStyles(q string) string {
	for keyword := range r.styles {
		for containsWord(q, keyword) {
			q = removeWord(q, keyword)
		}
	}
	return strings.Join(strings.Fields(q), " ")
}

func (r *Resolver) lookupAlias(q string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.aliases[q]
	return id, ok
}

func (r *Resolver) memoize(query, id string) {
	r.mu.Lock()
	r.aliases[query] = id
	r.mu.Unlock()
}

// ensureBulkAliases populates the alias map with every roster
// fighter's lowercase full name and bare last name, once per reset
// cycle. Concurrent callers collapse onto a single population pass.
func (r *Resolver) ensureBulkAliases(fighters map[string]store.Fighter) {
	r.mu.RLock()
	loaded := r.bulkLoaded
	r.mu.RUnlock()
	if loaded {
		return
	}

	r.populate.Do("bulk", func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.bulkLoaded {
			return nil, nil
		}
		for id, f := range fighters {
			name := strings.ToLower(f.Name)
			if name == "" {
				continue
			}
			r.aliases[name] = id
			if last := lastToken(name); last != "" {
				if _, taken := r.aliases[last]; !taken {
					r.aliases[last] = id
				}
			}
		}
		r.bulkLoaded = true
		return nil, nil
	})
}

// fuzzyMatch scores every roster fighter against the query and returns
// the best candidate above the cutoff.
func (r *Resolver) fuzzyMatch(q, styleMention string, fighters map[string]store.Fighter) (string, bool) {
	bestID := ""
	bestScore := 0.0

	for id, f := range fighters {
		score := scoreCandidate(q, styleMention, f)
		// Ties break on id so map iteration order cannot leak through.
		if score > bestScore || (score == bestScore && score > 0 && id < bestID) {
			bestID, bestScore = id, score
		}
	}
	if bestScore < scoreCutoff {
		return "", false
	}
	return bestID, true
}

func scoreCandidate(q, styleMention string, f store.Fighter) float64 {
	name := strings.ToLower(f.Name)
	if name == "" {
		return 0
	}

	nameScore := fuzzy.Ratio(q, name)
	for _, token := range strings.Fields(name) {
		if q == token {
			nameScore = 1
			break
		}
		if len(q) >= minTokenQueryLen && strings.Contains(token, q) {
			if tokenSubstringScore > nameScore {
				nameScore = tokenSubstringScore
			}
			continue
		}
		if s := fuzzy.Ratio(q, token); s > nameScore {
			nameScore = s
		}
	}

	nickScore := 0.0
	if nick := strings.ToLower(f.Nickname); nick != "" {
		if strings.Contains(q, nick) || strings.Contains(nick, q) {
			nickScore = nicknameWeight
		}
	}

	styleScore := 0.0
	if styleMention != "" && strings.EqualFold(f.FightingStyle, styleMention) {
		styleScore = styleWeight
	}

	combined := nameScore
	if nickScore > combined {
		combined = nickScore
	}
	return combined + 0.5*styleScore
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}

// stripPossessives drops trailing possessive markers from each token
// so "gsp's" resolves the same as "gsp".
func stripPossessives(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		f = strings.TrimSuffix(f, "'s")
		f = strings.TrimSuffix(f, "’s")
		fields[i] = strings.TrimSuffix(f, "'")
	}
	return strings.Join(fields, " ")
}

// indexWord returns the index of the first occurrence of word in
// phrase at word boundaries (space-delimited; word itself may contain
// spaces), or -1. A raw substring inside another word never counts, so
// "boxer" is not found in "kickboxer".
func indexWord(phrase, word string) int {
	idx := strings.Index(phrase, word)
	for idx >= 0 {
		before := idx == 0 || phrase[idx-1] == ' '
		end := idx + len(word)
		after := end == len(phrase) || phrase[end] == ' '
		if before && after {
			return idx
		}
		next := strings.Index(phrase[idx+1:], word)
		if next < 0 {
			return -1
		}
		idx += 1 + next
	}
	return -1
}

func containsWord(phrase, word string) bool {
	return indexWord(phrase, word) >= 0
}

func removeWord(phrase, word string) string {
	idx := indexWord(phrase, word)
	if idx < 0 {
		return phrase
	}
	return strings.TrimSpace(phrase[:idx] + phrase[idx+len(word):])
}
