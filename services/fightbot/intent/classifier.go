// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package intent classifies free-text MMA questions into typed
// intents. Classification is a fixed-priority cascade of matchers;
// the first matcher that both pattern-matches and resolves its
// referenced entities wins. A matcher that looks right syntactically
// but cannot resolve its entities falls through to the next one, so
// "jones vs pereira" is never mis-read as a fighter-info query for
// "jones". The cascade order is a deliberate disambiguation policy
// and must not be reordered.
package intent

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/octagonops/fightbot/services/fightbot/divisions"
	"github.com/octagonops/fightbot/services/fightbot/store"
)

// EntityResolver resolves a fighter reference to a canonical id.
type EntityResolver interface {
	Resolve(ctx context.Context, query string) (string, bool)
}

// DivisionNormalizer resolves a division phrase to a canonical id and
// accepts live category-name extensions.
type DivisionNormalizer interface {
	Normalize(phrase string) (string, bool)
	Extend(categoryName, id string)
}

// RankingsSource supplies the current division list for the loaded
// division-name scan.
type RankingsSource interface {
	Rankings(ctx context.Context) ([]store.Division, error)
}

// Classifier runs the intent cascade. Safe for concurrent use.
type Classifier struct {
	resolver   EntityResolver
	normalizer DivisionNormalizer
	rankings   RankingsSource
	logger     *slog.Logger
	tracer     trace.Tracer

	mu       sync.Mutex
	divNames []divName // loaded once per invalidation cycle
	loaded   bool
}

type divName struct {
	id   string
	name string // lowercased, " division" suffix stripped
}

// New builds a Classifier over the given collaborators.
func New(resolver EntityResolver, normalizer DivisionNormalizer,
	rankings RankingsSource, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		resolver:   resolver,
		normalizer: normalizer,
		rankings:   rankings,
		logger:     logger.With("component", "intent"),
		tracer:     otel.Tracer("fightbot/intent"),
	}
}

// Reset drops the cached division-name list. Wired to the store's
// invalidation hook.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.divNames = nil
	c.loaded = false
	c.mu.Unlock()
}

type step func(ctx context.Context, msg string) (Result, bool)

// Classify maps a sanitized message to a typed intent. Never errors:
// the weakest outcome is the unknown intent.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	ctx, span := c.tracer.Start(ctx, "intent.classify")
	defer span.End()

	msg := strings.ToLower(strings.TrimSpace(text))

	steps := []step{
		c.fighterComparison,   // 1
		c.recordQuery,         // 2
		c.bareNameQuestion,    // 3
		c.physicalComparison,  // 4
		c.poundForPound,       // 5
		c.divisionChampion,    // 6
		c.divisionRankings,    // 7
		c.fighterAttribute,    // 8
		c.whoIs,               // 9
		c.bareRankingKeyword,  // 10
		c.bareChampionKeyword, // 11
		c.numericWeightClass,  // 12
		c.openQuery,           // 13
		c.bareFighterName,     // 14
		c.bareDivisionName,    // 15
	}

	result := Result{Type: TypeUnknown}
	matched := len(steps) + 1
	for i, s := range steps {
		if r, ok := s(ctx, msg); ok {
			result, matched = r, i+1
			break
		}
	}

	span.SetAttributes(
		attribute.String("intent.type", string(result.Type)),
		attribute.Int("intent.step", matched),
	)
	classifiedTotal.WithLabelValues(string(result.Type)).Inc()
	c.logger.Debug("classified message",
		"type", result.Type, "step", matched)
	return result
}

// ---- step 1: two-fighter comparison ----

var (
	vsRe      = regexp.MustCompile(`^(.*?)\s+(?:vs\.?|versus)\s+(.*?)\??$`)
	compareRe = regexp.MustCompile(`\bcompare\s+(.+?)\s+(?:and|to|with)\s+(.+?)\??$`)
	whoVerbRe = regexp.MustCompile(`^who(?:'s|s| is| has(?: a| the)?)\s+(\w+)(?: \w+)?[,:]?\s+(.+?)\s+or\s+(.+?)\??$`)
	thanRe    = regexp.MustCompile(`\bis\s+(.+?)\s+(\w+)\s+than\s+(.+?)\??$`)
)

func (c *Classifier) fighterComparison(ctx context.Context, msg string) (Result, bool) {
	type candidate struct {
		a, b string
		attr store.Attribute
	}
	var cands []candidate

	if m := vsRe.FindStringSubmatch(msg); m != nil {
		cands = append(cands, candidate{a: m[1], b: m[2]})
	}
	if m := compareRe.FindStringSubmatch(msg); m != nil {
		cands = append(cands, candidate{a: m[1], b: m[2]})
	}
	if m := whoVerbRe.FindStringSubmatch(msg); m != nil {
		if attr, ok := comparisonAttribute(m[1]); ok {
			cands = append(cands, candidate{a: m[2], b: m[3], attr: attr})
		}
	}
	if m := thanRe.FindStringSubmatch(msg); m != nil {
		if attr, ok := comparisonAttribute(m[2]); ok {
			cands = append(cands, candidate{a: m[1], b: m[3], attr: attr})
		}
	}

	for _, cand := range cands {
		a, okA := c.resolver.Resolve(ctx, cleanSpan(cand.a))
		b, okB := c.resolver.Resolve(ctx, cleanSpan(cand.b))
		if okA && okB && a != b {
			return Result{
				Type:       TypeFighterComparison,
				FighterID:  a,
				FighterID2: b,
				Attribute:  cand.attr,
			}, true
		}
	}
	return Result{}, false
}

// comparisonAttribute maps a comparison verb to the attribute being
// compared. "stronger"/"better" compare nothing in particular; they
// yield an empty attribute, meaning an overall comparison.
func comparisonAttribute(verb string) (store.Attribute, bool) {
	switch verb {
	case "taller", "shorter":
		return store.AttrHeight, true
	case "heavier", "lighter":
		return store.AttrWeight, true
	case "longer", "rangier":
		return store.AttrReach, true
	case "stronger", "better", "tougher", "scarier":
		return "", true
	default:
		return "", false
	}
}

// ---- step 2: record/stats phrasing ----

func (c *Classifier) recordQuery(ctx context.Context, msg string) (Result, bool) {
	if !containsAnyWord(msg, "record", "stats", "statistics") {
		return Result{}, false
	}
	span := dropWords(msg, "record", "stats", "statistics",
		"what", "whats", "what's", "is", "are", "the", "of", "for",
		"show", "me", "tell", "about", "his", "her", "their")
	if span == "" {
		return Result{}, false
	}
	if id, ok := c.resolver.Resolve(ctx, span); ok {
		return Result{Type: TypeFighterInfo, FighterID: id}, true
	}
	return Result{}, false
}

// ---- step 3: single bare token ending in "?" ----

var bareTokenRe = regexp.MustCompile(`^([a-z0-9.'-]{4,})\?$`)

func (c *Classifier) bareNameQuestion(ctx context.Context, msg string) (Result, bool) {
	m := bareTokenRe.FindStringSubmatch(msg)
	if m == nil {
		return Result{}, false
	}
	if id, ok := c.resolver.Resolve(ctx, m[1]); ok {
		return Result{Type: TypeFighterInfo, FighterID: id}, true
	}
	return Result{}, false
}

// ---- step 4: roster-wide extremal query ----

var superlatives = map[string]struct {
	dir  string
	attr store.Attribute // zero = infer from an attribute keyword
}{
	"tallest":  {CompareMax, store.AttrHeight},
	"shortest": {CompareMin, ""},
	"heaviest": {CompareMax, store.AttrWeight},
	"lightest": {CompareMin, store.AttrWeight},
	"longest":  {CompareMax, ""},
	"biggest":  {CompareMax, ""},
	"smallest": {CompareMin, ""},
}

func (c *Classifier) physicalComparison(ctx context.Context, msg string) (Result, bool) {
	var dir string
	var attr store.Attribute
	for _, tok := range tokens(msg) {
		if s, ok := superlatives[tok]; ok {
			dir, attr = s.dir, s.attr
			break
		}
	}
	if dir == "" {
		return Result{}, false
	}

	if mentioned, ok := attributeMention(msg); ok {
		attr = mentioned
	}
	if attr == "" {
		// "longest" without an attribute keyword reads as reach;
		// biggest/smallest alone are too vague to act on.
		if !strings.Contains(msg, "longest") {
			return Result{}, false
		}
		attr = store.AttrReach
	}

	res := Result{Type: TypePhysicalComparison, Attribute: attr, Comparison: dir}
	if div, ok := c.divisionFilter(msg); ok {
		res.DivisionID = div
	}
	return res, true
}

var inDivisionRe = regexp.MustCompile(`\b(?:in|at|among)\s+(?:the\s+)?([a-z0-9' -]+?)\s*\??$`)

// divisionFilter extracts a trailing "in <division>" clause.
func (c *Classifier) divisionFilter(msg string) (string, bool) {
	m := inDivisionRe.FindStringSubmatch(msg)
	if m == nil {
		return "", false
	}
	return c.normalizer.Normalize(m[1])
}

// ---- step 5: pound-for-pound ----

func (c *Classifier) poundForPound(ctx context.Context, msg string) (Result, bool) {
	if !strings.Contains(msg, "pound for pound") &&
		!strings.Contains(msg, "pound-for-pound") &&
		!containsAnyWord(msg, "p4p") {
		return Result{}, false
	}
	id := divisions.P4PMens
	if mentionsWomen(msg) {
		id = divisions.P4PWomens
	}
	return Result{Type: TypeDivisionRankings, DivisionID: id}, true
}

// ---- steps 6 and 7: champion / rankings phrasing with a division span ----

var championWords = []string{"champion", "champions", "champ", "champs", "title", "belt", "titleholder"}

var rankingWords = []string{"rankings", "ranking", "ranked", "rank", "contenders", "standings", "top"}

var spanStopWords = []string{
	"who", "whos", "who's", "what", "whats", "what's", "is", "are", "the",
	"a", "an", "current", "currently", "reigning", "now", "right", "show",
	"me", "tell", "about", "list", "give", "holds", "hold", "holder", "of",
	"in", "at", "for", "division", "top", "10", "15", "5",
}

func (c *Classifier) divisionChampion(ctx context.Context, msg string) (Result, bool) {
	if !containsAnyWord(msg, championWords...) {
		return Result{}, false
	}
	span := dropWords(msg, append(championWords, spanStopWords...)...)
	if span == "" {
		return Result{}, false
	}
	if id, ok := c.normalizer.Normalize(span); ok {
		return Result{Type: TypeDivisionChampion, DivisionID: id}, true
	}
	return Result{}, false
}

func (c *Classifier) divisionRankings(ctx context.Context, msg string) (Result, bool) {
	if !containsAnyWord(msg, rankingWords...) {
		return Result{}, false
	}
	span := dropWords(msg, append(rankingWords, spanStopWords...)...)
	if span == "" {
		return Result{}, false
	}
	if id, ok := c.normalizer.Normalize(span); ok {
		return Result{Type: TypeDivisionRankings, DivisionID: id}, true
	}
	return Result{}, false
}

// ---- step 8: attribute of a named fighter ----

var attrOfRe = regexp.MustCompile(`\b(?:height|weight|reach|leg reach)\s+(?:of|for)\s+(.+?)\??$`)

var possessiveAttrRe = regexp.MustCompile(`^(?:what is |whats |what's )?(.+?)'s?\s+(?:height|weight|reach|leg reach)\??$`)

var howTallRe = regexp.MustCompile(`\bhow\s+(tall|heavy|long|much)\b.*?\b(?:is|does)\s+(.+?)(?:\s+weigh)?\??$`)

func (c *Classifier) fighterAttribute(ctx context.Context, msg string) (Result, bool) {
	attr, hasAttr := attributeMention(msg)
	if !hasAttr {
		return Result{}, false
	}

	var span string
	if m := attrOfRe.FindStringSubmatch(msg); m != nil {
		span = m[1]
	} else if m := possessiveAttrRe.FindStringSubmatch(msg); m != nil {
		span = m[1]
	} else if m := howTallRe.FindStringSubmatch(msg); m != nil {
		span = m[2]
	} else {
		return Result{}, false
	}

	if id, ok := c.resolver.Resolve(ctx, cleanSpan(span)); ok {
		return Result{Type: TypeFighterAttribute, FighterID: id, Attribute: attr}, true
	}
	return Result{}, false
}

// ---- step 9: "who is / tell me about X" ----

var whoIsRe = regexp.MustCompile(`^(?:who is|who's|whos|tell me about|what do you know about|info on|information about)\s+(.+?)\??$`)

func (c *Classifier) whoIs(ctx context.Context, msg string) (Result, bool) {
	m := whoIsRe.FindStringSubmatch(msg)
	if m == nil {
		return Result{}, false
	}
	if id, ok := c.resolver.Resolve(ctx, cleanSpan(m[1])); ok {
		return Result{Type: TypeFighterInfo, FighterID: id}, true
	}
	return Result{}, false
}

// ---- steps 10 and 11: bare ranking / champion keywords ----

func (c *Classifier) bareRankingKeyword(ctx context.Context, msg string) (Result, bool) {
	if !containsAnyWord(msg, rankingWords...) {
		return Result{}, false
	}
	if id, ok := c.scanDivisionNames(ctx, msg); ok {
		return Result{Type: TypeDivisionRankings, DivisionID: id}, true
	}
	return Result{Type: TypeAllRankings}, true
}

func (c *Classifier) bareChampionKeyword(ctx context.Context, msg string) (Result, bool) {
	if !containsAnyWord(msg, championWords...) {
		return Result{}, false
	}
	if id, ok := c.scanDivisionNames(ctx, msg); ok {
		return Result{Type: TypeDivisionChampion, DivisionID: id}, true
	}
	return Result{Type: TypeAllChampions}, true
}

// scanDivisionNames looks for a loaded division display name appearing
// literally in the message. Loading also extends the normalizer with
// the live category names, so later fuzzy normalization knows them.
func (c *Classifier) scanDivisionNames(ctx context.Context, msg string) (string, bool) {
	names, ok := c.divisionNames(ctx)
	if !ok {
		return "", false
	}

	best := divName{}
	for _, d := range names {
		// Prefer the longest matching name so "light heavyweight"
		// beats "heavyweight".
		if strings.Contains(msg, d.name) && len(d.name) > len(best.name) {
			best = d
		}
	}
	return best.id, best.id != ""
}

// divisionNames returns the cached division-name list, loading it once
// per invalidation cycle. The rankings fetch happens outside the lock
// so a cold cache never serializes classifications behind upstream
// I/O; concurrent loaders race harmlessly and the first commit wins.
func (c *Classifier) divisionNames(ctx context.Context) ([]divName, bool) {
	c.mu.Lock()
	if c.loaded {
		names := c.divNames
		c.mu.Unlock()
		return names, true
	}
	c.mu.Unlock()

	divs, err := c.rankings.Rankings(ctx)
	if err != nil {
		c.logger.Warn("rankings unavailable for division scan", "error", err)
		return nil, false
	}
	loaded := make([]divName, 0, len(divs))
	for _, d := range divs {
		name := strings.TrimSuffix(strings.ToLower(d.CategoryName), " division")
		if name == "" {
			continue
		}
		loaded = append(loaded, divName{id: d.ID, name: name})
		// Extend is idempotent, so a racing loader doubling up is fine.
		c.normalizer.Extend(d.CategoryName, d.ID)
	}

	c.mu.Lock()
	if !c.loaded {
		c.divNames = loaded
		c.loaded = true
	}
	names := c.divNames
	c.mu.Unlock()
	return names, true
}

// ---- step 12: numeric weight-class mention ----

var weightNumberRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(kg|kgs|kilos?|kilograms?|lbs?|pounds?)?\b`)

func (c *Classifier) numericWeightClass(ctx context.Context, msg string) (Result, bool) {
	m := weightNumberRe.FindStringSubmatch(msg)
	if m == nil {
		return Result{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Result{}, false
	}
	if strings.HasPrefix(m[2], "k") {
		value *= 2.20462
	}
	if value < 100 || value > 300 {
		return Result{}, false
	}

	id := divisions.WeightClassFor(value)
	if containsAnyWord(msg, championWords...) {
		return Result{Type: TypeDivisionChampion, DivisionID: id}, true
	}
	return Result{Type: TypeDivisionRankings, DivisionID: id}, true
}

// ---- step 13: open-query heuristics ----

var mmaVocabulary = []string{
	"ufc", "mma", "octagon", "fight", "fights", "fighter", "fighters",
	"knockout", "ko", "submission", "grappling", "striking", "bout",
	"cage", "takedown",
}

func (c *Classifier) openQuery(ctx context.Context, msg string) (Result, bool) {
	if containsAnyWord(msg, "best", "greatest", "goat") {
		id := divisions.P4PMens
		if mentionsWomen(msg) {
			id = divisions.P4PWomens
		}
		return Result{Type: TypeDivisionRankings, DivisionID: id}, true
	}
	if containsAnyWord(msg, mmaVocabulary...) {
		return Result{Type: TypeGeneralMMA}, true
	}
	return Result{}, false
}

// ---- steps 14 and 15: whole message is itself an entity ----

func (c *Classifier) bareFighterName(ctx context.Context, msg string) (Result, bool) {
	if id, ok := c.resolver.Resolve(ctx, msg); ok {
		return Result{Type: TypeFighterInfo, FighterID: id}, true
	}
	return Result{}, false
}

func (c *Classifier) bareDivisionName(ctx context.Context, msg string) (Result, bool) {
	if id, ok := c.normalizer.Normalize(msg); ok {
		return Result{Type: TypeDivisionInfo, DivisionID: id}, true
	}
	return Result{}, false
}

// ---- shared text helpers ----

// attributeMention finds a physical-attribute keyword in the message.
// Leg reach outranks reach (its phrase contains it), and the compound
// division names ("lightweight") never trip the weight keywords
// because matching is per whole token.
func attributeMention(msg string) (store.Attribute, bool) {
	if strings.Contains(msg, "leg reach") || containsAnyWord(msg, "legs") {
		return store.AttrLegReach, true
	}
	toks := tokens(msg)
	for _, t := range toks {
		if t == "reach" || t == "arms" || t == "wingspan" || t == "rangiest" {
			return store.AttrReach, true
		}
	}
	for _, t := range toks {
		if t == "height" || strings.HasPrefix(t, "tall") || t == "shortest" {
			return store.AttrHeight, true
		}
	}
	for _, t := range toks {
		if strings.HasPrefix(t, "weigh") || strings.HasPrefix(t, "heav") || t == "lightest" {
			return store.AttrWeight, true
		}
	}
	return "", false
}

func mentionsWomen(msg string) bool {
	return strings.Contains(msg, "women") || strings.Contains(msg, "woman") ||
		strings.Contains(msg, "female")
}

// tokens splits the message into lowercase words with surrounding
// punctuation trimmed.
func tokens(msg string) []string {
	fields := strings.Fields(msg)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.Trim(f, ".,!?:;'\""); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAnyWord(msg string, words ...string) bool {
	toks := tokens(msg)
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(msg, w) {
				return true
			}
			continue
		}
		for _, t := range toks {
			if t == w {
				return true
			}
		}
	}
	return false
}

// dropWords removes the given words from the message and returns what
// remains, whitespace-normalized.
func dropWords(msg string, words ...string) string {
	drop := make(map[string]struct{}, len(words))
	for _, w := range words {
		drop[w] = struct{}{}
	}
	var kept []string
	for _, t := range tokens(msg) {
		if _, gone := drop[t]; !gone {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// cleanSpan trims filler lead-ins and punctuation from an extracted
// name span.
func cleanSpan(span string) string {
	toks := tokens(span)
	lead := map[string]struct{}{
		"who": {}, "whos": {}, "who's": {}, "would": {}, "win": {},
		"wins": {}, "is": {}, "are": {}, "the": {}, "a": {}, "an": {},
		"between": {}, "fight": {}, "match": {}, "matchup": {},
	}
	for len(toks) > 0 {
		if _, ok := lead[toks[0]]; !ok {
			break
		}
		toks = toks[1:]
	}
	return strings.Join(toks, " ")
}
