// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/octagonops/fightbot/services/fightbot/divisions"
	"github.com/octagonops/fightbot/services/fightbot/store"
)

type fakeResolver struct {
	known map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) (string, bool) {
	id, ok := f.known[query]
	return id, ok
}

type fakeRankings struct {
	divisions []store.Division
	fail      bool
}

func (f *fakeRankings) Rankings(ctx context.Context) ([]store.Division, error) {
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return f.divisions, nil
}

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	normalizer, err := divisions.New(nil)
	if err != nil {
		t.Fatalf("divisions.New: %v", err)
	}
	resolver := &fakeResolver{known: map[string]string{
		"jones":           "jon-jones",
		"jon jones":       "jon-jones",
		"pereira":         "alex-pereira",
		"alex pereira":    "alex-pereira",
		"islam makhachev": "islam-makhachev",
		"khabib":          "retired:khabib-nurmagomedov",
	}}
	rankings := &fakeRankings{divisions: []store.Division{
		{ID: "lightweight", CategoryName: "Lightweight Division"},
		{ID: "light-heavyweight", CategoryName: "Light Heavyweight Division"},
		{ID: "heavyweight", CategoryName: "Heavyweight Division"},
	}}
	return New(resolver, normalizer, rankings, nil)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	c := newClassifier(t)

	tests := []struct {
		name string
		msg  string
		want Result
	}{
		{
			"vs comparison",
			"jones vs pereira",
			Result{Type: TypeFighterComparison, FighterID: "jon-jones", FighterID2: "alex-pereira"},
		},
		{
			"vs with lead-in",
			"who would win jones vs pereira",
			Result{Type: TypeFighterComparison, FighterID: "jon-jones", FighterID2: "alex-pereira"},
		},
		{
			"taller than",
			"is jones taller than pereira",
			Result{Type: TypeFighterComparison, FighterID: "jon-jones", FighterID2: "alex-pereira", Attribute: store.AttrHeight},
		},
		{
			"heavier or",
			"who is heavier, jones or pereira?",
			Result{Type: TypeFighterComparison, FighterID: "jon-jones", FighterID2: "alex-pereira", Attribute: store.AttrWeight},
		},
		{
			"compare without attribute",
			"compare jon jones and alex pereira",
			Result{Type: TypeFighterComparison, FighterID: "jon-jones", FighterID2: "alex-pereira"},
		},
		{
			"record phrasing",
			"what is jon jones' record",
			Result{Type: TypeFighterInfo, FighterID: "jon-jones"},
		},
		{
			"bare token question",
			"pereira?",
			Result{Type: TypeFighterInfo, FighterID: "alex-pereira"},
		},
		{
			"longest reach",
			"who has the longest reach",
			Result{Type: TypePhysicalComparison, Attribute: store.AttrReach, Comparison: CompareMax},
		},
		{
			"shortest fighter",
			"who is the shortest fighter",
			Result{Type: TypePhysicalComparison, Attribute: store.AttrHeight, Comparison: CompareMin},
		},
		{
			"extremal with division filter",
			"who is the heaviest fighter in the lightweight division",
			Result{Type: TypePhysicalComparison, Attribute: store.AttrWeight, Comparison: CompareMax, DivisionID: "lightweight"},
		},
		{
			"p4p",
			"show me the p4p rankings",
			Result{Type: TypeDivisionRankings, DivisionID: divisions.P4PMens},
		},
		{
			"womens p4p",
			"women's pound for pound",
			Result{Type: TypeDivisionRankings, DivisionID: divisions.P4PWomens},
		},
		{
			"division champion",
			"who is the lightweight champion",
			Result{Type: TypeDivisionChampion, DivisionID: "lightweight"},
		},
		{
			"light heavyweight disambiguation",
			"who is the light heavyweight champion",
			Result{Type: TypeDivisionChampion, DivisionID: "light-heavyweight"},
		},
		{
			"division rankings",
			"show me the middleweight rankings",
			Result{Type: TypeDivisionRankings, DivisionID: "middleweight"},
		},
		{
			"attribute of fighter",
			"what is the height of jon jones",
			Result{Type: TypeFighterAttribute, FighterID: "jon-jones", Attribute: store.AttrHeight},
		},
		{
			"possessive attribute",
			"jon jones's reach",
			Result{Type: TypeFighterAttribute, FighterID: "jon-jones", Attribute: store.AttrReach},
		},
		{
			"how tall",
			"how tall is jon jones",
			Result{Type: TypeFighterAttribute, FighterID: "jon-jones", Attribute: store.AttrHeight},
		},
		{
			"who is",
			"who is jon jones",
			Result{Type: TypeFighterInfo, FighterID: "jon-jones"},
		},
		{
			"tell me about retired",
			"tell me about khabib",
			Result{Type: TypeFighterInfo, FighterID: "retired:khabib-nurmagomedov"},
		},
		{
			"bare rankings",
			"rankings",
			Result{Type: TypeAllRankings},
		},
		{
			"bare champions",
			"who are the champions",
			Result{Type: TypeAllChampions},
		},
		{
			"numeric weight class",
			"205",
			Result{Type: TypeDivisionRankings, DivisionID: "light-heavyweight"},
		},
		{
			"goat query",
			"who is the goat",
			Result{Type: TypeDivisionRankings, DivisionID: divisions.P4PMens},
		},
		{
			"general mma",
			"how do ufc scorecards work",
			Result{Type: TypeGeneralMMA},
		},
		{
			"bare fighter name",
			"jon jones",
			Result{Type: TypeFighterInfo, FighterID: "jon-jones"},
		},
		{
			"bare division name",
			"lightweight",
			Result{Type: TypeDivisionInfo, DivisionID: "lightweight"},
		},
		{
			"unintelligible",
			"qzxv bnmt",
			Result{Type: TypeUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(ctx, tt.msg)
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.msg, got, tt.want)
			}
		})
	}
}

// A comparison whose names cannot both be resolved must fall through
// rather than surface as a broken comparison.
func TestClassify_ComparisonFallsThrough(t *testing.T) {
	ctx := context.Background()
	c := newClassifier(t)

	got := c.Classify(ctx, "jones vs somebody nobody knows")
	if got.Type == TypeFighterComparison {
		t.Fatalf("comparison matched with one unresolvable name: %+v", got)
	}
}

func TestClassify_RankingsDownDegradesScan(t *testing.T) {
	ctx := context.Background()
	normalizer, err := divisions.New(nil)
	if err != nil {
		t.Fatalf("divisions.New: %v", err)
	}
	c := New(&fakeResolver{known: map[string]string{}}, normalizer,
		&fakeRankings{fail: true}, nil)

	// The division-name scan cannot load; the bare keyword still
	// produces the generic intent.
	got := c.Classify(ctx, "rankings")
	if got.Type != TypeAllRankings {
		t.Errorf("Classify(rankings) = %+v, want all_rankings", got)
	}
}

type blockingRankings struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRankings) Rankings(ctx context.Context) ([]store.Division, error) {
	b.entered <- struct{}{}
	<-b.release
	return []store.Division{
		{ID: "heavyweight", CategoryName: "Heavyweight Division"},
	}, nil
}

// A cold division-name load must not hold the classifier lock across
// the rankings fetch; concurrent classifications reach the source
// instead of queueing behind the first one.
func TestClassify_ColdScanDoesNotSerialize(t *testing.T) {
	ctx := context.Background()
	normalizer, err := divisions.New(nil)
	if err != nil {
		t.Fatalf("divisions.New: %v", err)
	}
	rankings := &blockingRankings{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	c := New(&fakeResolver{known: map[string]string{}}, normalizer, rankings, nil)

	results := make(chan Result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- c.Classify(ctx, "rankings")
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-rankings.entered:
		case <-time.After(2 * time.Second):
			t.Fatal("classification queued behind an in-flight rankings fetch")
		}
	}
	close(rankings.release)
	for i := 0; i < 2; i++ {
		if got := <-results; got.Type != TypeAllRankings {
			t.Errorf("concurrent classify = %+v, want all_rankings", got)
		}
	}
}

func TestClassifier_Reset(t *testing.T) {
	ctx := context.Background()
	c := newClassifier(t)

	// Prime the division-name cache, then reset and swap the source.
	c.Classify(ctx, "who are the champions")
	c.Reset()

	c.rankings = &fakeRankings{fail: true}
	got := c.Classify(ctx, "who are the champions")
	if got.Type != TypeAllChampions {
		t.Errorf("post-reset classify = %+v, want all_champions", got)
	}
}
