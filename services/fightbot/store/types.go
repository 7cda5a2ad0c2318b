// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the cache-backed data store for fighters and divisions.
//
// Every lookup walks the same ordered fallback: the best-effort Redis tier,
// then the local expiring cache, then a rate-limited origin fetch. Origin
// failures are logged and downgraded to ErrNotFound at this boundary; they
// never reach the classifier or the request layer as errors.
package store

import (
	"strings"

	"github.com/octagonops/fightbot/services/fightbot/upstream"
)

// RetiredIDPrefix namespaces ids of curated historical fighters that the
// live API does not carry. Lookups for these ids route to the static
// registry and never hit the fetcher.
const RetiredIDPrefix = "retired:"

// Fighter is the canonical fighter record the rest of the service reads.
// Physical attributes are inches/lbs; a value of 0 means "unknown" and is
// excluded from numeric comparisons, not treated as a measurement.
type Fighter struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Nickname      string  `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Category      string  `json:"category,omitempty" yaml:"category,omitempty"`
	Wins          int     `json:"wins" yaml:"wins"`
	Losses        int     `json:"losses" yaml:"losses"`
	Draws         int     `json:"draws" yaml:"draws"`
	Height        float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Weight        float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reach         float64 `json:"reach,omitempty" yaml:"reach,omitempty"`
	LegReach      float64 `json:"legReach,omitempty" yaml:"legReach,omitempty"`
	FightingStyle string  `json:"fightingStyle,omitempty" yaml:"fightingStyle,omitempty"`
	Status        string  `json:"status,omitempty" yaml:"status,omitempty"`
	PlaceOfBirth  string  `json:"placeOfBirth,omitempty" yaml:"placeOfBirth,omitempty"`
	TrainsAt      string  `json:"trainsAt,omitempty" yaml:"trainsAt,omitempty"`
	OctagonDebut  string  `json:"octagonDebut,omitempty" yaml:"octagonDebut,omitempty"`
	Notes         string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Retired reports whether the fighter comes from the static registry.
func (f Fighter) Retired() bool {
	return strings.HasPrefix(f.ID, RetiredIDPrefix)
}

// Contender is one ranked fighter in a division.
type Contender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Division is the canonical division record: id slug, display name,
// optional champion, and the ordered contender list.
type Division struct {
	ID           string      `json:"id"`
	CategoryName string      `json:"categoryName"`
	ChampionID   string      `json:"championId,omitempty"`
	ChampionName string      `json:"championName,omitempty"`
	Contenders   []Contender `json:"contenders"`
}

// Attribute names a numeric physical attribute usable in comparisons.
type Attribute string

const (
	AttrHeight   Attribute = "height"
	AttrWeight   Attribute = "weight"
	AttrReach    Attribute = "reach"
	AttrLegReach Attribute = "legReach"
)

// Value returns the fighter's value for attr, 0 when unknown.
func (f Fighter) Value(attr Attribute) float64 {
	switch attr {
	case AttrHeight:
		return f.Height
	case AttrWeight:
		return f.Weight
	case AttrReach:
		return f.Reach
	case AttrLegReach:
		return f.LegReach
	default:
		return 0
	}
}

// fighterFromPayload maps a raw API record to the canonical type,
// coercing string numerics (invalid → 0).
func fighterFromPayload(id string, p upstream.FighterPayload) Fighter {
	return Fighter{
		ID:            id,
		Name:          p.Name,
		Nickname:      p.Nickname,
		Category:      p.Category,
		Wins:          upstream.ParseCount(p.Wins),
		Losses:        upstream.ParseCount(p.Losses),
		Draws:         upstream.ParseCount(p.Draws),
		Height:        upstream.ParseMeasure(p.Height),
		Weight:        upstream.ParseMeasure(p.Weight),
		Reach:         upstream.ParseMeasure(p.Reach),
		LegReach:      upstream.ParseMeasure(p.LegReach),
		FightingStyle: p.FightingStyle,
		Status:        p.Status,
		PlaceOfBirth:  p.PlaceOfBirth,
		TrainsAt:      p.TrainsAt,
		OctagonDebut:  p.OctagonDebut,
	}
}

func divisionFromPayload(p upstream.DivisionPayload) Division {
	d := Division{
		ID:           p.ID,
		CategoryName: p.CategoryName,
		ChampionID:   p.Champion.ID,
		ChampionName: p.Champion.ChampionName,
	}
	for _, c := range p.Fighters {
		d.Contenders = append(d.Contenders, Contender{ID: c.ID, Name: c.Name})
	}
	return d
}
