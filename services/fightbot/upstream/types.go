// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package upstream talks to the rankings API: a rate-limited HTTP client
// with retry/backoff and the raw payload types the core reads.
package upstream

import (
	"strconv"
	"strings"
)

// FighterPayload is a fighter record as the API returns it. Numeric fields
// arrive as strings ("", "27", `72.5`) and are coerced by the accessors;
// anything unparsable coerces to 0, which downstream treats as "unknown".
type FighterPayload struct {
	Name          string `json:"name"`
	Nickname      string `json:"nickname"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Wins          string `json:"wins"`
	Losses        string `json:"losses"`
	Draws         string `json:"draws"`
	Height        string `json:"height"`
	Weight        string `json:"weight"`
	Reach         string `json:"reach"`
	LegReach      string `json:"legReach"`
	FightingStyle string `json:"fightingStyle"`
	PlaceOfBirth  string `json:"placeOfBirth"`
	TrainsAt      string `json:"trainsAt"`
	OctagonDebut  string `json:"octagonDebut"`
}

// ChampionPayload identifies a division's current champion.
type ChampionPayload struct {
	ID           string `json:"id"`
	ChampionName string `json:"championName"`
}

// ContenderPayload is one ranked fighter in a division listing.
type ContenderPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DivisionPayload is a division record as the API returns it.
type DivisionPayload struct {
	ID           string             `json:"id"`
	CategoryName string             `json:"categoryName"`
	Champion     ChampionPayload    `json:"champion"`
	Fighters     []ContenderPayload `json:"fighters"`
}

// ParseCount coerces a win/loss/draw field to a non-negative int.
// Missing or unparsable values coerce to 0.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseMeasure coerces a physical-attribute field (inches or lbs) to a
// float64. Missing, unparsable, or negative values coerce to 0, which the
// store excludes from numeric comparisons.
func ParseMeasure(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
