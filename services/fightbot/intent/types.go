// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import "github.com/octagonops/fightbot/services/fightbot/store"

// Type enumerates the classified question kinds.
type Type string

const (
	TypeFighterInfo        Type = "fighter_info"
	TypeFighterAttribute   Type = "fighter_attribute"
	TypeFighterComparison  Type = "fighter_comparison"
	TypePhysicalComparison Type = "physical_comparison"
	TypeDivisionChampion   Type = "division_champion"
	TypeDivisionRankings   Type = "division_rankings"
	TypeDivisionInfo       Type = "division_info"
	TypeAllChampions       Type = "all_champions"
	TypeAllRankings        Type = "all_rankings"
	TypeGeneralMMA         Type = "general_mma_question"
	TypeUnknown            Type = "unknown"
)

// Comparison direction for extremal (physical_comparison) queries.
const (
	CompareMax = "max"
	CompareMin = "min"
)

// Result is a classified message. Only the fields the matched type
// needs are populated; an empty Attribute on a fighter comparison
// means an unspecified "overall" comparison.
type Result struct {
	Type       Type
	FighterID  string
	FighterID2 string
	DivisionID string
	Attribute  store.Attribute
	Comparison string
}
