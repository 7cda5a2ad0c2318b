// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package format renders store entities into the user-facing answer
// strings. Everything here is a pure function; unknown numeric fields
// (zero) render as "unknown" rather than as a number.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/octagonops/fightbot/services/fightbot/store"
)

// attributeLabel maps attributes to display wording and units.
var attributeLabel = map[store.Attribute]struct {
	label string
	unit  string
}{
	store.AttrHeight:   {"height", `"`},
	store.AttrWeight:   {"weight", " lbs"},
	store.AttrReach:    {"reach", `"`},
	store.AttrLegReach: {"leg reach", `"`},
}

// Measure renders an attribute value, "unknown" when it is zero.
func Measure(attr store.Attribute, value float64) string {
	if value <= 0 {
		return "unknown"
	}
	l := attributeLabel[attr]
	return strconv.FormatFloat(value, 'f', -1, 64) + l.unit
}

// FighterCard renders the full single-fighter answer.
func FighterCard(f store.Fighter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", f.Name)
	if f.Nickname != "" {
		fmt.Fprintf(&b, " %q", f.Nickname)
	}
	fmt.Fprintf(&b, " — record %d-%d-%d", f.Wins, f.Losses, f.Draws)
	if f.Category != "" {
		fmt.Fprintf(&b, ", %s", f.Category)
	}
	fmt.Fprintf(&b, ". Height: %s, weight: %s, reach: %s, leg reach: %s.",
		Measure(store.AttrHeight, f.Height),
		Measure(store.AttrWeight, f.Weight),
		Measure(store.AttrReach, f.Reach),
		Measure(store.AttrLegReach, f.LegReach))
	if f.FightingStyle != "" {
		fmt.Fprintf(&b, " Fighting style: %s.", f.FightingStyle)
	}
	if f.Retired() && f.Notes != "" {
		fmt.Fprintf(&b, " %s", f.Notes)
	}
	return b.String()
}

// AttributeAnswer renders a single-attribute answer for a fighter.
func AttributeAnswer(f store.Fighter, attr store.Attribute) string {
	l := attributeLabel[attr]
	value := f.Value(attr)
	if value <= 0 {
		return fmt.Sprintf("%s's %s is not on record.", f.Name, l.label)
	}
	return fmt.Sprintf("%s's %s is %s.", f.Name, l.label, Measure(attr, value))
}

// Comparison renders a two-fighter comparison. With an attribute it
// compares just that measure; without one it renders the overall
// side-by-side (records plus every attribute).
func Comparison(a, b store.Fighter, attr store.Attribute) string {
	if attr != "" {
		return attributeComparison(a, b, attr)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d-%d-%d) vs %s (%d-%d-%d).",
		a.Name, a.Wins, a.Losses, a.Draws,
		b.Name, b.Wins, b.Losses, b.Draws)
	for _, at := range []store.Attribute{
		store.AttrHeight, store.AttrWeight, store.AttrReach, store.AttrLegReach,
	} {
		l := attributeLabel[at]
		fmt.Fprintf(&sb, " %s: %s vs %s.",
			capitalize(l.label), Measure(at, a.Value(at)), Measure(at, b.Value(at)))
	}
	return sb.String()
}

func attributeComparison(a, b store.Fighter, attr store.Attribute) string {
	l := attributeLabel[attr]
	va, vb := a.Value(attr), b.Value(attr)
	if va <= 0 || vb <= 0 {
		return fmt.Sprintf("I don't have %s on record for both %s and %s.",
			l.label, a.Name, b.Name)
	}
	switch {
	case va == vb:
		return fmt.Sprintf("%s and %s have the same %s: %s.",
			a.Name, b.Name, l.label, Measure(attr, va))
	case va > vb:
		return fmt.Sprintf("%s has the greater %s: %s vs %s.",
			a.Name, l.label, Measure(attr, va), Measure(attr, vb))
	default:
		return fmt.Sprintf("%s has the greater %s: %s vs %s.",
			b.Name, l.label, Measure(attr, vb), Measure(attr, va))
	}
}

// Extremal renders a physical-comparison (roster-wide extremal)
// answer over an already-ranked fighter list.
func Extremal(fighters []store.Fighter, attr store.Attribute, findMax bool) string {
	if len(fighters) == 0 {
		return "I couldn't find any fighters with that attribute on record."
	}
	l := attributeLabel[attr]
	direction := "lowest"
	if findMax {
		direction = "highest"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Fighters with the %s %s:", direction, l.label)
	for i, f := range fighters {
		fmt.Fprintf(&b, " %d. %s (%s)", i+1, f.Name, Measure(attr, f.Value(attr)))
		if i < len(fighters)-1 {
			b.WriteString(";")
		}
	}
	b.WriteString(".")
	return b.String()
}

// ChampionLine renders a division's champion.
func ChampionLine(d store.Division) string {
	if d.ChampionName == "" {
		return fmt.Sprintf("The %s title is currently vacant.", displayName(d))
	}
	return fmt.Sprintf("The %s champion is %s.", displayName(d), d.ChampionName)
}

// RankingsList renders a division's champion and ordered contenders.
func RankingsList(d store.Division) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s rankings:", displayName(d))
	if d.ChampionName != "" {
		fmt.Fprintf(&b, " C. %s", d.ChampionName)
	}
	for i, c := range d.Contenders {
		b.WriteString(";")
		fmt.Fprintf(&b, " %d. %s", i+1, c.Name)
	}
	b.WriteString(".")
	return b.String()
}

// AllChampions renders one champion line per division.
func AllChampions(divs []store.Division) string {
	if len(divs) == 0 {
		return "I couldn't load the current champions."
	}
	lines := make([]string, 0, len(divs))
	for _, d := range divs {
		if d.ChampionName == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", displayName(d), d.ChampionName))
	}
	return "Current champions — " + strings.Join(lines, "; ") + "."
}

// AllRankings lists the available divisions.
func AllRankings(divs []store.Division) string {
	if len(divs) == 0 {
		return "I couldn't load the current rankings."
	}
	names := make([]string, 0, len(divs))
	for _, d := range divs {
		names = append(names, displayName(d))
	}
	return "I track rankings for: " + strings.Join(names, ", ") +
		". Ask about any of them."
}

// DivisionInfo renders a division summary.
func DivisionInfo(d store.Division) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:", displayName(d))
	if d.ChampionName != "" {
		fmt.Fprintf(&b, " champion %s,", d.ChampionName)
	}
	fmt.Fprintf(&b, " %d ranked contenders.", len(d.Contenders))
	return b.String()
}

// GeneralMMA is the fallback for recognized-but-unanswerable MMA talk.
func GeneralMMA() string {
	return "I can answer questions about fighters, records, physical attributes, " +
		"champions, and rankings. Try asking about a specific fighter or division."
}

// UnknownHelp is the answer for unclassifiable messages.
func UnknownHelp() string {
	return "I didn't understand that. Ask me about a fighter " +
		`("who is Jon Jones?"), a comparison ("Jones vs Pereira"), ` +
		`or a division ("lightweight rankings").`
}

// Not-found messages are specific per entity kind; internal errors
// never leak into them.

func FighterNotFound() string {
	return "Sorry, I couldn't find that fighter."
}

func DivisionNotFound() string {
	return "Sorry, I couldn't find that division."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func displayName(d store.Division) string {
	if d.CategoryName != "" {
		return d.CategoryName
	}
	return d.ID
}
