// Package badge derives achievement badges from the progression ledger.
package badge

import "github.com/rpggio/streamos/internal/domain/ledger"

// Badge is one evaluated achievement.
type Badge struct {
	ID       string `json:"id"`
	Icon     string `json:"icon"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

// Definition pairs a badge with its unlock predicate.
type Definition struct {
	ID        string
	Icon      string
	Name      string
	Predicate func(ledger.Stats) bool
}

// Registry is the fixed set of badges, in display order.
var Registry = []Definition{
	{ID: "streak3", Icon: "🔥", Name: "Consistency Rookie (3 Days)", Predicate: func(s ledger.Stats) bool { return s.Streak >= 3 }},
	{ID: "streak7", Icon: "⚡", Name: "Algorithm Favorite (7 Days)", Predicate: func(s ledger.Stats) bool { return s.Streak >= 7 }},
	{ID: "level5", Icon: "⭐", Name: "Affiliate Status (Lvl 5)", Predicate: func(s ledger.Stats) bool { return s.Level >= 5 }},
	{ID: "xp1000", Icon: "🦾", Name: "Content Machine (1k XP)", Predicate: func(s ledger.Stats) bool { return s.CurrentXP >= 1000 }},
}

// Evaluate returns one badge per registry entry for the given stats.
func Evaluate(stats ledger.Stats) []Badge {
	return EvaluateWith(Registry, stats)
}

// EvaluateWith evaluates an explicit registry.
func EvaluateWith(defs []Definition, stats ledger.Stats) []Badge {
	out := make([]Badge, 0, len(defs))
	for _, d := range defs {
		out = append(out, Badge{
			ID:       d.ID,
			Icon:     d.Icon,
			Name:     d.Name,
			Unlocked: d.Predicate != nil && d.Predicate(stats),
		})
	}
	return out
}

// Unlocked filters the unlocked badges.
func Unlocked(badges []Badge) []Badge {
	var out []Badge
	for _, b := range badges {
		if b.Unlocked {
			out = append(out, b)
		}
	}
	return out
}
