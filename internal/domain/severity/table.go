// Package severity holds the misconduct weight table. It is the single source
// for both in-process scoring and the generated SQL used by bulk queries.
package severity

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/okian/cardwatch/internal/domain/model"
)

// Fixed weights outside the marker table.
const (
	DefaultYellowWeight = 1.0
	DefaultRedWeight    = 4.0
	BenchMultiplier     = 1.5
)

// rule maps a set of reason markers to one category. Rules are evaluated in
// slice order and the first rule with a matching marker wins.
type rule struct {
	category model.Category
	weight   float64
	markers  []string
}

var redRules = []rule{
	{model.ViolentConduct, 9.0, []string{"category a", "violent conduct"}},
	{model.Spitting, 7.5, []string{"spitting"}},
	{model.AbuseOfOfficial, 7.0, []string{"category d", "abuse of an official", "abusive language", "foul and abusive"}},
	{model.SeriousFoulPlay, 6.0, []string{"serious foul play", "category b"}},
	{model.DOGSO, 4.5, []string{"denying obvious", "dogso", "category c"}},
	{model.SecondCaution, 3.0, []string{"second caution", "two yellow", "second yellow"}},
}

var yellowRules = []rule{
	{model.Dissent, 2.5, []string{"dissent"}},
	{model.UnsportingBehaviour, 2.0, []string{"unsporting"}},
	{model.PersistentInfringement, 1.5, []string{"persistent infringement"}},
	{model.ProceduralYellow, 1.0, []string{"delay", "distance", "entering", "leaving", "procedural"}},
}

var baseWeights = func() map[model.Category]float64 {
	m := map[model.Category]float64{
		model.YellowOther: DefaultYellowWeight,
		model.RedOther:    DefaultRedWeight,
	}
	for _, r := range redRules {
		m[r.category] = r.weight
	}
	for _, r := range yellowRules {
		m[r.category] = r.weight
	}
	return m
}()

func rulesFor(t model.CardType) []rule {
	if t == model.Red {
		return redRules
	}
	return yellowRules
}

func fallback(t model.CardType) model.Category {
	if t == model.Red {
		return model.RedOther
	}
	return model.YellowOther
}

// Classify maps free-text reason to a category by case-insensitive substring
// match against the marker table. Unmatched reasons fall back to the card
// type's default category; nothing is ever rejected.
func Classify(t model.CardType, reason string) model.Category {
	// Casers are stateful, so one per call.
	folded := cases.Fold().String(reason)
	for _, r := range rulesFor(t) {
		for _, m := range r.markers {
			if strings.Contains(folded, m) {
				return r.category
			}
		}
	}
	return fallback(t)
}

// BaseWeight returns the unmultiplied weight for a category.
func BaseWeight(c model.Category) float64 {
	if w, ok := baseWeights[c]; ok {
		return w
	}
	if c.CardType() == model.Red {
		return DefaultRedWeight
	}
	return DefaultYellowWeight
}

// WeightOf is the table contract: weight(card_type, reason) with the bench
// multiplier applied once when bench is set.
func WeightOf(t model.CardType, reason string, bench bool) float64 {
	w := BaseWeight(Classify(t, reason))
	if bench {
		w *= BenchMultiplier
	}
	return w
}

// CategoryOf returns the card's category, classifying the reason when the
// store left it unset.
func CategoryOf(c model.CardEvent) model.Category {
	if c.Category != model.CategoryUnknown && c.Category.CardType() == cardTypeOrYellow(c.Type) {
		return c.Category
	}
	return Classify(c.Type, c.Reason)
}

// Weight returns the severity weight of a single card.
func Weight(c model.CardEvent) float64 {
	w := BaseWeight(CategoryOf(c))
	if c.IsBench {
		w *= BenchMultiplier
	}
	return w
}

func cardTypeOrYellow(t model.CardType) model.CardType {
	if t == model.Red {
		return model.Red
	}
	return model.Yellow
}
