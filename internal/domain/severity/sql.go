package severity

import (
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/internal/domain/model"
)

// Columns names the SQL columns the weight expression reads.
type Columns struct {
	Reason   string
	CardType string
	Player   string
}

// SQLWeightExpr generates the per-row weight expression from the same rule
// table Classify uses. The result is a squirrel Sqlizer so callers can embed
// it in SUM(...) or select it directly. The card type is matched without
// regard to case.
func SQLWeightExpr(cols Columns) sq.Sqlizer {
	isRed := sq.Expr("LOWER("+cols.CardType+") = ?", strings.ToLower(string(model.Red)))
	base := sq.Case().
		When(isRed, caseFor(cols.Reason, redRules, DefaultRedWeight)).
		Else(caseFor(cols.Reason, yellowRules, DefaultYellowWeight))

	bench := sq.Case().
		When(sq.Eq{cols.Player: model.BenchPlayer}, literal(BenchMultiplier)).
		Else(literal(1.0))

	return sq.ConcatExpr("(", base, ") * (", bench, ")")
}

// SQLWeightSum wraps the weight expression in SUM and returns it as SQL.
func SQLWeightSum(cols Columns) (string, []any, error) {
	s, args, err := SQLWeightExpr(cols).ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "build weight expression")
	}
	return "SUM(" + s + ")", args, nil
}

func caseFor(reasonCol string, rules []rule, otherwise float64) sq.CaseBuilder {
	c := sq.Case()
	for _, r := range rules {
		match := make(sq.Or, 0, len(r.markers))
		for _, m := range r.markers {
			match = append(match, sq.Expr("LOWER("+reasonCol+") LIKE ?", "%"+m+"%"))
		}
		c = c.When(match, literal(r.weight))
	}
	return c.Else(literal(otherwise))
}

func literal(w float64) string {
	return strconv.FormatFloat(w, 'f', 1, 64)
}
