package compliance

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Policy selects what counts as expected and what counts as evidence of
// service. The league has used more than one reading over the years, so the
// reconciler takes it as configuration.
type Policy struct {
	Name string `json:"name"`
	// AcceptPrintable treats gamesheet-derived printable records as service:
	// served_effective = max(served, printable).
	AcceptPrintable bool `json:"accept_printable"`
	// CountRedCards adds one expected suspension per red card.
	CountRedCards bool `json:"count_red_cards"`
}

// Policy presets.
var (
	Strict    = Policy{Name: "strict", AcceptPrintable: false, CountRedCards: true}
	Printable = Policy{Name: "printable", AcceptPrintable: true, CountRedCards: true}
	Legacy    = Policy{Name: "legacy", AcceptPrintable: true, CountRedCards: false}
)

// DefaultPolicy trusts only authoritative served records.
var DefaultPolicy = Strict

// ParsePolicy resolves a preset by name. An empty name selects the default.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Strict.Name:
		return Strict, nil
	case Printable.Name:
		return Printable, nil
	case Legacy.Name:
		return Legacy, nil
	default:
		return Policy{}, errors.Wrapf(ErrUnknownPolicy, "%q", name)
	}
}

// effectiveServed applies the evidence rule.
func (p Policy) effectiveServed(served, printable int) int {
	if p.AcceptPrintable {
		return max(served, printable)
	}
	return served
}
