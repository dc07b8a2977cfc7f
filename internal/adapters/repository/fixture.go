package repository

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/okian/cardwatch/internal/domain/model"
)

// dateLayout is how fixtures and most scraped rows store game dates.
const dateLayout = "2006-01-02"

// datedLayouts are the other forms the league site prints a game date in.
var datedLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Mon, Jan 2, 2006",
}

// yearlessLayouts carry no year; it is taken from the scrape time.
var yearlessLayouts = []string{"Jan 2", "January 2", "Mon, Jan 2", "Mon Jan 2"}

// Fixture is a league snapshot in the scraper's shape. Cards and suspensions
// reference games by id; games reference divisions by name.
type Fixture struct {
	Divisions   []FixtureDivision   `yaml:"divisions"`
	Games       []FixtureGame       `yaml:"games"`
	Cards       []FixtureCard       `yaml:"cards"`
	Suspensions []FixtureSuspension `yaml:"suspensions"`
}

type FixtureDivision struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Level int    `yaml:"level"`
}

type FixtureGame struct {
	ID       int64  `yaml:"id"`
	Division string `yaml:"division"`
	Number   string `yaml:"number"`
	Date     string `yaml:"date"`
	Location string `yaml:"location"`
	Home     string `yaml:"home"`
	Away     string `yaml:"away"`
}

type FixtureCard struct {
	Game   int64  `yaml:"game"`
	Player string `yaml:"player"`
	Number string `yaml:"number"`
	Team   string `yaml:"team"`
	Minute string `yaml:"minute"`
	Reason string `yaml:"reason"`
	Type   string `yaml:"type"`
}

type FixtureSuspension struct {
	Game   int64  `yaml:"game"`
	Player string `yaml:"player"`
	Team   string `yaml:"team"`
	Kind   string `yaml:"kind"` // served | printable
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and validates a YAML fixture. Unknown keys are
// rejected so typos do not silently drop records.
func ParseFixture(raw []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode fixture"), ErrInvalidFixture)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	divisions := make(map[string]bool, len(fx.Divisions))
	for _, d := range fx.Divisions {
		divisions[d.Name] = true
	}
	games := make(map[int64]bool, len(fx.Games))
	for _, g := range fx.Games {
		if games[g.ID] {
			return errors.Wrapf(ErrInvalidFixture, "duplicate game %d", g.ID)
		}
		if !divisions[g.Division] {
			return errors.Wrapf(ErrInvalidFixture, "game %d: unknown division %q", g.ID, g.Division)
		}
		if _, err := parseDate(g.Date, time.Time{}); err != nil {
			return errors.Wrapf(ErrInvalidFixture, "game %d: bad date %q", g.ID, g.Date)
		}
		games[g.ID] = true
	}
	for i, c := range fx.Cards {
		if !games[c.Game] {
			return errors.Wrapf(ErrInvalidFixture, "card %d: unknown game %d", i, c.Game)
		}
		if _, ok := parseCardType(c.Type); !ok {
			return errors.Wrapf(ErrInvalidFixture, "card %d: bad card type %q", i, c.Type)
		}
	}
	for i, s := range fx.Suspensions {
		if !games[s.Game] {
			return errors.Wrapf(ErrInvalidFixture, "suspension %d: unknown game %d", i, s.Game)
		}
		if _, ok := parseKind(s.Kind); !ok {
			return errors.Wrapf(ErrInvalidFixture, "suspension %d: bad kind %q", i, s.Kind)
		}
	}
	return nil
}

// parseDate reads a game date in any of the scraper's forms. A date without
// a year takes the year of ref, or the year before when that would place the
// game after ref. With a zero ref such dates are rejected.
func parseDate(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range yearlessLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if ref.IsZero() {
			return time.Time{}, errors.Newf("date %q has no year", s)
		}
		ref = ref.UTC()
		d := time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if d.After(ref) {
			d = d.AddDate(-1, 0, 0)
		}
		return d, nil
	}
	return time.Time{}, errors.Newf("parse date %q", s)
}
