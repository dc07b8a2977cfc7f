package model

// Category is the closed set of misconduct classifications. It is derived
// from the free-text reason once, when a card is read from the store.
type Category int

// Yellow-card categories (CSDC category E) followed by red-card categories.
const (
	CategoryUnknown Category = iota
	ProceduralYellow
	PersistentInfringement
	UnsportingBehaviour
	Dissent
	YellowOther
	SecondCaution
	DOGSO
	SeriousFoulPlay
	AbuseOfOfficial
	Spitting
	ViolentConduct
	RedOther
)

var categoryNames = map[Category]string{
	CategoryUnknown:        "unknown",
	ProceduralYellow:       "procedural_yellow",
	PersistentInfringement: "persistent_infringement",
	UnsportingBehaviour:    "unsporting_behaviour",
	Dissent:                "dissent",
	YellowOther:            "yellow_other",
	SecondCaution:          "second_caution",
	DOGSO:                  "dogso",
	SeriousFoulPlay:        "serious_foul_play",
	AbuseOfOfficial:        "abuse_of_official",
	Spitting:               "spitting",
	ViolentConduct:         "violent_conduct",
	RedOther:               "red_other",
}

// String returns the snake_case name used in reports.
func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

// MarshalText renders the category by name in JSON maps and bodies.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name. Unknown names become CategoryUnknown.
func (c *Category) UnmarshalText(b []byte) error {
	*c = CategoryUnknown
	for k, n := range categoryNames {
		if n == string(b) {
			*c = k
			break
		}
	}
	return nil
}

// CardType returns the card colour a category belongs to.
func (c Category) CardType() CardType {
	if c >= SecondCaution {
		return Red
	}
	return Yellow
}
