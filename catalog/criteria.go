package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

// All disables a criterion.
const All = "all"

// PriceBand is a half-open hourly price range [Min, Max), or a single
// price when Exact is set.
type PriceBand struct {
	Name  string
	Min   float64
	Max   float64
	Exact bool
}

var (
	AnyPrice  = PriceBand{Name: All}
	Band10_20 = PriceBand{Name: "10-20", Min: 10, Max: 20}
	Band20_30 = PriceBand{Name: "20-30", Min: 20, Max: 30}
	Band30_40 = PriceBand{Name: "30-40", Min: 30, Max: 40}
	Band40Up  = PriceBand{Name: "40-up", Min: 40, Max: math.Inf(1)}
)

// Bands lists the selectable price bands in ascending order.
var Bands = []PriceBand{Band10_20, Band20_30, Band30_40, Band40Up}

var ErrInvalidCriteria = errors.New("invalid filter criteria")

func (b PriceBand) IsAll() bool {
	return b.Name == "" || b.Name == All
}

// Contains reports whether price falls in the band. The "all" band matches everything.
func (b PriceBand) Contains(price float64) bool {
	if b.IsAll() {
		return true
	}
	if b.Exact {
		return price == b.Min
	}
	return price >= b.Min && price < b.Max
}

func (b PriceBand) String() string {
	if b.IsAll() {
		return All
	}
	return b.Name
}

// BandOf returns the band holding price; prices below 10 have none.
func BandOf(price float64) (PriceBand, bool) {
	for _, b := range Bands {
		if b.Contains(price) {
			return b, true
		}
	}
	return PriceBand{}, false
}

// bandAliases maps alternate spellings to bands. "40+" arrives as "40 " from a
// form-encoded query string, where '+' decodes to a space.
var bandAliases = map[string]PriceBand{
	"40+": Band40Up,
	"40 ": Band40Up,
}

// ParsePriceBand accepts a band name ("10-20", "20-30", "30-40", "40-up" or "40+")
// or a bare amount ("30", "30$"), which selects teachers charging exactly that price.
func ParsePriceBand(s string) (PriceBand, error) {
	if b, ok := bandAliases[strings.ToLower(strings.TrimLeft(s, " "))]; ok {
		return b, nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == All {
		return AnyPrice, nil
	}
	for _, b := range Bands {
		if s == b.Name {
			return b, nil
		}
	}
	if b, ok := bandAliases[s]; ok {
		return b, nil
	}
	amount := strings.TrimSpace(strings.TrimSuffix(s, "$"))
	price, err := strconv.ParseFloat(amount, 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return PriceBand{}, errors.Wrapf(ErrInvalidCriteria, "unknown price band %q", s)
	}
	return PriceBand{Name: amount, Min: price, Max: price, Exact: true}, nil
}

// Criteria are compound filters; empty or "all" fields match everything.
type Criteria struct {
	Language string    `json:"language"`
	Level    string    `json:"level"`
	Price    PriceBand `json:"-"`
}

// ParseCriteria builds criteria from raw query values, rejecting unknown levels and bands.
func ParseCriteria(language, level, price string) (Criteria, error) {
	c := Criteria{
		Language: strings.TrimSpace(language),
		Level:    strings.TrimSpace(level),
	}
	if strings.EqualFold(c.Language, All) {
		c.Language = ""
	}
	if strings.EqualFold(c.Level, All) {
		c.Level = ""
	}
	if c.Level != "" && !models.IsLevel(c.Level) {
		return Criteria{}, errors.Wrapf(ErrInvalidCriteria, "unknown level %q", c.Level)
	}

	band, err := ParsePriceBand(price)
	if err != nil {
		return Criteria{}, err
	}
	c.Price = band
	return c, nil
}

// Equal compares criteria after treating "all" and empty alike.
func (c Criteria) Equal(o Criteria) bool {
	norm := func(s string) string {
		if strings.EqualFold(strings.TrimSpace(s), All) {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return strings.EqualFold(norm(c.Language), norm(o.Language)) &&
		norm(c.Level) == norm(o.Level) &&
		c.Price.String() == o.Price.String()
}
