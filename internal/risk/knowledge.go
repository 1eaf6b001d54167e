package risk

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/viper"

	"github.com/leainsurance/travelrisk/pkg/money"
)

// Season values. SeasonAll doubles as the wildcard on claim records and the
// fallback key in destination tables.
const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
	SeasonAll    = "all"
)

// Age groups.
const (
	AgeGroupYoungAdult = "young_adult"
	AgeGroupAdult      = "adult"
	AgeGroupMiddleAged = "middle_aged"
	AgeGroupSenior     = "senior"
	AgeGroupAll        = "all"
)

const neutralMultiplier = 1.0

//go:embed knowledge.yaml
var embeddedKnowledge []byte

// ClaimRecord is one historical claim from the knowledge base.
type ClaimRecord struct {
	Destination string  `json:"destination" mapstructure:"destination"`
	Activity    string  `json:"activity" mapstructure:"activity"`
	ClaimType   string  `json:"claim_type" mapstructure:"claim_type"`
	Amount      float64 `json:"amount" mapstructure:"amount"`
	AgeGroup    string  `json:"age_group" mapstructure:"age_group"`
	Season      string  `json:"season" mapstructure:"season"`
	Severity    string  `json:"severity" mapstructure:"severity"`
}

// RiskModel holds the multiplier tables. It is immutable once built; all
// reads go through the lookup methods.
type RiskModel struct {
	activities   map[string]float64
	destinations map[string]map[string]float64
	ageGroups    map[string]float64
}

// ActivityMultiplier returns the multiplier for activity, 1.0 when unknown.
func (m *RiskModel) ActivityMultiplier(activity string) float64 {
	if v, ok := m.activities[activity]; ok {
		return v
	}
	return neutralMultiplier
}

// DestinationMultiplier resolves destination x season in two steps: the
// season entry of a known destination, else that destination's "all" entry.
// Unknown destinations are neutral.
func (m *RiskModel) DestinationMultiplier(destination, season string) float64 {
	seasons, ok := m.destinations[destination]
	if !ok {
		return neutralMultiplier
	}
	if v, ok := seasons[season]; ok {
		return v
	}
	if v, ok := seasons[SeasonAll]; ok {
		return v
	}
	return neutralMultiplier
}

// AgeMultiplier returns the multiplier for an age group, 1.0 when unknown.
func (m *RiskModel) AgeMultiplier(ageGroup string) float64 {
	if v, ok := m.ageGroups[ageGroup]; ok {
		return v
	}
	return neutralMultiplier
}

// KnowledgeBase is the static claims sample plus the risk model.
type KnowledgeBase struct {
	currency        money.Currency
	homeDestination string
	claims          []ClaimRecord
	model           *RiskModel
}

// Currency is the currency every amount in the knowledge base is quoted in.
func (kb *KnowledgeBase) Currency() money.Currency { return kb.currency }

// HomeDestination is used for trips that do not name a destination.
func (kb *KnowledgeBase) HomeDestination() string { return kb.homeDestination }

// Model returns the risk multiplier tables.
func (kb *KnowledgeBase) Model() *RiskModel { return kb.model }

// Claims returns a copy of the historical claims sample in load order.
func (kb *KnowledgeBase) Claims() []ClaimRecord {
	out := make([]ClaimRecord, len(kb.claims))
	copy(out, kb.claims)
	return out
}

// Summary describes what the knowledge base knows about.
type Summary struct {
	Currency        string   `json:"currency"`
	HomeDestination string   `json:"home_destination"`
	ClaimCount      int      `json:"claim_count"`
	Destinations    []string `json:"destinations"`
	Activities      []string `json:"activities"`
	AgeGroups       []string `json:"age_groups"`
}

// Summary lists known keys in sorted order.
func (kb *KnowledgeBase) Summary() Summary {
	return Summary{
		Currency:        kb.currency.Code(),
		HomeDestination: kb.homeDestination,
		ClaimCount:      len(kb.claims),
		Destinations:    sortedKeys(kb.model.destinations),
		Activities:      sortedKeys(kb.model.activities),
		AgeGroups:       sortedKeys(kb.model.ageGroups),
	}
}

type knowledgeFile struct {
	Currency        string             `mapstructure:"currency"`
	HomeDestination string             `mapstructure:"home_destination"`
	Claims          []ClaimRecord      `mapstructure:"claims"`
	Activities      map[string]float64 `mapstructure:"activities"`
	Destinations    []struct {
		Code    string             `mapstructure:"code"`
		Seasons map[string]float64 `mapstructure:"seasons"`
	} `mapstructure:"destinations"`
	AgeGroups map[string]float64 `mapstructure:"age_groups"`
}

// LoadKnowledgeBase parses a YAML knowledge base and validates it.
func LoadKnowledgeBase(r io.Reader) (*KnowledgeBase, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var raw knowledgeFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}

	return raw.build()
}

// LoadKnowledgeBaseFile loads a knowledge base from path.
func LoadKnowledgeBaseFile(path string) (*KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base %s: %w", path, err)
	}
	defer f.Close()
	return LoadKnowledgeBase(f)
}

// DefaultKnowledgeBase returns the knowledge base compiled into the binary.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := LoadKnowledgeBase(bytes.NewReader(embeddedKnowledge))
	if err != nil {
		panic("embedded knowledge base is invalid: " + err.Error())
	}
	return kb
}

func (f *knowledgeFile) build() (*KnowledgeBase, error) {
	currency, err := money.NewCurrency(f.Currency)
	if err != nil {
		return nil, err
	}
	if f.HomeDestination == "" {
		return nil, fmt.Errorf("home_destination is required")
	}
	if len(f.Claims) == 0 {
		return nil, fmt.Errorf("at least one claim record is required")
	}

	model := &RiskModel{
		activities:   make(map[string]float64, len(f.Activities)),
		destinations: make(map[string]map[string]float64, len(f.Destinations)),
		ageGroups:    make(map[string]float64, len(f.AgeGroups)),
	}

	for name, mult := range f.Activities {
		if mult < 0 {
			return nil, fmt.Errorf("activity %q has negative multiplier %v", name, mult)
		}
		model.activities[name] = mult
	}
	for name, mult := range f.AgeGroups {
		if mult < 0 {
			return nil, fmt.Errorf("age group %q has negative multiplier %v", name, mult)
		}
		model.ageGroups[name] = mult
	}
	for _, d := range f.Destinations {
		if d.Code == "" {
			return nil, fmt.Errorf("destination without code")
		}
		if _, dup := model.destinations[d.Code]; dup {
			return nil, fmt.Errorf("destination %s listed twice", d.Code)
		}
		if _, ok := d.Seasons[SeasonAll]; !ok {
			return nil, fmt.Errorf("destination %s has no %q season entry", d.Code, SeasonAll)
		}
		seasons := make(map[string]float64, len(d.Seasons))
		for season, mult := range d.Seasons {
			if mult < 0 {
				return nil, fmt.Errorf("destination %s season %s has negative multiplier %v", d.Code, season, mult)
			}
			seasons[season] = mult
		}
		model.destinations[d.Code] = seasons
	}

	for i, c := range f.Claims {
		if c.Amount < 0 {
			return nil, fmt.Errorf("claim %d has negative amount", i)
		}
	}

	claims := make([]ClaimRecord, len(f.Claims))
	copy(claims, f.Claims)

	return &KnowledgeBase{
		currency:        currency,
		homeDestination: f.HomeDestination,
		claims:          claims,
		model:           model,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
