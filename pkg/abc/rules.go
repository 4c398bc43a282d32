package abc

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BarSymbol maps one bar/repeat symbol onto its bar kind. The dialect
// keeps symbols ranked: multi-character entries must be tried before the
// generic single-character bar, since |], ||, [|, [1, [2, :|, |: and ::
// all out-rank a bare |.
type BarSymbol struct {
	Text string
	Kind BarKind
}

// Dialect holds the symbol tables the tokenizer classifies against. The
// default dialect covers the documented ABC symbol set; a rules file may
// extend it, never reduce it.
type Dialect struct {
	// BarSymbols is the ranked bar symbol table, longest entries first.
	BarSymbols []BarSymbol

	// OrnamentChars are markers that may precede a pitch letter inside a
	// note-like run without ever counting as the pitch letter themselves.
	OrnamentChars string
}

// DefaultDialect returns the standard ABC symbol tables, constructed fresh
// so a caller-extended dialect never leaks into later tokenizers.
func DefaultDialect() *Dialect {
	return &Dialect{
		BarSymbols: []BarSymbol{
			{"|]", BarLightHeavy},
			{"||", BarDouble},
			{"[|", BarHeavyLight},
			{"[1", BarFirstEnding},
			{"[2", BarSecondEnding},
			{":|", BarRepeatEnd},
			{"|:", BarRepeatStart},
			{"::", BarRepeatBoth},
			{"|", BarRegular},
		},
		OrnamentChars: "~=^_.uvHLT",
	}
}

// matchBar tries the ranked symbol table against the front of rest and
// returns the first (longest-ranked) hit.
func (d *Dialect) matchBar(rest string) (BarSymbol, bool) {
	for _, sym := range d.BarSymbols {
		if strings.HasPrefix(rest, sym.Text) {
			return sym, true
		}
	}
	return BarSymbol{}, false
}

func (d *Dialect) isOrnamentChar(c byte) bool {
	return strings.IndexByte(d.OrnamentChars, c) >= 0
}

// DialectFile represents the structure of a YAML dialect rules file.
type DialectFile struct {
	Bar      []BarRule      `yaml:"bar"`
	Ornament []OrnamentRule `yaml:"ornament"`
}

// BarRule adds one bar symbol, mapped onto an existing bar kind.
type BarRule struct {
	Text string `yaml:"text"`
	Kind string `yaml:"kind"`
}

// OrnamentRule adds one ornament character to the note scanner.
type OrnamentRule struct {
	Char string `yaml:"char"`
}

// LoadDialectFile loads and parses a YAML dialect rules file.
func LoadDialectFile(filename string) (*DialectFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialect file '%s': %w", filename, err)
	}

	var rules DialectFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in dialect file '%s': %w", filename, err)
	}

	return &rules, nil
}

var barKindNames = map[string]BarKind{
	string(BarRegular):      BarRegular,
	string(BarDouble):       BarDouble,
	string(BarLightHeavy):   BarLightHeavy,
	string(BarHeavyLight):   BarHeavyLight,
	string(BarFirstEnding):  BarFirstEnding,
	string(BarSecondEnding): BarSecondEnding,
	string(BarRepeatEnd):    BarRepeatEnd,
	string(BarRepeatStart):  BarRepeatStart,
	string(BarRepeatBoth):   BarRepeatBoth,
}

// ApplyDialectToDefaults extends the default dialect with the rules from a
// DialectFile. The combined bar table is re-ranked so longer symbols keep
// out-ranking shorter ones.
func ApplyDialectToDefaults(rules *DialectFile) (*Dialect, error) {
	dialect := DefaultDialect()

	for _, rule := range rules.Bar {
		if rule.Text == "" {
			return nil, fmt.Errorf("bar rule with empty text")
		}
		kind, ok := barKindNames[rule.Kind]
		if !ok {
			return nil, fmt.Errorf("bar rule '%s' has unknown kind '%s'", rule.Text, rule.Kind)
		}
		dialect.BarSymbols = append(dialect.BarSymbols, BarSymbol{Text: rule.Text, Kind: kind})
	}
	sort.SliceStable(dialect.BarSymbols, func(i, j int) bool {
		return len(dialect.BarSymbols[i].Text) > len(dialect.BarSymbols[j].Text)
	})

	for _, rule := range rules.Ornament {
		if len(rule.Char) != 1 {
			return nil, fmt.Errorf("ornament rule '%s' must be a single character", rule.Char)
		}
		if !strings.Contains(dialect.OrnamentChars, rule.Char) {
			dialect.OrnamentChars += rule.Char
		}
	}

	return dialect, nil
}

// brokenRhythmMultipliers is the fixed multiplier table, column 0 for the
// left neighbour and column 1 for the right. Marker runs outside this
// table are rejected rather than truncated.
var brokenRhythmMultipliers = map[string][2]float64{
	">":   {1.5, 0.5},
	"<":   {0.5, 1.5},
	">>":  {1.75, 0.25},
	"<<":  {0.25, 1.75},
	">>>": {1.875, 0.125},
	"<<<": {0.125, 1.875},
}

func brokenRhythmMultiplier(marker string, side Side) (float64, error) {
	cols, ok := brokenRhythmMultipliers[marker]
	if !ok {
		return 0, tokenErrorf(UnsupportedBrokenRhythmRun, marker,
			"marker run %q is not in the multiplier table", marker)
	}
	if side == SideLeft {
		return cols[0], nil
	}
	return cols[1], nil
}
