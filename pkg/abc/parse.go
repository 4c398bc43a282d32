package abc

import (
	"strconv"
	"strings"
)

// maxChordDepth is a defensive cap on chord recursion. The grammar does
// not nest chords, so anything deeper is malformed input.
const maxChordDepth = 2

// preParse performs the local, context-free extraction for a token.
// It runs before the handler's context pass and never needs neighbours.
func (t *Token) preParse() error {
	switch t.Type {
	case MetadataTokenType:
		colon := strings.IndexByte(t.Source, ':')
		if colon < 0 {
			return tokenErrorf(NoAssociatedValue, t.Source, "metadata line has no colon")
		}
		tag := t.Source[:colon]
		data := strings.TrimSpace(stripComment(t.Source[colon+1:]))
		t.Tag = &tag
		t.Data = &data
	case BrokenRhythmTokenType:
		data := strings.TrimSpace(t.Source)
		t.Data = &data
	}
	return nil
}

// stripComment cuts a trailing %-comment off a metadata value.
func stripComment(s string) string {
	if i := strings.IndexByte(s, '%'); i >= 0 {
		return s[:i]
	}
	return s
}

// TimeSignature returns the numerator, denominator, and written symbol of
// an M: field. Only callable on a meter token; anything else fails with
// NoAssociatedValue.
func (t *Token) TimeSignature() (int, int, MeterSymbol, error) {
	if !t.IsMeter() {
		return 0, 0, "", tokenErrorf(NoAssociatedValue, t.Source, "time signature requested on a non-meter token")
	}
	switch *t.Data {
	case "C":
		return 4, 4, MeterCommon, nil
	case "C|":
		return 2, 2, MeterCut, nil
	}
	num, den, err := parseFraction(*t.Data)
	if err != nil {
		return 0, 0, "", tokenErrorf(InvalidTimeSignature, t.Source, "meter %q is not C, C|, or n/d", *t.Data)
	}
	return num, den, MeterNormal, nil
}

// DefaultQuarterLength computes the default note duration, in quarter
// lengths, declared by this token. An L: field declares it directly; an
// M: field implies it from the meter (fast meters get sixteenths, slow
// meters get eighths). Anything else fails with NoAssociatedValue.
func (t *Token) DefaultQuarterLength() (float64, error) {
	switch {
	case t.IsDefaultNoteLength():
		num, den, err := parseFraction(*t.Data)
		if err != nil {
			return 0, tokenErrorf(MalformedFraction, t.Source, "unit note length %q is not n/d", *t.Data)
		}
		return float64(num) / float64(den) * 4.0, nil
	case t.IsMeter():
		num, den, _, err := t.TimeSignature()
		if err != nil {
			return 0, err
		}
		if float64(num)/float64(den) < 0.75 {
			return 0.25, nil
		}
		return 0.5, nil
	}
	return 0, tokenErrorf(NoAssociatedValue, t.Source, "default length requested on a token that declares none")
}

// parseFraction parses a plain n/d field value into its integer halves.
func parseFraction(s string) (int, int, error) {
	left, right, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, strconv.ErrSyntax
	}
	num, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, err
	}
	den, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, err
	}
	if den == 0 {
		return 0, 0, strconv.ErrRange
	}
	return num, den, nil
}

// splitChordSymbols collects the leading quoted guitar-chord annotations
// in src, non-overlapping and left to right, and returns them (quotes
// included) along with the remainder starting just after the last span.
func splitChordSymbols(src string) ([]string, string) {
	if !strings.Contains(src, `"`) {
		return nil, src
	}
	var symbols []string
	rest := src
	last := 0
	for i := 0; i < len(src); {
		if src[i] != '"' {
			i++
			continue
		}
		j := strings.IndexByte(src[i+1:], '"')
		if j < 0 {
			break
		}
		end := i + 1 + j
		symbols = append(symbols, src[i:end+1])
		last = end + 1
		i = end + 1
	}
	if last > 0 {
		rest = src[last:]
	}
	return symbols, rest
}

// pitchName resolves the canonical pitch string (letter, accidental
// marks, octave) for a note-like run. nil with no error encodes a rest.
func pitchName(src string) (*string, error) {
	letterIdx := -1
	for i := 0; i < len(src); i++ {
		c := src[i]
		if (c >= 'a' && c <= 'g') || (c >= 'A' && c <= 'G') || c == 'z' {
			letterIdx = i
			break
		}
	}
	if letterIdx < 0 {
		return nil, tokenErrorf(NoPitchInformation, src, "no pitch letter in note run")
	}
	letter := src[letterIdx]
	if letter == 'z' {
		return nil, nil
	}

	octave := 4
	if letter >= 'a' {
		octave = 5
	}
	octave += strings.Count(src, "'")
	octave -= strings.Count(src, ",")

	// Flats collect before sharps before naturals, one mark per source
	// accidental, so pathological input like ^^ survives as ##.
	var accidentals strings.Builder
	accidentals.WriteString(strings.Repeat("-", strings.Count(src, "_")))
	accidentals.WriteString(strings.Repeat("#", strings.Count(src, "^")))
	accidentals.WriteString(strings.Repeat("n", strings.Count(src, "=")))

	name := strings.ToUpper(string(letter)) + accidentals.String() + strconv.Itoa(octave)
	return &name, nil
}

// quarterLength computes the duration of a note-like run in quarter
// lengths, scaling the default by the run's numeric suffix and then by
// any assigned broken rhythm multiplier.
func quarterLength(src string, defaultQuarterLength float64, broken *BrokenRhythm) (float64, error) {
	numStr := durationRun(src)

	var ql float64
	switch {
	case numStr == "":
		ql = defaultQuarterLength
	case numStr == "/":
		ql = defaultQuarterLength * 0.5
	case numStr[0] == '/':
		den, err := strconv.Atoi(numStr[1:])
		if err != nil || den == 0 {
			return 0, tokenErrorf(MalformedFraction, src, "bad duration divisor %q", numStr)
		}
		ql = defaultQuarterLength / float64(den)
	case strings.Contains(numStr, "/"):
		num, den, err := parseFraction(numStr)
		if err != nil || den == 0 {
			return 0, tokenErrorf(MalformedFraction, src, "bad duration fraction %q", numStr)
		}
		ql = defaultQuarterLength * float64(num) / float64(den)
	default:
		mult, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, tokenErrorf(MalformedFraction, src, "bad duration multiplier %q", numStr)
		}
		ql = defaultQuarterLength * float64(mult)
	}

	if broken != nil {
		mult, err := brokenRhythmMultiplier(broken.Marker, broken.Side)
		if err != nil {
			return 0, err
		}
		ql *= mult
	}
	return ql, nil
}

// durationRun extracts the first maximal run of digits and slashes.
func durationRun(src string) string {
	start := -1
	for i := 0; i < len(src); i++ {
		if isDigitByte(src[i]) || src[i] == '/' {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := start
	for end < len(src) && (isDigitByte(src[end]) || src[end] == '/') {
		end++
	}
	return src[start:end]
}

// parse computes the semantic fields for a token. It must run after the
// handler's context pass has injected the active default length.
func (t *Token) parse(dialect *Dialect) error {
	switch t.Type {
	case NoteTokenType:
		return t.parseNote(nil)
	case ChordTokenType:
		return t.parseChord(nil, dialect, 0)
	}
	return nil
}

// parseNote resolves a note's chord symbols, pitch, rest flag, and
// duration. A non-nil forced default overrides the injected active
// default; chord interiors use this to make member notes inherit the
// chord's duration as their unit length.
func (t *Token) parseNote(forcedDefault *float64) error {
	symbols, rest := splitChordSymbols(t.Source)
	t.ChordSymbols = symbols

	pitch, err := pitchName(rest)
	if err != nil {
		return err
	}
	t.PitchName = pitch
	isRest := pitch == nil
	t.IsRest = &isRest

	def, err := t.effectiveDefault(forcedDefault)
	if err != nil {
		return err
	}
	ql, err := quarterLength(rest, def, t.BrokenRhythm)
	if err != nil {
		return err
	}
	t.QuarterLength = &ql
	return nil
}

// parseChord resolves a chord's aggregate duration, then tokenizes its
// bracket-stripped interior with a fresh pipeline, forcing each member
// note's default length to the chord's own duration.
func (t *Token) parseChord(forcedDefault *float64, dialect *Dialect, depth int) error {
	if depth >= maxChordDepth {
		return handlerErrorf(ChordNesting, -1, "chord nesting deeper than %d in %q", maxChordDepth, t.Source)
	}

	symbols, rest := splitChordSymbols(t.Source)
	t.ChordSymbols = symbols

	open := strings.IndexByte(rest, '[')
	closing := strings.LastIndexByte(rest, ']')
	if open < 0 || closing <= open {
		return tokenErrorf(MalformedChord, t.Source, "chord has no bracketed interior")
	}
	interior := rest[open+1 : closing]

	def, err := t.effectiveDefault(forcedDefault)
	if err != nil {
		return err
	}
	ql, err := quarterLength(rest, def, t.BrokenRhythm)
	if err != nil {
		return err
	}
	t.QuarterLength = &ql
	isRest := false
	t.IsRest = &isRest

	sub := NewTokenizerWithDialect(interior, dialect)
	subTokens, err := sub.Tokenize()
	if err != nil {
		return err
	}
	for _, st := range subTokens {
		switch st.Type {
		case NoteTokenType:
			if err := st.parseNote(&ql); err != nil {
				return err
			}
		case ChordTokenType:
			if err := st.parseChord(&ql, dialect, depth+1); err != nil {
				return err
			}
		}
	}
	t.SubTokens = subTokens
	return nil
}

// effectiveDefault picks the unit length for a duration computation:
// the forced default when present, else the handler-injected one.
func (t *Token) effectiveDefault(forcedDefault *float64) (float64, error) {
	if forcedDefault != nil {
		return *forcedDefault, nil
	}
	if t.ActiveDefaultQuarterLength != nil {
		return *t.ActiveDefaultQuarterLength, nil
	}
	return 0, tokenErrorf(NoDefaultLength, t.Source, "no active or forced default note length")
}
