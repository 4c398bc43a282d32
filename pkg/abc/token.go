package abc

// TokenType represents the different kinds of tokens found in an ABC tune body.
type TokenType string

const (
	MetadataTokenType     TokenType = "metadata" // Header/inline fields such as M:, L:, K:
	BarTokenType          TokenType = "bar"      // Bar lines and repeat symbols
	TupletTokenType       TokenType = "tuplet"   // Tuplet markers such as (3
	BrokenRhythmTokenType TokenType = "brk"      // Broken rhythm markers (< and > runs)
	NoteTokenType         TokenType = "note"     // Single notes and rests
	ChordTokenType        TokenType = "chord"    // Bracketed chords
)

// BarKind classifies a bar token against the ranked symbol table.
type BarKind string

const (
	BarRegular      BarKind = "regular"          // |
	BarDouble       BarKind = "double"           // ||
	BarLightHeavy   BarKind = "light-heavy"      // |]
	BarHeavyLight   BarKind = "heavy-light"      // [|
	BarFirstEnding  BarKind = "first-ending"     // [1
	BarSecondEnding BarKind = "second-ending"    // [2
	BarRepeatEnd    BarKind = "repeat-end"       // :|
	BarRepeatStart  BarKind = "repeat-start"     // |:
	BarRepeatBoth   BarKind = "repeat-end-start" // ::
)

// MeterSymbol describes how a time signature was written.
type MeterSymbol string

const (
	MeterNormal MeterSymbol = "normal"
	MeterCommon MeterSymbol = "common" // M:C
	MeterCut    MeterSymbol = "cut"    // M:C|
)

// Side tells a note which side of a broken rhythm marker it sits on.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// BrokenRhythm is the marker assignment a note or chord receives when it
// neighbours a broken rhythm token.
type BrokenRhythm struct {
	Marker string `json:"marker" yaml:"marker" msgpack:"marker"`
	Side   Side   `json:"side" yaml:"side" msgpack:"side"`
}

// Token represents a single token from an ABC tune body.
//
// All tokens carry their Source text and Type; the remaining fields are
// optional and populated per kind. The tokenizer sets the kind fields,
// the handler's context pass sets BrokenRhythm and
// ActiveDefaultQuarterLength, and the final parse pass sets the semantic
// fields. Every field is write-once: nothing mutates a token after the
// pass responsible for it has run.
type Token struct {
	Source string    `json:"source" yaml:"source" msgpack:"source"`
	Type   TokenType `json:"type" yaml:"type" msgpack:"type"`

	// Metadata token fields, set by preParse
	Tag  *string `json:"tag,omitempty" yaml:"tag,omitempty" msgpack:"tag,omitempty"`
	Data *string `json:"data,omitempty" yaml:"data,omitempty" msgpack:"data,omitempty"`

	// Bar token fields, resolved against the dialect's symbol table
	Bar *BarKind `json:"bar,omitempty" yaml:"bar,omitempty" msgpack:"bar,omitempty"`

	// Note and chord fields
	ChordSymbols  []string `json:"chord_symbols,omitempty" yaml:"chord_symbols,omitempty" msgpack:"chord_symbols,omitempty"`
	PitchName     *string  `json:"pitch_name,omitempty" yaml:"pitch_name,omitempty" msgpack:"pitch_name,omitempty"`
	QuarterLength *float64 `json:"quarter_length,omitempty" yaml:"quarter_length,omitempty" msgpack:"quarter_length,omitempty"`
	IsRest        *bool    `json:"is_rest,omitempty" yaml:"is_rest,omitempty" msgpack:"is_rest,omitempty"`

	// Context fields injected by the handler's propagation pass
	BrokenRhythm               *BrokenRhythm `json:"broken_rhythm,omitempty" yaml:"broken_rhythm,omitempty" msgpack:"broken_rhythm,omitempty"`
	ActiveDefaultQuarterLength *float64      `json:"active_default_quarter_length,omitempty" yaml:"active_default_quarter_length,omitempty" msgpack:"active_default_quarter_length,omitempty"`

	// Chord token fields: the fully parsed interior notes
	SubTokens []*Token `json:"sub_tokens,omitempty" yaml:"sub_tokens,omitempty" msgpack:"sub_tokens,omitempty"`
}

// NewMetadataToken creates a metadata token covering a whole header line.
func NewMetadataToken(source string) *Token {
	return &Token{Source: source, Type: MetadataTokenType}
}

// NewBarToken creates a bar token already resolved to its kind.
func NewBarToken(source string, kind BarKind) *Token {
	return &Token{Source: source, Type: BarTokenType, Bar: &kind}
}

// NewTupletToken creates a tuplet marker token.
func NewTupletToken(source string) *Token {
	return &Token{Source: source, Type: TupletTokenType}
}

// NewBrokenRhythmToken creates a broken rhythm marker token.
func NewBrokenRhythmToken(source string) *Token {
	return &Token{Source: source, Type: BrokenRhythmTokenType}
}

// NewNoteToken creates a note token from a note-like character run.
func NewNoteToken(source string) *Token {
	return &Token{Source: source, Type: NoteTokenType}
}

// NewChordToken creates a chord token from a bracketed run.
func NewChordToken(source string) *Token {
	return &Token{Source: source, Type: ChordTokenType}
}

// IsMeter reports whether the token is an M: metadata field.
func (t *Token) IsMeter() bool { return t.hasTag("M") }

// IsDefaultNoteLength reports whether the token is an L: metadata field.
func (t *Token) IsDefaultNoteLength() bool { return t.hasTag("L") }

// IsTitle reports whether the token is a T: metadata field.
func (t *Token) IsTitle() bool { return t.hasTag("T") }

// IsComposer reports whether the token is a C: metadata field.
func (t *Token) IsComposer() bool { return t.hasTag("C") }

// IsVoice reports whether the token is a V: metadata field.
func (t *Token) IsVoice() bool { return t.hasTag("V") }

// IsKey reports whether the token is a K: metadata field.
func (t *Token) IsKey() bool { return t.hasTag("K") }

// IsReferenceNumber reports whether the token is an X: metadata field.
func (t *Token) IsReferenceNumber() bool { return t.hasTag("X") }

func (t *Token) hasTag(tag string) bool {
	return t.Type == MetadataTokenType && t.Tag != nil && *t.Tag == tag
}

// IsNote reports whether the token is a note or a rest.
func (t *Token) IsNote() bool { return t.Type == NoteTokenType }

// IsChord reports whether the token is a bracketed chord.
func (t *Token) IsChord() bool { return t.Type == ChordTokenType }

func (t *Token) isNoteOrChord() bool {
	return t.Type == NoteTokenType || t.Type == ChordTokenType
}
