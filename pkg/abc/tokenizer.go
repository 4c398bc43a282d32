package abc

import "strings"

// Tokenizer scans an ABC tune body left to right and classifies runs of
// characters into tokens. Classification is entirely a function of the
// character class of the next few characters: ABC has no token
// delimiters, so the rules in nextToken encode precedence by order.
type Tokenizer struct {
	input    string
	position int
	tokens   []*Token
	dialect  *Dialect

	// activeChordSymbol accumulates quoted guitar-chord annotations until
	// the next note or chord run claims them.
	activeChordSymbol string
}

// NewTokenizer creates a tokenizer over input with the default dialect.
func NewTokenizer(input string) *Tokenizer {
	return NewTokenizerWithDialect(input, DefaultDialect())
}

// NewTokenizerWithDialect creates a tokenizer with a custom dialect.
func NewTokenizerWithDialect(input string, dialect *Dialect) *Tokenizer {
	return &Tokenizer{
		input:   input,
		tokens:  make([]*Token, 0),
		dialect: dialect,
	}
}

// Tokenize processes the whole input and returns the raw token list.
// The tokens still need the handler's passes before their semantic
// fields are populated.
func (t *Tokenizer) Tokenize() ([]*Token, error) {
	for t.position < len(t.input) {
		if err := t.nextToken(); err != nil {
			return t.tokens, err
		}
	}
	return t.tokens, nil
}

// nextToken classifies the run starting at the current position. The
// rules are tried in priority order and the first match wins: comments,
// metadata lines, bar symbols, tuplet markers, broken rhythm runs,
// chord-symbol quotes, bracketed chords, note-like runs. Anything else
// is skipped one character at a time.
func (t *Tokenizer) nextToken() error {
	c := t.charAt(t.position)
	cNext := t.charAt(t.position + 1)
	cNextNext := t.charAt(t.position + 2)

	// Comments run to the end of the line and emit nothing.
	if c == '%' {
		t.skipRestOfLine()
		return nil
	}

	// Metadata lines: an uppercase tag letter followed by a colon. The
	// third-character guard keeps a repeat bar like B:|2 from being
	// misread as a metadata line.
	if isUpperLetter(c) && cNext == ':' && cNextNext != '|' {
		line := t.readRestOfLine()
		t.tokens = append(t.tokens, NewMetadataToken(line))
		return nil
	}

	// Bar and repeat symbols. Tilde and open paren are excluded here:
	// tilde starts an ornamented note run and parens start tuplets. A
	// miss (e.g. "[C" opening a chord) falls through to the later rules.
	if !isSpaceByte(c) && !isAlnumByte(c) && c != '~' && c != '(' {
		if sym, ok := t.dialect.matchBar(t.input[t.position:]); ok {
			t.position += len(sym.Text)
			t.tokens = append(t.tokens, NewBarToken(sym.Text, sym.Kind))
			return nil
		}
	}

	// Tuplet markers are exactly two characters; extended (p:q:r) forms
	// are left to the downstream stream builder.
	if c == '(' && isDigitByte(cNext) {
		source := t.input[t.position : t.position+2]
		t.position += 2
		t.tokens = append(t.tokens, NewTupletToken(source))
		return nil
	}

	// Broken rhythm markers: the maximal run of < and > characters.
	if c == '<' || c == '>' {
		j := t.position
		for j < len(t.input) && (t.input[j] == '<' || t.input[j] == '>') {
			j++
		}
		source := t.input[t.position:j]
		t.position = j
		t.tokens = append(t.tokens, NewBrokenRhythmToken(source))
		return nil
	}

	// Quoted chord symbols emit no token of their own; they accumulate
	// and are prepended to the next note or chord run.
	if c == '"' {
		j := t.position + 1
		for j < len(t.input) && t.input[j] != '"' {
			j++
		}
		if j < len(t.input) {
			j++ // include the closing quote
		}
		t.activeChordSymbol += t.input[t.position:j]
		t.position = j
		return nil
	}

	// Bracketed chords, consumed through the matching close bracket and
	// any duration suffix that follows it.
	if c == '[' {
		j := t.position + 1
		for j < len(t.input) && t.input[j] != ']' {
			j++
		}
		if j < len(t.input) {
			j++ // include the closing bracket
		}
		for j < len(t.input) && (isDigitByte(t.input[j]) || t.input[j] == '/') {
			j++
		}
		source := t.takeActiveChordSymbol() + t.input[t.position:j]
		t.position = j
		t.tokens = append(t.tokens, NewChordToken(source))
		return nil
	}

	// Note-like runs: ornament and accidental markers may precede the
	// pitch letter, exactly one pitch letter, then octave/duration
	// suffix characters.
	if isLetterByte(c) || strings.IndexByte("~^=_.", c) >= 0 {
		j := t.position
		foundPitch := false
	scan:
		for j < len(t.input) {
			switch ch := t.input[j]; {
			case !foundPitch && t.dialect.isOrnamentChar(ch):
				j++
			case !foundPitch && isLetterByte(ch):
				foundPitch = true
				j++
			case foundPitch && isDurationSuffixChar(ch):
				j++
			default:
				break scan
			}
		}
		source := t.takeActiveChordSymbol() + t.input[t.position:j]
		t.position = j
		t.tokens = append(t.tokens, NewNoteToken(source))
		return nil
	}

	// Whitespace or an unrecognized character: advance and emit nothing.
	t.position++
	return nil
}

// takeActiveChordSymbol clears and returns the pending chord symbol buffer.
func (t *Tokenizer) takeActiveChordSymbol() string {
	s := t.activeChordSymbol
	t.activeChordSymbol = ""
	return s
}

// charAt returns the byte at pos, or 0 past either end of the input.
func (t *Tokenizer) charAt(pos int) byte {
	if pos < 0 || pos >= len(t.input) {
		return 0
	}
	return t.input[pos]
}

// readRestOfLine consumes up to, but not including, the next newline.
func (t *Tokenizer) readRestOfLine() string {
	j := t.position
	for j < len(t.input) && t.input[j] != '\n' && t.input[j] != '\r' {
		j++
	}
	line := t.input[t.position:j]
	t.position = j
	return line
}

// skipRestOfLine consumes through the end of the current line.
func (t *Tokenizer) skipRestOfLine() {
	t.readRestOfLine()
	if t.position < len(t.input) && t.input[t.position] == '\r' {
		t.position++
	}
	if t.position < len(t.input) && t.input[t.position] == '\n' {
		t.position++
	}
}

// The tune body grammar is ASCII, so byte-level checks are safe here.

func isUpperLetter(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLetterByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isAlnumByte(c byte) bool { return isLetterByte(c) || isDigitByte(c) }

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// isDurationSuffixChar reports whether c can follow a pitch letter as
// part of its octave or duration suffix.
func isDurationSuffixChar(c byte) bool {
	return isDigitByte(c) || c == ',' || c == '/' || c == '\''
}
