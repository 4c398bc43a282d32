package abc

// Handler owns an ordered token list and drives the three processing
// passes: per-token preParse, one linear context-propagation sweep, and
// per-token parse. The handler has exclusive ownership of the list for
// the duration of processing; tokens never reference the handler or
// their siblings, so independent handlers are safe on separate
// goroutines.
type Handler struct {
	tokens    []*Token
	dialect   *Dialect
	processed bool
}

// NewHandler wraps an already-tokenized list with the default dialect.
func NewHandler(tokens []*Token) *Handler {
	return NewHandlerWithDialect(tokens, DefaultDialect())
}

// NewHandlerWithDialect wraps an already-tokenized list with a custom
// dialect, used for chord interior re-tokenization.
func NewHandlerWithDialect(tokens []*Token, dialect *Dialect) *Handler {
	return &Handler{tokens: tokens, dialect: dialect}
}

// ProcessString tokenizes src and runs all handler passes, returning the
// handler holding the resolved token list. This is the main entry point
// for one tune body.
func ProcessString(src string) (*Handler, error) {
	return ProcessStringWithDialect(src, DefaultDialect())
}

// ProcessStringWithDialect is ProcessString with a custom dialect.
func ProcessStringWithDialect(src string, dialect *Dialect) (*Handler, error) {
	tokens, err := NewTokenizerWithDialect(src, dialect).Tokenize()
	if err != nil {
		return nil, err
	}
	h := NewHandlerWithDialect(tokens, dialect)
	if err := h.Process(); err != nil {
		return nil, err
	}
	return h, nil
}

// Tokens returns the handler's token list.
func (h *Handler) Tokens() []*Token { return h.tokens }

// Process runs the three passes in order. Any failure aborts the whole
// call: a malformed token anywhere invalidates the entire list, and the
// caller decides whether to skip the tune body. Tokens are write-once,
// so a second call on an already-processed handler is a no-op.
func (h *Handler) Process() error {
	if h.processed {
		return nil
	}
	for _, tok := range h.tokens {
		if err := tok.preParse(); err != nil {
			return err
		}
	}
	if err := h.propagateContext(); err != nil {
		return err
	}
	for _, tok := range h.tokens {
		if err := tok.parse(h.dialect); err != nil {
			return err
		}
	}
	h.processed = true
	return nil
}

// propagateContext is the single linear sweep between preParse and parse.
// It tracks the current default note length, pairs broken rhythm markers
// with their neighbours, and injects the default length into every note
// and chord. Context data is copied into tokens, never referenced live.
func (h *Handler) propagateContext() error {
	var lastDefaultQuarterLength *float64

	for i, tok := range h.tokens {
		switch {
		case tok.IsMeter() || tok.IsDefaultNoteLength():
			ql, err := tok.DefaultQuarterLength()
			if err != nil {
				return err
			}
			lastDefaultQuarterLength = &ql

		case tok.Type == BrokenRhythmTokenType:
			if i == 0 || i == len(h.tokens)-1 {
				return handlerErrorf(BrokenRhythmPlacement, i, "marker %q has no neighbour on both sides", tok.Source)
			}
			prev, next := h.tokens[i-1], h.tokens[i+1]
			if !prev.isNoteOrChord() || !next.isNoteOrChord() {
				return handlerErrorf(BrokenRhythmPlacement, i, "marker %q is not between two notes or chords", tok.Source)
			}
			prev.BrokenRhythm = &BrokenRhythm{Marker: *tok.Data, Side: SideLeft}
			next.BrokenRhythm = &BrokenRhythm{Marker: *tok.Data, Side: SideRight}

		case tok.isNoteOrChord():
			if lastDefaultQuarterLength == nil {
				return handlerErrorf(NoActiveDefaultLength, i, "note %q before any L: or M: field", tok.Source)
			}
			ql := *lastDefaultQuarterLength
			tok.ActiveDefaultQuarterLength = &ql
		}
	}
	return nil
}

// SplitByVoice groups the processed list into one slice per voice: the
// shared header slice first, then one slice per digit-numbered V: field.
// Tunes with fewer than two voice markers come back as a single group.
func (h *Handler) SplitByVoice() ([][]*Token, error) {
	if !h.processed {
		return nil, handlerErrorf(NotProcessed, -1, "SplitByVoice on an unprocessed token list")
	}
	return h.splitAt(func(tok *Token) bool { return tok.IsVoice() }), nil
}

// SplitByReferenceNumber groups a multi-tune token list at its
// digit-numbered X: fields, with the same slicing as SplitByVoice.
func (h *Handler) SplitByReferenceNumber() ([][]*Token, error) {
	if !h.processed {
		return nil, handlerErrorf(NotProcessed, -1, "SplitByReferenceNumber on an unprocessed token list")
	}
	return h.splitAt(func(tok *Token) bool { return tok.IsReferenceNumber() }), nil
}

// splitAt slices the token list at metadata fields matching pred whose
// value starts with a digit.
func (h *Handler) splitAt(pred func(*Token) bool) [][]*Token {
	var positions []int
	for i, tok := range h.tokens {
		if pred(tok) && tok.Data != nil && len(*tok.Data) > 0 && isDigitByte((*tok.Data)[0]) {
			positions = append(positions, i)
		}
	}
	if len(positions) < 2 {
		return [][]*Token{h.tokens}
	}
	groups := [][]*Token{h.tokens[:positions[0]]}
	for i := 0; i < len(positions)-1; i++ {
		groups = append(groups, h.tokens[positions[i]:positions[i+1]])
	}
	return append(groups, h.tokens[positions[len(positions)-1]:])
}

// Title returns the data of the first T: field, or nil when the tune has
// no title.
func (h *Handler) Title() (*string, error) {
	if !h.processed {
		return nil, handlerErrorf(NotProcessed, -1, "Title on an unprocessed token list")
	}
	for _, tok := range h.tokens {
		if tok.IsTitle() {
			return tok.Data, nil
		}
	}
	return nil, nil
}

// HasNotes reports whether the processed list contains any note or chord.
func (h *Handler) HasNotes() (bool, error) {
	if !h.processed {
		return false, handlerErrorf(NotProcessed, -1, "HasNotes on an unprocessed token list")
	}
	for _, tok := range h.tokens {
		if tok.isNoteOrChord() {
			return true, nil
		}
	}
	return false, nil
}

// DefinesMeasures reports whether the processed list contains a bar token.
func (h *Handler) DefinesMeasures() (bool, error) {
	if !h.processed {
		return false, handlerErrorf(NotProcessed, -1, "DefinesMeasures on an unprocessed token list")
	}
	for _, tok := range h.tokens {
		if tok.Type == BarTokenType {
			return true, nil
		}
	}
	return false, nil
}
