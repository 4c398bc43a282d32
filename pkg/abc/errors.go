package abc

import "fmt"

// TokenReason identifies why a single token failed to parse.
type TokenReason int

const (
	// NoPitchInformation indicates a note-like run with no pitch letter.
	NoPitchInformation TokenReason = iota + 1

	// NoAssociatedValue indicates a computed metadata query on a field of
	// the wrong kind (e.g. a time signature requested on a title field).
	NoAssociatedValue

	// InvalidTimeSignature indicates an M: field that is neither C, C|, nor n/d.
	InvalidTimeSignature

	// MalformedFraction indicates a duration or unit-length fraction that
	// could not be parsed.
	MalformedFraction

	// NoDefaultLength indicates a duration computation with no active or
	// forced default note length available.
	NoDefaultLength

	// UnsupportedBrokenRhythmRun indicates a broken rhythm marker outside
	// the defined multiplier table (mixed runs or four or more characters).
	UnsupportedBrokenRhythmRun

	// MalformedChord indicates a chord token without a bracketed interior.
	MalformedChord
)

func (r TokenReason) String() string {
	switch r {
	case NoPitchInformation:
		return "no pitch information"
	case NoAssociatedValue:
		return "no associated value"
	case InvalidTimeSignature:
		return "invalid time signature"
	case MalformedFraction:
		return "malformed fraction"
	case NoDefaultLength:
		return "no default length"
	case UnsupportedBrokenRhythmRun:
		return "unsupported broken rhythm run"
	case MalformedChord:
		return "malformed chord"
	}
	return "unknown"
}

// TokenError reports a failure local to one token's own parse or preParse.
type TokenError struct {
	Reason TokenReason
	Source string // the token source text that failed
	Detail string
}

func (e *TokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("token error (%s) in %q: %s", e.Reason, e.Source, e.Detail)
	}
	return fmt.Sprintf("token error (%s) in %q", e.Reason, e.Source)
}

func tokenErrorf(reason TokenReason, source, format string, args ...any) *TokenError {
	return &TokenError{Reason: reason, Source: source, Detail: fmt.Sprintf(format, args...)}
}

// HandlerReason identifies a context or sequencing violation across the
// token list.
type HandlerReason int

const (
	// BrokenRhythmPlacement indicates a broken rhythm marker that is not
	// sandwiched between two note or chord tokens.
	BrokenRhythmPlacement HandlerReason = iota + 1

	// NoActiveDefaultLength indicates a note or chord encountered before
	// any default note length was established.
	NoActiveDefaultLength

	// NotProcessed indicates a post-processing utility invoked before the
	// handler passes have run.
	NotProcessed

	// ChordNesting indicates chord recursion beyond the defensive depth cap.
	ChordNesting
)

func (r HandlerReason) String() string {
	switch r {
	case BrokenRhythmPlacement:
		return "broken rhythm placement"
	case NoActiveDefaultLength:
		return "no active default length"
	case NotProcessed:
		return "not processed"
	case ChordNesting:
		return "chord nesting"
	}
	return "unknown"
}

// HandlerError reports a context violation found while sweeping the token
// list. Index is the position of the offending token, or -1 when the
// error is not tied to one position.
type HandlerError struct {
	Reason HandlerReason
	Index  int
	Detail string
}

func (e *HandlerError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("handler error (%s) at token %d: %s", e.Reason, e.Index, e.Detail)
	}
	return fmt.Sprintf("handler error (%s): %s", e.Reason, e.Detail)
}

func handlerErrorf(reason HandlerReason, index int, format string, args ...any) *HandlerError {
	return &HandlerError{Reason: reason, Index: index, Detail: fmt.Sprintf(format, args...)}
}
