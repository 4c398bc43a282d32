package abc

import (
	"errors"
	"testing"
)

const scenarioTune = "M:6/8\nL:1/8\nK:G\nB3 A3 | G6 ||"

func TestProcessScenarioTune(t *testing.T) {
	h, err := ProcessString(scenarioTune)
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	tokens := h.Tokens()
	if len(tokens) != 8 {
		t.Fatalf("Expected 8 tokens, got %d", len(tokens))
	}

	expectedNotes := map[string]float64{
		"B3": 1.5,
		"A3": 1.5,
		"G6": 3.0,
	}
	for _, tok := range tokens {
		if tok.Type != NoteTokenType {
			continue
		}
		if tok.ActiveDefaultQuarterLength == nil || !almostEqual(*tok.ActiveDefaultQuarterLength, 0.5) {
			t.Errorf("Note %q: expected active default 0.5, got %v", tok.Source, tok.ActiveDefaultQuarterLength)
		}
		want, ok := expectedNotes[tok.Source]
		if !ok {
			t.Errorf("Unexpected note %q", tok.Source)
			continue
		}
		if tok.QuarterLength == nil || !almostEqual(*tok.QuarterLength, want) {
			t.Errorf("Note %q: expected quarter length %v, got %v", tok.Source, want, tok.QuarterLength)
		}
		if tok.IsRest == nil || *tok.IsRest {
			t.Errorf("Note %q: expected a sounding note", tok.Source)
		}
	}
}

func TestMeterThenUnitLengthPropagation(t *testing.T) {
	// The meter implies sixteenths; the later L: field overrides with
	// quarters. Each note picks up whichever default was last declared.
	h, err := ProcessString("M:2/4\nA\nL:1/4\nB")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	var notes []*Token
	for _, tok := range h.Tokens() {
		if tok.Type == NoteTokenType {
			notes = append(notes, tok)
		}
	}
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}
	if !almostEqual(*notes[0].QuarterLength, 0.25) {
		t.Errorf("Note A: expected 0.25, got %v", *notes[0].QuarterLength)
	}
	if !almostEqual(*notes[1].QuarterLength, 1.0) {
		t.Errorf("Note B: expected 1.0, got %v", *notes[1].QuarterLength)
	}
}

func TestBrokenRhythmPairing(t *testing.T) {
	h, err := ProcessString("L:1/8\nA>B c<<d")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	var notes []*Token
	for _, tok := range h.Tokens() {
		if tok.Type == NoteTokenType {
			notes = append(notes, tok)
		}
	}
	if len(notes) != 4 {
		t.Fatalf("Expected 4 notes, got %d", len(notes))
	}

	checks := []struct {
		source   string
		marker   string
		side     Side
		expected float64
	}{
		{"A", ">", SideLeft, 0.75},
		{"B", ">", SideRight, 0.25},
		{"c", "<<", SideLeft, 0.125},
		{"d", "<<", SideRight, 0.875},
	}
	for i, c := range checks {
		tok := notes[i]
		if tok.Source != c.source {
			t.Fatalf("Note %d: expected %q, got %q", i, c.source, tok.Source)
		}
		if tok.BrokenRhythm == nil {
			t.Fatalf("Note %q: missing broken rhythm assignment", tok.Source)
		}
		if tok.BrokenRhythm.Marker != c.marker || tok.BrokenRhythm.Side != c.side {
			t.Errorf("Note %q: expected (%s, %s), got (%s, %s)", tok.Source,
				c.marker, c.side, tok.BrokenRhythm.Marker, tok.BrokenRhythm.Side)
		}
		if !almostEqual(*tok.QuarterLength, c.expected) {
			t.Errorf("Note %q: expected quarter length %v, got %v", tok.Source, c.expected, *tok.QuarterLength)
		}
	}
}

func TestBrokenRhythmPlacementErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Marker first", "L:1/8\n>A B"},
		{"Marker last", "L:1/8\nA B>"},
		{"Marker against bar", "L:1/8\nA>| B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessString(tt.input)
			var hErr *HandlerError
			if !errors.As(err, &hErr) || hErr.Reason != BrokenRhythmPlacement {
				t.Errorf("Expected BrokenRhythmPlacement, got %v", err)
			}
		})
	}
}

func TestUnsupportedBrokenRhythmRunFails(t *testing.T) {
	_, err := ProcessString("L:1/8\nA<<<<B")
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Reason != UnsupportedBrokenRhythmRun {
		t.Errorf("Expected UnsupportedBrokenRhythmRun, got %v", err)
	}
}

func TestNoteBeforeDefaultLengthFails(t *testing.T) {
	_, err := ProcessString("K:G\nA B")
	var hErr *HandlerError
	if !errors.As(err, &hErr) || hErr.Reason != NoActiveDefaultLength {
		t.Errorf("Expected NoActiveDefaultLength, got %v", err)
	}
}

func TestChordParsing(t *testing.T) {
	h, err := ProcessString("L:1/4\n\"Cmaj7\"[CEG]2")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	var chord *Token
	for _, tok := range h.Tokens() {
		if tok.Type == ChordTokenType {
			chord = tok
		}
	}
	if chord == nil {
		t.Fatal("Expected a chord token")
	}
	if len(chord.ChordSymbols) != 1 || chord.ChordSymbols[0] != `"Cmaj7"` {
		t.Errorf("Expected chord symbols [\"Cmaj7\"], got %v", chord.ChordSymbols)
	}
	if chord.QuarterLength == nil || !almostEqual(*chord.QuarterLength, 2.0) {
		t.Errorf("Expected chord quarter length 2.0, got %v", chord.QuarterLength)
	}
	if len(chord.SubTokens) != 3 {
		t.Fatalf("Expected 3 sub tokens, got %d", len(chord.SubTokens))
	}
	expected := []string{"C4", "E4", "G4"}
	for i, st := range chord.SubTokens {
		if st.Type != NoteTokenType {
			t.Errorf("Sub token %d: expected note, got %s", i, st.Type)
			continue
		}
		if st.PitchName == nil || *st.PitchName != expected[i] {
			t.Errorf("Sub token %d: expected pitch %q, got %v", i, expected[i], st.PitchName)
		}
		// Member notes inherit the chord's duration as their unit length.
		if st.QuarterLength == nil || !almostEqual(*st.QuarterLength, 2.0) {
			t.Errorf("Sub token %d: expected quarter length 2.0, got %v", i, st.QuarterLength)
		}
	}
}

func TestChordMemberDurationsScaleOffChord(t *testing.T) {
	// A member note's duration suffix multiplies the chord's length, not
	// the tune's default.
	h, err := ProcessString("L:1/8\n[C2e]")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	chord := h.Tokens()[1]
	if chord.Type != ChordTokenType {
		t.Fatalf("Expected chord, got %s", chord.Type)
	}
	// The first numeric run fixes the chord's own duration.
	if !almostEqual(*chord.QuarterLength, 1.0) {
		t.Errorf("Expected chord quarter length 1.0, got %v", *chord.QuarterLength)
	}
	if len(chord.SubTokens) != 2 {
		t.Fatalf("Expected 2 sub tokens, got %d", len(chord.SubTokens))
	}
	if *chord.SubTokens[0].PitchName != "C4" || !almostEqual(*chord.SubTokens[0].QuarterLength, 2.0) {
		t.Errorf("Expected C4 at 2.0, got %v at %v", *chord.SubTokens[0].PitchName, *chord.SubTokens[0].QuarterLength)
	}
	if *chord.SubTokens[1].PitchName != "E5" || !almostEqual(*chord.SubTokens[1].QuarterLength, 1.0) {
		t.Errorf("Expected E5 at 1.0, got %v at %v", *chord.SubTokens[1].PitchName, *chord.SubTokens[1].QuarterLength)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	tokens, err := NewTokenizer(scenarioTune).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	h := NewHandler(tokens)
	if err := h.Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	before := make([]float64, 0)
	for _, tok := range h.Tokens() {
		if tok.QuarterLength != nil {
			before = append(before, *tok.QuarterLength)
		}
	}

	// Tokens are write-once; a second Process is a no-op.
	if err := h.Process(); err != nil {
		t.Fatalf("Second Process failed: %v", err)
	}
	i := 0
	for _, tok := range h.Tokens() {
		if tok.QuarterLength != nil {
			if !almostEqual(*tok.QuarterLength, before[i]) {
				t.Errorf("Quarter length changed on reprocess: %v != %v", *tok.QuarterLength, before[i])
			}
			i++
		}
	}
}

func TestUtilitiesRequireProcessing(t *testing.T) {
	tokens, err := NewTokenizer(scenarioTune).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	h := NewHandler(tokens)

	var hErr *HandlerError
	if _, err := h.SplitByVoice(); !errors.As(err, &hErr) || hErr.Reason != NotProcessed {
		t.Errorf("SplitByVoice: expected NotProcessed, got %v", err)
	}
	if _, err := h.Title(); !errors.As(err, &hErr) || hErr.Reason != NotProcessed {
		t.Errorf("Title: expected NotProcessed, got %v", err)
	}
	if _, err := h.SplitByReferenceNumber(); !errors.As(err, &hErr) || hErr.Reason != NotProcessed {
		t.Errorf("SplitByReferenceNumber: expected NotProcessed, got %v", err)
	}
	if _, err := h.HasNotes(); !errors.As(err, &hErr) || hErr.Reason != NotProcessed {
		t.Errorf("HasNotes: expected NotProcessed, got %v", err)
	}
}

const threeVoiceTune = "M:4/4\nL:1/8\nT:Trio\nV:1\nA B | c d\nV:2\nE F | G A\nV:3\nC, D, | E, F,"

func TestSplitByVoice(t *testing.T) {
	h, err := ProcessString(threeVoiceTune)
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	groups, err := h.SplitByVoice()
	if err != nil {
		t.Fatalf("SplitByVoice failed: %v", err)
	}
	// One shared header group plus one group per voice.
	if len(groups) != 4 {
		t.Fatalf("Expected 4 groups, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("Expected 3 header tokens, got %d", len(groups[0]))
	}
	for i, group := range groups[1:] {
		if len(group) == 0 || !group[0].IsVoice() {
			t.Errorf("Voice group %d does not start with a V: field", i+1)
		}
	}
}

func TestSplitByVoiceSingleGroup(t *testing.T) {
	for _, input := range []string{scenarioTune, "M:4/4\nL:1/8\nV:1\nA B c"} {
		h, err := ProcessString(input)
		if err != nil {
			t.Fatalf("ProcessString failed: %v", err)
		}
		groups, err := h.SplitByVoice()
		if err != nil {
			t.Fatalf("SplitByVoice failed: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("Expected 1 group, got %d", len(groups))
		}
		if len(groups[0]) != len(h.Tokens()) {
			t.Errorf("Single group must equal the full token list")
		}
	}
}

func TestSplitByReferenceNumber(t *testing.T) {
	input := "X:1\nM:4/4\nL:1/8\nA B\nX:2\nM:6/8\nL:1/8\nc d"
	h, err := ProcessString(input)
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	groups, err := h.SplitByReferenceNumber()
	if err != nil {
		t.Fatalf("SplitByReferenceNumber failed: %v", err)
	}
	// Empty shared header, then one group per tune.
	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if len(groups[0]) != 0 {
		t.Errorf("Expected empty header group, got %d tokens", len(groups[0]))
	}
	for i, group := range groups[1:] {
		if len(group) == 0 || !group[0].IsReferenceNumber() {
			t.Errorf("Tune group %d does not start with an X: field", i+1)
		}
	}
}

func TestTitle(t *testing.T) {
	h, err := ProcessString("T:Cooley's\nM:4/4\nL:1/8\nA B")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	title, err := h.Title()
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if title == nil || *title != "Cooley's" {
		t.Errorf("Expected title Cooley's, got %v", title)
	}

	h, err = ProcessString(scenarioTune)
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	title, err = h.Title()
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if title != nil {
		t.Errorf("Expected no title, got %q", *title)
	}
}

func TestHasNotesAndDefinesMeasures(t *testing.T) {
	h, err := ProcessString(scenarioTune)
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	if has, err := h.HasNotes(); err != nil || !has {
		t.Errorf("Expected HasNotes true, got (%v, %v)", has, err)
	}
	if has, err := h.DefinesMeasures(); err != nil || !has {
		t.Errorf("Expected DefinesMeasures true, got (%v, %v)", has, err)
	}

	h, err = ProcessString("M:4/4\nL:1/8\nK:D")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	if has, err := h.HasNotes(); err != nil || has {
		t.Errorf("Expected HasNotes false, got (%v, %v)", has, err)
	}
	if has, err := h.DefinesMeasures(); err != nil || has {
		t.Errorf("Expected DefinesMeasures false, got (%v, %v)", has, err)
	}
}

func TestRestsAreRests(t *testing.T) {
	h, err := ProcessString("L:1/8\nz2 A")
	if err != nil {
		t.Fatalf("ProcessString failed: %v", err)
	}
	rest := h.Tokens()[1]
	if rest.Source != "z2" {
		t.Fatalf("Expected rest token z2, got %q", rest.Source)
	}
	if rest.PitchName != nil {
		t.Errorf("Expected nil pitch for a rest, got %q", *rest.PitchName)
	}
	if rest.IsRest == nil || !*rest.IsRest {
		t.Error("Expected IsRest true")
	}
	if !almostEqual(*rest.QuarterLength, 1.0) {
		t.Errorf("Expected rest quarter length 1.0, got %v", *rest.QuarterLength)
	}
}
