package httpapi

import "testing"

func TestLineDiffIdentical(t *testing.T) {
	a := []string{"one", "two", "three"}
	got := lineDiff(a, a)
	for _, l := range got {
		if l.Op != diffEqual {
			t.Fatalf("identical input produced a non-equal op: %+v", l)
		}
	}
	if len(got) != len(a) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(a))
	}
}

func TestLineDiffInsertAndDelete(t *testing.T) {
	a := []string{"one", "two", "three"}
	b := []string{"one", "two-b", "three", "four"}

	got := lineDiff(a, b)

	var rebuiltA, rebuiltB []string
	for _, l := range got {
		switch l.Op {
		case diffEqual:
			rebuiltA = append(rebuiltA, l.Text)
			rebuiltB = append(rebuiltB, l.Text)
		case diffDelete:
			rebuiltA = append(rebuiltA, l.Text)
		case diffInsert:
			rebuiltB = append(rebuiltB, l.Text)
		}
	}
	if !equalLines(rebuiltA, a) {
		t.Errorf("reconstructed a = %v, want %v", rebuiltA, a)
	}
	if !equalLines(rebuiltB, b) {
		t.Errorf("reconstructed b = %v, want %v", rebuiltB, b)
	}
}

func TestLineDiffEmptyInputs(t *testing.T) {
	if got := lineDiff(nil, nil); got != nil {
		t.Errorf("lineDiff(nil, nil) = %v, want nil", got)
	}
	got := lineDiff(nil, []string{"a"})
	if len(got) != 1 || got[0].Op != diffInsert {
		t.Errorf("lineDiff(nil, [a]) = %v", got)
	}
}

func TestSplitLinesPreservesTerminators(t *testing.T) {
	got := splitLines([]byte("a\nb\n"))
	want := []string{"a\n", "b\n"}
	if !equalLines(got, want) {
		t.Fatalf("splitLines = %q, want %q", got, want)
	}
}

func TestSplitLinesUnterminatedTrailingLine(t *testing.T) {
	got := splitLines([]byte("a\nb"))
	want := []string{"a\n", "b"}
	if !equalLines(got, want) {
		t.Fatalf("splitLines = %q, want %q", got, want)
	}
}

func TestLineDiffOnRawBytesMatchesTerminators(t *testing.T) {
	original := splitLines([]byte("a\nb\n"))
	edited := splitLines([]byte("a\nc\n"))

	got := lineDiff(original, edited)

	want := []diffLine{
		{Op: diffEqual, Text: "a\n"},
		{Op: diffDelete, Text: "b\n"},
		{Op: diffInsert, Text: "c\n"},
	}
	if len(got) != len(want) {
		t.Fatalf("lineDiff = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lineDiff[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
