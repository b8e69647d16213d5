package table

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"#", "general", "12"},
		{"#", "off-topic", "3"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignLeft, AlignRight})
	want := []string{
		"# general   12",
		"# off-topic  3",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatMeasuresCells(t *testing.T) {
	got := Format([][]string{{"日本", "x"}, {"ab", "y"}}, nil)
	if got[0] != "日本 x" || got[1] != "ab   y" {
		t.Fatalf("unexpected wide-character padding %q", got)
	}
}

func TestFitTruncatesFlexColumn(t *testing.T) {
	rows := [][]string{
		{">", "a-very-long-channel-name", "7"},
		{" ", "short", "12"},
	}
	got := Fit(rows, []Alignment{AlignLeft, AlignLeft, AlignRight}, 1, 14)
	for _, line := range got {
		if w := runewidth.StringWidth(line); w > 14 {
			t.Fatalf("row %q is %d cells wide, expected at most 14", line, w)
		}
	}
	if got[1] != "  short     12" {
		t.Fatalf("unexpected short row %q", got[1])
	}
	if got[0][len(got[0])-1] != '7' {
		t.Fatalf("expected right column kept, got %q", got[0])
	}
}

func TestFormatEmpty(t *testing.T) {
	if Format(nil, nil) != nil || Fit(nil, nil, 0, 10) != nil {
		t.Fatal("expected nil for no rows")
	}
}
