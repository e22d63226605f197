package ocr

import "testing"

func TestClampConfidence(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tc := range cases {
		if got := ClampConfidence(tc.in); got != tc.want {
			t.Fatalf("ClampConfidence(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFirstLanguage(t *testing.T) {
	if got := firstLanguage(nil); got != "" {
		t.Fatalf("firstLanguage(nil) = %q", got)
	}
	if got := firstLanguage([]string{"eng", "deu"}); got != "eng" {
		t.Fatalf("firstLanguage() = %q", got)
	}
}
