package spell

import "testing"

func TestOSADistance(t *testing.T) {
	tests := []struct {
		a, b string
		max  int
		want int
	}{
		{"", "", 3, 0},
		{"abc", "", 3, 3},
		{"", "ab", 3, 2},
		{"pajak", "pajak", 3, 0},
		{"kitten", "sitting", 3, 3},
		{"ab", "ba", 3, 1},
		{"kebijakan", "kebjiakan", 3, 1},
		{"kitten", "sitting", 2, -1},
		{"a", "abcde", 3, -1},
		{"peraturan", "praturan", 1, 1},
	}
	for _, tc := range tests {
		got := osaDistance([]rune(tc.a), []rune(tc.b), tc.max)
		if got != tc.want {
			t.Errorf("osaDistance(%q, %q, %d) = %d, want %d", tc.a, tc.b, tc.max, got, tc.want)
		}
	}
}

func TestOSADistance_Runes(t *testing.T) {
	if got := osaDistance([]rune("café"), []rune("cafe"), 3); got != 1 {
		t.Errorf("expected one substitution for accented rune, got %d", got)
	}
}
