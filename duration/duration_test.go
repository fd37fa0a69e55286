package duration

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
	}{
		{"30s", 30},
		{"5m", 300},
		{"2h", 7200},
		{"1d", 86400},
		{"100", 100},
		{"0", 0},
		{"", 604800},
		{"  7d  ", 604800},
		{"bogus", 604800},
		{"10w", 604800},
		{"m5", 604800},
		{"5 m", 604800},
		{"-30s", 604800},
	}

	for _, tc := range cases {
		if got := Parse(tc.in); got != tc.want {
			t.Errorf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseDefault(t *testing.T) {
	t.Parallel()

	if got := ParseDefault("", 900); got != 900 {
		t.Fatalf("ParseDefault empty = %d, want 900", got)
	}
	if got := ParseDefault("junk", 60); got != 60 {
		t.Fatalf("ParseDefault junk = %d, want 60", got)
	}
	if got := ParseDefault("2h", 60); got != 7200 {
		t.Fatalf("ParseDefault 2h = %d, want 7200", got)
	}
}
