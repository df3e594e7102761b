package normalize

import "testing"

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"cse221", "CSE221"},
		{"  cse   221\t sec-09b  ", "CSE 221 SEC-09B"},
		{"CSE221:\n\nSec-09B", "CSE221: SEC-09B"},
		{"ＣＳＥ２２１", "CSE221"},
		{"CSE\v\v221", "CSE 221"},
		{"\fcse\u00a0221\u3000sec 9\v", "CSE 221 SEC 9"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeToken(tt.input); got != tt.expected {
				t.Errorf("NormalizeToken(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripNonWord(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"CSE 221", "CSE221"},
		{"cse-221 [Sec: 09B]", "CSE221SEC09B"},
		{"Ünïcode ©", "NCODE"},
		{"???", ""},
		{"ｍａｔｈ１０１", "MATH101"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StripNonWord(tt.input); got != tt.expected {
				t.Errorf("StripNonWord(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		"",
		"cse221: sec-09b",
		"  MATH   101  ",
		"\tphy 111 lab (sec 3)\n",
		"CSE 221 9",
		"ＣＳＥ２２１ ｓｅｃ ０９",
	}

	for _, s := range inputs {
		once := NormalizeToken(s)
		if twice := NormalizeToken(once); twice != once {
			t.Errorf("NormalizeToken not idempotent for %q: %q then %q", s, once, twice)
		}

		stripped := StripNonWord(s)
		if again := StripNonWord(stripped); again != stripped {
			t.Errorf("StripNonWord not idempotent for %q: %q then %q", s, stripped, again)
		}
	}
}
