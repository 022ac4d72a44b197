package cw

import (
	"testing"
)

func TestLookup_Letters(t *testing.T) {
	tests := []struct {
		char rune
		want Symbol
	}{
		{'A', ".-"}, {'B', "-..."}, {'C', "-.-."}, {'D', "-.."},
		{'E', "."}, {'F', "..-."}, {'G', "--."}, {'H', "...."},
		{'I', ".."}, {'J', ".---"}, {'K', "-.-"}, {'L', ".-.."},
		{'M', "--"}, {'N', "-."}, {'O', "---"}, {'P', ".--."},
		{'Q', "--.-"}, {'R', ".-."}, {'S', "..."}, {'T', "-"},
		{'U', "..-"}, {'V', "...-"}, {'W', ".--"}, {'X', "-..-"},
		{'Y', "-.--"}, {'Z', "--.."},
	}

	for _, tt := range tests {
		t.Run(string(tt.char), func(t *testing.T) {
			got, ok := Lookup(tt.char)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.char)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.char, got, tt.want)
			}
		})
	}
}

func TestLookup_Digits(t *testing.T) {
	want := map[rune]Symbol{
		'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
		'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	}

	for char, code := range want {
		got, ok := Lookup(char)
		if !ok || got != code {
			t.Errorf("Lookup(%q) = %q, %v; want %q, true", char, got, ok, code)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	lower, ok := Lookup('e')
	if !ok {
		t.Fatal("Lookup('e') not found")
	}
	upper, ok := Lookup('E')
	if !ok {
		t.Fatal("Lookup('E') not found")
	}
	if lower != upper {
		t.Errorf("Lookup('e') = %q, Lookup('E') = %q", lower, upper)
	}
	if marks := lower.Marks(); len(marks) != 1 || marks[0] != Dot {
		t.Errorf("Lookup('e').Marks() = %v, want [dot]", marks)
	}

	for _, r := range "abcdefghijklmnopqrstuvwxyz" {
		l, _ := Lookup(r)
		u, _ := Lookup(r - 'a' + 'A')
		if l != u {
			t.Errorf("Lookup(%q) = %q, upper = %q", r, l, u)
		}
	}
}

func TestLookup_Unsupported(t *testing.T) {
	for _, r := range []rune{'?', '!', '.', ',', ' ', '\t', '/', '=', 'é', 'ı', 'Ä', '€', 0} {
		if sym, ok := Lookup(r); ok || sym != "" {
			t.Errorf("Lookup(%q) = %q, %v; want empty, false", r, sym, ok)
		}
	}
}

func TestCharacters(t *testing.T) {
	chars := Characters()
	if len(chars) != 36 {
		t.Fatalf("len(Characters()) = %d, want 36", len(chars))
	}
	if chars[0] != 'A' || chars[25] != 'Z' || chars[26] != '0' || chars[35] != '9' {
		t.Errorf("Characters() order unexpected: %q", string(chars))
	}

	seen := make(map[Symbol]rune)
	for _, c := range chars {
		sym, ok := Lookup(c)
		if !ok || sym == "" {
			t.Errorf("Characters() includes %q with no symbol", c)
		}
		if prev, dup := seen[sym]; dup {
			t.Errorf("%q and %q share symbol %q", prev, c, sym)
		}
		seen[sym] = c
	}
}

func TestSymbol_Marks(t *testing.T) {
	marks := Symbol(".-").Marks()
	if len(marks) != 2 || marks[0] != Dot || marks[1] != Dash {
		t.Errorf("Symbol(\".-\").Marks() = %v, want [dot dash]", marks)
	}
	if got := Symbol("").Marks(); len(got) != 0 {
		t.Errorf("Symbol(\"\").Marks() = %v, want empty", got)
	}
}

func TestMark_String(t *testing.T) {
	if Dot.String() != "dot" || Dash.String() != "dash" || Mark('x').String() != "unknown" {
		t.Errorf("Mark.String() = %q, %q, %q", Dot, Dash, Mark('x'))
	}
}
