// internal/cw/morse.go
// Package cw turns text into timed Morse keying on a digital output.
package cw

import (
	"strings"
	"unicode"
)

// Mark is a single element of a Morse symbol.
type Mark byte

const (
	// Dot is the short element (dit)
	Dot Mark = '.'
	// Dash is the long element (dah)
	Dash Mark = '-'
)

// String returns "dot" or "dash".
func (m Mark) String() string {
	switch m {
	case Dot:
		return "dot"
	case Dash:
		return "dash"
	default:
		return "unknown"
	}
}

// Symbol is the ordered sequence of marks for one character, written with
// '.' for Dot and '-' for Dash. The empty Symbol means "no symbol".
type Symbol string

// Marks returns the marks of the symbol in transmission order.
func (s Symbol) Marks() []Mark {
	marks := make([]Mark, len(s))
	for i := 0; i < len(s); i++ {
		marks[i] = Mark(s[i])
	}
	return marks
}

// String returns the dot/dash rendering of the symbol.
func (s Symbol) String() string {
	return string(s)
}

// chart lists the ITU alphabet in the order it is usually printed.
// Left column letters, then digits.
var chart = []struct {
	char rune
	code Symbol
}{
	{'A', ".-"}, {'B', "-..."}, {'C', "-.-."}, {'D', "-.."},
	{'E', "."}, {'F', "..-."}, {'G', "--."}, {'H', "...."},
	{'I', ".."}, {'J', ".---"}, {'K', "-.-"}, {'L', ".-.."},
	{'M', "--"}, {'N', "-."}, {'O', "---"}, {'P', ".--."},
	{'Q', "--.-"}, {'R', ".-."}, {'S', "..."}, {'T', "-"},
	{'U', "..-"}, {'V', "...-"}, {'W', ".--"}, {'X', "-..-"},
	{'Y', "-.--"}, {'Z', "--.."},

	{'0', "-----"}, {'1', ".----"}, {'2', "..---"}, {'3', "...--"},
	{'4', "....-"}, {'5', "....."}, {'6', "-...."}, {'7', "--..."},
	{'8', "---.."}, {'9', "----."},
}

// symbolTable is built once from chart and never written afterwards.
var symbolTable = buildTable()

func buildTable() map[rune]Symbol {
	table := make(map[rune]Symbol, len(chart))
	for _, entry := range chart {
		if entry.code == "" || strings.Trim(string(entry.code), ".-") != "" {
			panic("cw: malformed chart entry for " + string(entry.char))
		}
		table[entry.char] = entry.code
	}
	return table
}

// Lookup returns the Morse symbol for r. Letters are matched case-insensitively.
// Characters outside A-Z and 0-9 have no symbol and report false; callers skip them.
func Lookup(r rune) (Symbol, bool) {
	// unicode.ToUpper maps a few non-ASCII runes onto ASCII letters (e.g. 'ı' -> 'I')
	if r > unicode.MaxASCII {
		return "", false
	}
	sym, ok := symbolTable[unicode.ToUpper(r)]
	return sym, ok
}

// Characters returns every supported character in chart order.
func Characters() []rune {
	chars := make([]rune, len(chart))
	for i, entry := range chart {
		chars[i] = entry.char
	}
	return chars
}
