// Package console draws encounters as ANSI text and reads menu keys from a
// line-oriented input stream.
package console

import "fmt"

// ANSI escape codes used by the renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Magenta = "\033[35m"

	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Palette maps renderer roles to escape codes. The zero Palette draws plain
// text.
type Palette struct {
	Title, Party, Monster, Dead, Current, Target string
	Damage, Heal, Status                       string
	Selected, Disabled, Dialog                 string
}

// ANSI is the default colored palette.
var ANSI = Palette{
	Title:    BrightYellow,
	Party:    Green,
	Monster:  Red,
	Dead:     Dim,
	Current:  Bold,
	Target:   BrightCyan,
	Damage:   Red,
	Heal:     Green,
	Status:   Magenta,
	Selected: BrightWhite,
	Disabled: Dim,
	Dialog:   White,
}

// paint wraps text in color and a reset. An empty color leaves text as is.
func paint(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + Reset
}

func paintf(color, format string, args ...any) string {
	return paint(color, fmt.Sprintf(format, args...))
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
