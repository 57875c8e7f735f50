package ui

import "golang.org/x/term"

// IsTTY reports whether fd refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TermWidth returns the terminal width in columns, or fallback when it
// cannot be determined.
func TermWidth(fd uintptr, fallback int) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
