package models

import (
	"strconv"
	"strings"
)

// NextWorkTitle returns prefix followed by one more than the largest positive
// number found in titles of the form "<prefix><number>". Titles that do not
// match are ignored; with no match the result is "<prefix>1".
func NextWorkTitle(prefix string, existing []string) string {
	highest := 0
	for _, title := range existing {
		rest, ok := strings.CutPrefix(title, prefix)
		if !ok || rest == "" || strings.TrimLeft(rest, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}
