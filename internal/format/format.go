// Package format renders dates and amounts the way the household UI and
// the assistant speak them: French.
package format

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frenchDays = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

// Date renders "2025-04-01" as "1 avril 2025", matching the fr-FR long
// date format used across the UI. Malformed input is returned unchanged.
func Date(iso string) string {
	t, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// DateWithWeekday renders "2025-04-01" as "mardi 1 avril 2025".
func DateWithWeekday(iso string) string {
	t, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return frenchDays[t.Weekday()] + " " + Date(iso)
}

// Month renders "2025-04" as "avril 2025".
func Month(yearMonth string) string {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return yearMonth
	}
	return fmt.Sprintf("%s %d", frenchMonths[t.Month()-1], t.Year())
}

// Euros renders minor units as a French amount: 1250 is "12,50 €" and
// -300 is "-3,00 €". Thousands take a narrow no-break space group
// separator: 1234567 is "12 345,67 €".
func Euros(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	return fmt.Sprintf("%s%s,%02d €", sign, group(whole), frac)
}

func group(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, " ")
}
