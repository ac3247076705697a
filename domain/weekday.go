package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// weekdayNumbers maps capitalized English and Russian weekday names to the
// day-of-week numbering used by SQL date extraction: Sunday=1 .. Saturday=7.
var weekdayNumbers = map[string]int{
	"Monday": 2, "Понедельник": 2,
	"Tuesday": 3, "Вторник": 3,
	"Wednesday": 4, "Среда": 4,
	"Thursday": 5, "Четверг": 5,
	"Friday": 6, "Пятница": 6,
	"Saturday": 7, "Суббота": 7,
	"Sunday": 1, "Воскресенье": 1,
}

// WeekdayNumber resolves a weekday name, in either locale and any casing, to
// its store-native number. The second return is false for unknown names.
func WeekdayNumber(name string) (int, bool) {
	n, ok := weekdayNumbers[Capitalize(name)]
	return n, ok
}

// Capitalize upper-cases the first rune and lower-cases the rest. It works on
// Cyrillic as well as ASCII input.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
