package booking

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	timePattern  = regexp.MustCompile(`(?i)(\d{1,2})(:\d{2})?\s*(am|pm)`)
	phonePattern = regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}`)

	introPattern    = regexp.MustCompile(`(?i)my name is `)
	bareNamePattern = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

// mentionedServices returns every service keyword found in text, in the fixed
// haircut, color, styling order. The last entry wins when folded into state.
func mentionedServices(lower string) []Service {
	var found []Service
	if strings.Contains(lower, "haircut") || strings.Contains(lower, "cut") {
		found = append(found, ServiceHaircut)
	}
	if strings.Contains(lower, "color") || strings.Contains(lower, "dye") {
		found = append(found, ServiceColor)
	}
	if strings.Contains(lower, "style") {
		found = append(found, ServiceStyling)
	}
	return found
}

// mentionedDay returns "today" over "tomorrow" when both appear.
func mentionedDay(lower string) string {
	day := ""
	if strings.Contains(lower, "tomorrow") {
		day = "tomorrow"
	}
	if strings.Contains(lower, "today") {
		day = "today"
	}
	return day
}

func findTime(text string) string {
	return timePattern.FindString(text)
}

func findPhone(text string) string {
	return phonePattern.FindString(text)
}

// introducedName returns the word following "my name is ", cut at the first
// comma, period or whitespace. ok is false when the phrase is absent.
func introducedName(text string) (name string, ok bool) {
	loc := introPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := strings.IndexFunc(rest, isNameTerminator); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

func isNameTerminator(r rune) bool {
	return r == ',' || r == '.' || unicode.IsSpace(r)
}

func isBareName(text string) bool {
	return bareNamePattern.MatchString(text)
}

// capitalizedToken returns the first space-separated token longer than two
// characters whose first character is unchanged by upper-casing. Digits and
// symbols pass this check too.
func capitalizedToken(text string) string {
	for _, word := range strings.Split(text, " ") {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if first == unicode.ToUpper(first) {
			return word
		}
	}
	return ""
}
