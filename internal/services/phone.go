package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var (
	reLetters = regexp.MustCompile(`[A-Za-z]`)
	// Only allow digits, spaces, +, -, (, ), .
	reAllowed = regexp.MustCompile(`^[0-9+\-\s\(\)\.]+$`)
)

// NormPhone normalizes Vietnamese phone numbers to the +84 form.
// Rules: strip spaces/dashes/dots/parens; 00.. -> +..; 84.. -> +84..; 0.. -> +84..
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" || reLetters.MatchString(s) || !reAllowed.MatchString(s) {
		return ""
	}

	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\n", "", "\r", "")
	s = repl.Replace(s)

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if strings.HasPrefix(s, "84") {
		s = "+" + s
	}
	if strings.HasPrefix(s, "0") {
		s = "+84" + s[1:]
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	if len(digitsOnly(s)) < 8 {
		return ""
	}
	return s
}

// NormEmail lowercases and checks an optional email address.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", true
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
