package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

var (
	titleCharset    = regexp.MustCompile(`[^a-zA-Z0-9\s\-.,'&]`)
	restrictedChars = regexp.MustCompile("[@#$%^*<>{}\\[\\]|~`]")
	digits          = regexp.MustCompile(`\d`)
)

// ItemTitle enforces the item-name rules: 2-100 chars, a restricted character
// set, and not mostly numeric.
func ItemTitle(title string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return fmt.Errorf("item name is required")
	}
	if len(t) < 2 {
		return fmt.Errorf("item name must be at least 2 characters")
	}
	if len(t) > 100 {
		return fmt.Errorf("item name must be less than 100 characters")
	}
	if titleCharset.MatchString(t) {
		return fmt.Errorf("item name should not contain special characters like @, #, $, %%, etc.")
	}
	if len(digits.FindAllString(t, -1)) > len(t)/2 {
		return fmt.Errorf("item name should not be mostly numbers")
	}
	return nil
}

// ItemDescription allows up to 1000 chars and blocks dangerous symbols.
func ItemDescription(description string) error {
	d := strings.TrimSpace(description)
	if len(d) > 1000 {
		return fmt.Errorf("description must be less than 1000 characters")
	}
	if restrictedChars.MatchString(d) {
		return fmt.Errorf("description should not contain special characters like @, #, $, %%, *, <, >, etc.")
	}
	return nil
}

// ItemLocation enforces 3-200 chars and the same restricted symbol set.
func ItemLocation(location string) error {
	l := strings.TrimSpace(location)
	if l == "" {
		return fmt.Errorf("location is required")
	}
	if len(l) < 3 {
		return fmt.Errorf("location must be at least 3 characters")
	}
	if len(l) > 200 {
		return fmt.Errorf("location must be less than 200 characters")
	}
	if restrictedChars.MatchString(l) {
		return fmt.Errorf("location should not contain special characters like @, #, $, %%, *, <, >, etc.")
	}
	return nil
}

// PastDate parses a YYYY-MM-DD date and rejects dates after today.
func PastDate(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	if t.After(endOfToday) {
		return time.Time{}, fmt.Errorf("date cannot be in the future")
	}
	return t, nil
}

// Sanitize removes the restricted symbol set from free-text input.
func Sanitize(input string) string {
	return restrictedChars.ReplaceAllString(input, "")
}
