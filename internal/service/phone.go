package service

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid rwandan phone number")

// Accepts local and international forms: 078xxxxxxx, 78xxxxxxx,
// 25078xxxxxxx, +25078xxxxxxx.
var rwandanPhone = regexp.MustCompile(`^(\+?250|0)?7[0-9]{8}$`)

// NormalizePhone validates a Rwandan mobile number and returns it in
// canonical +2507XXXXXXXX form. Empty input passes through unchanged so
// optional phone fields stay optional.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	if !rwandanPhone.MatchString(cleaned) {
		return "", ErrInvalidPhone
	}
	// The significant part is always the trailing 9 digits.
	return "+250" + cleaned[len(cleaned)-9:], nil
}
