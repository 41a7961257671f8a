package validator

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	RgxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// Indian mobile number, with or without the +91 prefix.
	RgxPhoneNumber = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)

	// PAN: five letters, four digits, one letter.
	RgxPan = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

	// Aadhaar: twelve digits.
	RgxAadhaar = regexp.MustCompile(`^[0-9]{12}$`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func Between[T int | float64](value, min, max T) bool {
	return value >= min && value <= max
}

func In[T comparable](value T, safelist ...T) bool {
	return slices.Contains(safelist, value)
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	return RgxEmail.MatchString(value)
}

func IsPhoneNumber(value string) bool {
	return RgxPhoneNumber.MatchString(value)
}

func IsPan(value string) bool {
	return RgxPan.MatchString(value)
}

func IsAadhaar(value string) bool {
	return RgxAadhaar.MatchString(value)
}
