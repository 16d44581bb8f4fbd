// Package mac parses, validates, normalizes and generates MAC address text.
//
// All values produced here use the canonical display form: six lower-case hex
// octets separated by colons, e.g. "00:11:22:33:44:55".
package mac

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	msgEmpty     = "MAC address must not be empty"
	msgFormat    = "invalid MAC address format, expected one of: 00:11:22:33:44:55, 00-11-22-33-44-55, 001122334455"
	msgMulticast = "MAC address must be a unicast address (the least significant bit of the first octet must be 0)"
	msgValid     = "MAC address format is valid"
)

var acceptedForms = []*regexp.Regexp{
	regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`),
	regexp.MustCompile(`^([0-9A-Fa-f]{2}-){5}[0-9A-Fa-f]{2}$`),
	regexp.MustCompile(`^[0-9A-Fa-f]{12}$`),
}

// Validation is the outcome of Validate. Message is a reason when Valid is
// false and a confirmation otherwise.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Validate reports whether raw is usable as a target MAC address.
func Validate(raw string) Validation {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Validation{Message: msgEmpty}
	}

	matched := false
	for _, re := range acceptedForms {
		if re.MatchString(trimmed) {
			matched = true
			break
		}
	}
	if !matched {
		return Validation{Message: msgFormat}
	}

	first, err := strconv.ParseUint(stripSeparators(trimmed)[:2], 16, 8)
	if err != nil {
		return Validation{Message: msgFormat}
	}
	if first&0x01 != 0 {
		return Validation{Message: msgMulticast}
	}

	return Validation{Valid: true, Message: msgValid}
}

// Normalize converts raw into canonical form when it holds exactly twelve
// characters once colons and hyphens are removed. Anything else is returned
// trimmed but otherwise untouched; callers must Validate separately.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	clean := stripSeparators(trimmed)
	if len(clean) != 12 {
		return trimmed
	}

	clean = strings.ToLower(clean)
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < len(clean); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(clean[i : i+2])
	}
	return b.String()
}

// GenerateRandom returns a random unicast address in canonical form.
func GenerateRandom() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read never returns an error on supported platforms.
		panic(fmt.Sprintf("mac: reading random bytes: %v", err))
	}
	buf[0] &= 0xfe
	return Format(buf[:])
}

// Format renders six octets in canonical form. Other lengths yield "".
func Format(b []byte) string {
	if len(b) != 6 {
		return ""
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// Hyphenated renders a canonical value with hyphen separators in upper case,
// the form Windows adapter cmdlets expect. Non-canonical input is returned as is.
func Hyphenated(canonical string) string {
	if len(canonical) != 17 || strings.Count(canonical, ":") != 5 {
		return canonical
	}
	return strings.ToUpper(strings.ReplaceAll(canonical, ":", "-"))
}

func stripSeparators(s string) string {
	return strings.NewReplacer(":", "", "-", "").Replace(s)
}
