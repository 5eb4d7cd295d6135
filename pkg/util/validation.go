package util

import (
	"net/mail"
	"strings"
)

const (
	ChilePhonePrefix  = "+56"
	MinPasswordLength = 6
)

// IsValidChilePhone reports whether phone carries the +56 prefix followed by digits.
func IsValidChilePhone(phone string) bool {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !strings.HasPrefix(phone, ChilePhonePrefix) {
		return false
	}
	rest := phone[len(ChilePhonePrefix):]
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
