package utils

import "strings"

// MaskIdentifier obscures an email address or phone number for display.
// The transform is display-only: masked values must never be hashed,
// persisted, or sent upstream in place of the real identifier.
//
// Emails keep the first two characters of the local part and the full
// domain ("jo***@domain.com"); phone numbers keep the last four digits
// ("***1234"). Values too short to mask meaningfully are fully obscured.
func MaskIdentifier(identifier string) string {
	if at := strings.Index(identifier, "@"); at >= 0 {
		return maskEmail(identifier[:at], identifier[at:])
	}
	return maskPhone(identifier)
}

func maskEmail(local, domain string) string {
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "***"
	}
	return "***" + phone[len(phone)-4:]
}
