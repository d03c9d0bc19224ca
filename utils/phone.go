package utils

import "strings"

// NormalizePhone trims whitespace from a provider-supplied phone
// number. Providers occasionally send "anonymous" or empty values;
// those are kept as-is for the caller to reject.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
