package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactID keeps the first four characters of a visitor identifier.
// "track_5f1c..." → "trac***". Identifiers of four characters or less are
// fully masked. E-mail addresses used as ids go through RedactEmail.
func RedactID(id string) string {
	if id == "" {
		return ""
	}
	if strings.Contains(id, "@") {
		return RedactEmail(id)
	}
	if len(id) <= 4 {
		return "***"
	}
	return id[:4] + "***"
}
