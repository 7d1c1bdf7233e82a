package credential

import "strings"

// NormalizeEmail lowercases and trims an email address so one mailbox maps
// to exactly one user row.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns the part before '@', already normalized.
func EmailLocalPart(email string) string {
	email = NormalizeEmail(email)
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// NormalizeDeviceID trims a client-supplied device fingerprint and caps its
// length. An empty fingerprint collapses to "unknown" so throttle keys stay
// well-formed.
func NormalizeDeviceID(deviceID string) string {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return "unknown"
	}
	if len(deviceID) > 128 {
		deviceID = deviceID[:128]
	}
	return deviceID
}
