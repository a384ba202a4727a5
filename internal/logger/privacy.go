package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

var hashSalt string

func init() {
	// In production, set LOG_HASH_SALT.
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// HashEmployeeID returns a short, salted hash so payroll logs can correlate
// actions without carrying employee identifiers.
func HashEmployeeID(employeeID string) string {
	hash := sha256.Sum256([]byte(employeeID + ":" + hashSalt))
	return hex.EncodeToString(hash[:])[:8]
}
