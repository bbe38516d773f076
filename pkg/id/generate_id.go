package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (a v4 uuid without hyphens).
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// NewAssignmentNumber returns the human-readable number ASG-YYYYMMDD-XXXXXX,
// dated by the assignment day and suffixed with 6 random uppercase hex chars.
func NewAssignmentNumber(assigned time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return "ASG-" + assigned.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b))
}
