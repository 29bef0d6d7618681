package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is given, the helper looks for
// the constraint text in the error message so callers can distinguish the
// accepted-response backstop index from other constraints.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
