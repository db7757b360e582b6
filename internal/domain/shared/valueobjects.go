package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// StudentID represents a unique student identifier (UUID format).
type StudentID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the student ID is a valid UUID.
func (s StudentID) IsValid() bool {
	return uuidRegex.MatchString(string(s))
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format")
	}
	return sid, nil
}

// AgreementCode identifies an exchange agreement, e.g. "epfl-eth-in".
type AgreementCode string

var agreementCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// IsValid checks the agreement code format.
func (a AgreementCode) IsValid() bool {
	return agreementCodeRegex.MatchString(string(a))
}

// NewAgreementCode normalizes (lowercase) and validates an agreement code.
func NewAgreementCode(code string) (AgreementCode, error) {
	ac := AgreementCode(strings.ToLower(strings.TrimSpace(code)))
	if !ac.IsValid() {
		return "", NewDomainError("shared", "NewAgreementCode", ErrInvalidID, "invalid agreement code format")
	}
	return ac, nil
}
