package models

import "strings"

// NormalizeDocument strips formatting punctuation from user-entered CPF, CRO
// and phone values so storage and uniqueness checks compare digits only.
func NormalizeDocument(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks the normalized shape of a CPF: exactly 11 digits.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DuplicateChildCPF returns the first child CPF that appears more than once
// in a single submission, after normalization, or "" when all are distinct.
func DuplicateChildCPF(children []ChildCreateRequest) string {
	seen := make(map[string]bool, len(children))
	for _, child := range children {
		cpf := NormalizeDocument(child.CPF)
		if seen[cpf] {
			return cpf
		}
		seen[cpf] = true
	}
	return ""
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
