package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocument(t *testing.T) {
	assert.Equal(t, "12345678909", NormalizeDocument("123.456.789-09"))
	assert.Equal(t, "11987654321", NormalizeDocument("(11) 98765-4321"))
	assert.Equal(t, "CROSP12345", NormalizeDocument("CRO-SP 12345"))
	assert.Equal(t, "", NormalizeDocument("..--  "))
	assert.Equal(t, "12345678909", NormalizeDocument("12345678909"))
}

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF("12345678909"))
	assert.False(t, ValidCPF("1234567890"))
	assert.False(t, ValidCPF("123456789091"))
	assert.False(t, ValidCPF("123.456.789"))
	assert.False(t, ValidCPF("1234567890a"))
	assert.False(t, ValidCPF(""))
}

func TestDuplicateChildCPF(t *testing.T) {
	distinct := []ChildCreateRequest{
		{CPF: "111.222.333-44"},
		{CPF: "555.666.777-88"},
	}
	assert.Equal(t, "", DuplicateChildCPF(distinct))

	// Same CPF with different formatting still counts as a duplicate.
	dupes := []ChildCreateRequest{
		{CPF: "111.222.333-44"},
		{CPF: "11122233344"},
	}
	assert.Equal(t, "11122233344", DuplicateChildCPF(dupes))

	assert.Equal(t, "", DuplicateChildCPF(nil))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "maria@example.com", NormalizeEmail("  Maria@Example.COM "))
	assert.Equal(t, "a@b.c", NormalizeEmail("a@b.c"))
}

func TestValidRelationship(t *testing.T) {
	known := []string{
		RelationshipFather, RelationshipMother,
		RelationshipGrandfather, RelationshipGrandmother,
		RelationshipUncle, RelationshipAunt,
		RelationshipSibling, RelationshipLegalGuardian,
	}
	for _, rel := range known {
		assert.Truef(t, ValidRelationship(rel), "%s should be valid", rel)
	}
	assert.False(t, ValidRelationship("cousin"))
	assert.False(t, ValidRelationship(""))
}
