package util

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	number := GenerateOrderNumber()

	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)
	assert.Regexp(t, pattern, number)
	assert.Contains(t, number, time.Now().Format("20060102"))
}

func TestGenerateInvoiceNumber(t *testing.T) {
	number := GenerateInvoiceNumber()

	pattern := regexp.MustCompile(`^INV-\d{8}-\d{6}$`)
	assert.Regexp(t, pattern, number)
}

func TestGenerateDocumentNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateDocumentNumber("DOC")] = true
	}
	// 50 draws from a million-value space should not all collide
	assert.Greater(t, len(seen), 1)
}
