package util

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateDocumentNumber builds a human-readable document number like
// ORD-20260115-483920. Uniqueness is enforced by the database index on the
// column that stores it.
func GenerateDocumentNumber(prefix string) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, time.Now().Format("20060102"), rand.Intn(1000000))
}

// GenerateOrderNumber creates a number for a customer order
func GenerateOrderNumber() string {
	return GenerateDocumentNumber("ORD")
}

// GenerateInvoiceNumber creates a number for a supplier purchase invoice
func GenerateInvoiceNumber() string {
	return GenerateDocumentNumber("INV")
}
