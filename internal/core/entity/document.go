package entity

import (
	"context"
	"time"

	"prodsupply/internal/core/apperror"
)

// Document is the base type for business transactions.
// Examples: Sale, Production.
type Document struct {
	BaseDocument

	// Number is the document number (unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Reference is an optional external reference carried from the
	// originating document (e.g. a sale reference on a production)
	Reference string `db:"reference" json:"reference,omitempty"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
