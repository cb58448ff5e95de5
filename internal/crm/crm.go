// Package crm defines the CRM operations the pipeline consumes and the
// HubSpot and Salesforce backends that implement them.
package crm

import (
	"context"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// Status is a recognized lead status in the CRM.
type Status string

const (
	// StatusQualified marks a verified professional lead.
	StatusQualified Status = "Qualified"
	// StatusKO marks a lead that failed qualification.
	StatusKO Status = "KO"
	// StatusToQualify marks a lead awaiting manual review.
	StatusToQualify Status = "To-qualify"
)

// StatusFor maps a classification to its CRM status. Possible leads go to
// manual review rather than an automatic KO.
func StatusFor(c model.Classification) Status {
	switch c {
	case model.ClassQualified:
		return StatusQualified
	case model.ClassPossible:
		return StatusToQualify
	default:
		return StatusKO
	}
}

// Client is the CRM boundary the pipeline calls. Both operations are
// fallible remote calls; the pipeline treats their failures as soft.
type Client interface {
	// FindByEmail returns the contact ID for email, or "" when no contact
	// exists.
	FindByEmail(ctx context.Context, email string) (string, error)

	// UpdateStatus sets the lead status on an existing contact.
	UpdateStatus(ctx context.Context, contactID string, st Status) error

	// CreateContact creates a contact for the lead and returns its ID.
	CreateContact(ctx context.Context, lead model.Lead, st Status) (string, error)
}
