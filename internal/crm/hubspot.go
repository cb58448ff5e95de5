package crm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/pkg/hubspot"
)

// HubSpot adapts the HubSpot contacts API to the pipeline's CRM contract.
type HubSpot struct {
	api hubspot.Client
}

// NewHubSpot returns a CRM client backed by the HubSpot contacts API.
func NewHubSpot(api hubspot.Client) *HubSpot {
	return &HubSpot{api: api}
}

func (h *HubSpot) FindByEmail(ctx context.Context, email string) (string, error) {
	contact, err := h.api.SearchContactByEmail(ctx, email)
	if err != nil {
		return "", eris.Wrap(err, "crm: hubspot contact search")
	}
	if contact == nil {
		return "", nil
	}
	return contact.ID, nil
}

func (h *HubSpot) UpdateStatus(ctx context.Context, contactID string, st Status) error {
	if err := h.api.UpdateContact(ctx, contactID, hubspotStatusProperties(st)); err != nil {
		return eris.Wrap(err, "crm: hubspot contact update")
	}
	return nil
}

func (h *HubSpot) CreateContact(ctx context.Context, lead model.Lead, st Status) (string, error) {
	props := hubspotStatusProperties(st)
	props["email"] = lead.Email
	if lead.FirstName != "" {
		props["firstname"] = lead.FirstName
	}
	if lead.LastName != "" {
		props["lastname"] = lead.LastName
	}
	if lead.Phone != "" {
		props["phone"] = lead.Phone
	}
	contact, err := h.api.CreateContact(ctx, props)
	if err != nil {
		return "", eris.Wrap(err, "crm: hubspot contact create")
	}
	return contact.ID, nil
}

// hubspotStatusProperties maps a status onto the HubSpot lifecycle and lead
// status properties.
func hubspotStatusProperties(st Status) map[string]string {
	props := map[string]string{"lead_status": string(st)}
	switch st {
	case StatusQualified:
		props["lifecyclestage"] = "lead"
		props["hs_lead_status"] = "OPEN"
	case StatusKO:
		props["hs_lead_status"] = "UNQUALIFIED"
	case StatusToQualify:
		props["hs_lead_status"] = "NEW"
	}
	return props
}
