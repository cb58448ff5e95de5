package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/pkg/salesforce"
)

// leadStatusField is the custom field holding the qualification status on
// the Salesforce Lead object.
const leadStatusField = "Lead_Status__c"

// Salesforce adapts the Salesforce Lead object to the pipeline's CRM
// contract.
type Salesforce struct {
	api salesforce.Client
}

// NewSalesforce returns a CRM client backed by the Salesforce REST API.
func NewSalesforce(api salesforce.Client) *Salesforce {
	return &Salesforce{api: api}
}

type sfLeadRecord struct {
	ID string `json:"Id"`
}

func (s *Salesforce) FindByEmail(ctx context.Context, email string) (string, error) {
	soql := fmt.Sprintf("SELECT Id FROM Lead WHERE Email = '%s' LIMIT 1", escapeSOQL(email))
	var result salesforce.QueryResult[sfLeadRecord]
	if err := s.api.Query(ctx, soql, &result); err != nil {
		return "", eris.Wrap(err, "crm: salesforce lead query")
	}
	if len(result.Records) == 0 {
		return "", nil
	}
	return result.Records[0].ID, nil
}

func (s *Salesforce) UpdateStatus(ctx context.Context, contactID string, st Status) error {
	fields := map[string]any{leadStatusField: string(st)}
	if err := s.api.UpdateOne(ctx, "Lead", contactID, fields); err != nil {
		return eris.Wrap(err, "crm: salesforce lead update")
	}
	return nil
}

func (s *Salesforce) CreateContact(ctx context.Context, lead model.Lead, st Status) (string, error) {
	record := map[string]any{
		"LastName":      orFallback(lead.LastName, lead.FullName, "Unknown"),
		"Company":       orFallback(lead.Source, "", "Inbound"),
		leadStatusField: string(st),
	}
	if lead.FirstName != "" {
		record["FirstName"] = lead.FirstName
	}
	if lead.Email != "" {
		record["Email"] = lead.Email
	}
	if lead.Phone != "" {
		record["Phone"] = lead.Phone
	}
	id, err := s.api.InsertOne(ctx, "Lead", record)
	if err != nil {
		return "", eris.Wrap(err, "crm: salesforce lead insert")
	}
	return id, nil
}

// escapeSOQL escapes quote characters so user-supplied values cannot break
// out of a SOQL string literal.
func escapeSOQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

func orFallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
