package model

// Lead is a candidate lead extracted from a single inbound chat message.
// It is transient: created per webhook delivery and owned by the pipeline.
type Lead struct {
	Channel    string `json:"channel"`
	ThreadTS   string `json:"thread_ts,omitempty"`
	RawMessage string `json:"raw_message"`

	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"` // lowercase-normalized
	Phone      string `json:"phone,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Source     string `json:"source,omitempty"`
	SalesOwner string `json:"sales_owner,omitempty"`
}

// Identity returns the field used to identify the lead in logs and the
// activity feed: email when present, otherwise phone.
func (l Lead) Identity() string {
	if l.Email != "" {
		return l.Email
	}
	return l.Phone
}

// HasContact reports whether the lead carries at least one contact field.
func (l Lead) HasContact() bool {
	return l.Email != "" || l.Phone != ""
}
