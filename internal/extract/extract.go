// Package extract parses raw chat messages into lead candidates using an
// ordered table of named field rules. First successful match per field wins.
package extract

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// ErrNoContactInfo is returned when neither a valid email nor a valid phone
// number can be located in the message.
var ErrNoContactInfo = eris.New("extract: no valid email or phone found")

var emailRe = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)

// rule is a single named extraction pattern. Group selects the capture
// group holding the field value; 0 means the whole match.
type rule struct {
	name  string
	re    *regexp.Regexp
	group int
}

// firstMatch runs rules in order and returns the first captured value.
func firstMatch(rules []rule, msg string) string {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		return strings.TrimSpace(m[r.group])
	}
	return ""
}

// Phone rules: chat-platform link format first, labeled fields next, bare
// number patterns last.
var phoneRules = []rule{
	{"slack_tel_link", regexp.MustCompile(`<tel:[^|>]+\|([^>]+)>`), 1},
	{"labeled_mobile", regexp.MustCompile(`(?i)Mobile\s*:\s*([+\d][\d\s.-]{6,})`), 1},
	{"labeled_phone", regexp.MustCompile(`(?i)Phone\s*:\s*([+\d][\d\s.-]{6,})`), 1},
	{"labeled_tel", regexp.MustCompile(`(?i)Tel\s*:\s*([+\d][\d\s.-]{6,})`), 1},
	{"labeled_telephone", regexp.MustCompile(`(?i)T[ée]l[ée]phone\s*:\s*([+\d][\d\s.-]{6,})`), 1},
	{"labeled_gsm", regexp.MustCompile(`(?i)GSM\s*:\s*([+\d][\d\s.-]{6,})`), 1},
	{"bare_fr", regexp.MustCompile(`(?:\b0|\+33)[\d\s.-]{8,}\b`), 0},
	{"bare_generic", regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`), 0},
}

// Name rules: lead-notification phrasings first, plain label fallback.
var nameRules = []rule{
	{"lead_arrived", regexp.MustCompile(`(?i)A new lead(?: has arrived)?\s*:\s*(.+?)\s+-`), 1},
	{"lead_booked", regexp.MustCompile(`(?i)The following lead has booked[^:]*:\s*(.+?)\s+-`), 1},
	{"labeled_name", regexp.MustCompile(`(?i)Name\s*:\s*([^\n,<]+)`), 1},
}

var (
	countryRe = regexp.MustCompile(`-\s*([\p{L}]+)\s*\(([^)]+)\)`)
	sourceRe  = regexp.MustCompile(`(?i)Coming from\s+([^→\-\n]+?)(?:\s+-|→|$)`)
	ownerRe   = regexp.MustCompile(`(?i)Sales owner\s*:\s*([^\n→]+)`)
	digitsRe  = regexp.MustCompile(`\d`)
)

// Extract parses a raw inbound message into a lead candidate. It is
// side-effect-free and tolerates missing fields; it fails only when no
// usable contact field is present.
func Extract(channel, threadTS, raw string) (model.Lead, error) {
	lead := model.Lead{
		Channel:    channel,
		ThreadTS:   threadTS,
		RawMessage: raw,
	}

	if m := emailRe.FindStringSubmatch(raw); m != nil {
		lead.Email = strings.ToLower(m[1])
	}

	phone := firstMatch(phoneRules, raw)
	if validPhone(phone) {
		lead.Phone = phone
	}

	if !lead.HasContact() {
		return model.Lead{}, ErrNoContactInfo
	}

	fullName := norm.NFC.String(firstMatch(nameRules, raw))
	lead.FullName = fullName
	if parts := strings.Fields(fullName); len(parts) > 0 {
		lead.FirstName = parts[0]
		lead.LastName = strings.Join(parts[1:], " ")
	}

	if m := countryRe.FindStringSubmatch(raw); m != nil {
		lead.Country = strings.TrimSpace(m[1])
		lead.PostalCode = strings.TrimSpace(m[2])
	}
	if m := sourceRe.FindStringSubmatch(raw); m != nil {
		lead.Source = strings.TrimSpace(m[1])
	}
	if m := ownerRe.FindStringSubmatch(raw); m != nil {
		lead.SalesOwner = strings.TrimSpace(m[1])
	}

	return lead, nil
}

// validPhone requires at least 8 digits so stray numbers in free text
// (scores, postal codes) don't pass as contact info.
func validPhone(s string) bool {
	return len(digitsRe.FindAllString(s, -1)) >= 8
}
