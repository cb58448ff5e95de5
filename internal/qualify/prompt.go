package qualify

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/internal/scoring"
)

// systemPrompt frames the model as a verification analyst. The scoring
// numbers it sees are advisory context; the service recomputes the score
// locally from the verdict signals.
const systemPrompt = `You are a dental lead qualification analyst for France. You MUST perform THOROUGH web searches before concluding anything.`

// buildPrompt renders the qualification request for one lead: the lead's
// fields, search query variants, the scoring criteria text, and the strict
// output schema.
func buildPrompt(lead model.Lead, criteria scoring.Criteria) string {
	var b strings.Builder

	b.WriteString("LEAD TO VERIFY:\n")
	fmt.Fprintf(&b, "Name: %s\n", orUnknown(lead.FullName))
	fmt.Fprintf(&b, "Email: %s\n", orUnknown(lead.Email))
	fmt.Fprintf(&b, "Phone: %s\n", orUnknown(lead.Phone))
	fmt.Fprintf(&b, "Country: %s\n", orUnknown(lead.Country))

	b.WriteString(`
CRITICAL INSTRUCTIONS:
1. Search MULTIPLE sources before concluding SPAM
2. Web search can be flaky - try different search variations
3. If the first search finds nothing, try: name only, name + profession, name + a trusted directory
4. A generic mail provider does NOT automatically mean SPAM - many professionals use one
`)

	b.WriteString("\nTRUSTED SOURCES (a hit on any of these strongly supports the lead):\n")
	for _, src := range criteria.TrustedSources {
		fmt.Fprintf(&b, "- %s\n", src)
	}

	if queries := searchQueries(lead, criteria); len(queries) > 0 {
		b.WriteString("\nSEARCH QUERIES TO TRY (in order):\n")
		for i, q := range queries {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
	}

	b.WriteString("\n")
	b.WriteString(criteria.PromptText())

	b.WriteString(`
ONLY classify profile_type as "spam" if:
- No web presence found AFTER THOROUGH SEARCHING
- The name appears nowhere as a practicing professional
- No professional indicators at all

Return ONLY JSON:
{"is_target_profession": true/false, "profile_type": "professional/adjacent/spam", "profile_label": "Dentiste/Orthodontiste/Etudiant/Autre/Spam", "score": 0-100, "qualified": true/false, "reasoning": "What you found and where"}`)

	return b.String()
}

// searchQueries produces name-variant queries against the trusted sources.
// Capped at six so the model doesn't burn its search budget on repeats.
func searchQueries(lead model.Lead, criteria scoring.Criteria) []string {
	name := strings.TrimSpace(lead.FullName)
	if name == "" {
		return nil
	}

	variants := []string{name}
	if stripped := stripTitle(name); stripped != name {
		variants = append(variants, stripped)
	}
	if lead.LastName != "" && lead.LastName != name {
		variants = append(variants, lead.LastName)
	}

	var queries []string
	for _, v := range variants {
		for _, src := range criteria.TrustedSources {
			queries = append(queries, fmt.Sprintf(`site:%s "%s"`, src, v))
		}
		queries = append(queries, fmt.Sprintf(`"%s" dentiste France`, v))
	}

	if len(queries) > 6 {
		queries = queries[:6]
	}
	return queries
}

// stripTitle removes honorifics so "Dr. Sophie Martin" also gets searched
// as "Sophie Martin".
func stripTitle(name string) string {
	for _, prefix := range []string{"Dr. ", "Dr ", "Pr. ", "Pr "} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(name, prefix))
		}
	}
	return name
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
