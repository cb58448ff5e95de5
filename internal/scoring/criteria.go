// Package scoring implements the pure lead-scoring policy: a weighted
// criteria table mapped over a qualification verdict and a candidate lead.
package scoring

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Criteria holds the weights, thresholds, and keyword tables the policy
// scores against. Everything here is configuration: the policy itself never
// hardcodes a weight.
type Criteria struct {
	// Weights, in points added when the criterion matches.
	NameVerifiedWeight  int `yaml:"name_verified_weight"`
	DomainKeywordWeight int `yaml:"domain_keyword_weight"`
	ProDomainWeight     int `yaml:"pro_domain_weight"`
	CompletenessWeight  int `yaml:"completeness_weight"`

	// Classification thresholds on the 0-100 score.
	QualifiedThreshold int `yaml:"qualified_threshold"`
	PossibleThreshold  int `yaml:"possible_threshold"`

	// DomainKeywords are substrings of the email address that indicate a
	// profession-relevant mailbox or domain.
	DomainKeywords []string `yaml:"domain_keywords"`

	// FreeProviders are generic mail domains that earn no pro-domain points.
	FreeProviders []string `yaml:"free_providers"`

	// TrustedSources are reference sites whose appearance in search results
	// raises confidence a lead is genuine. Passed to the AI prompt.
	TrustedSources []string `yaml:"trusted_sources"`
}

// Default returns the built-in criteria. Weights sum to 100.
func Default() Criteria {
	return Criteria{
		NameVerifiedWeight:  40,
		DomainKeywordWeight: 30,
		ProDomainWeight:     20,
		CompletenessWeight:  10,

		QualifiedThreshold: 70,
		PossibleThreshold:  40,

		DomainKeywords: []string{
			"dr.", "doc", "docteur", "cabinet", "dentaire", "dent",
			"clinique", "ortho",
		},
		FreeProviders: []string{
			"gmail.com", "yahoo.com", "yahoo.fr", "hotmail.com", "hotmail.fr",
			"outlook.com", "outlook.fr", "live.com", "live.fr", "free.fr",
			"orange.fr", "wanadoo.fr", "laposte.net", "sfr.fr", "icloud.com",
			"protonmail.com", "proton.me", "gmx.com", "gmx.fr",
		},
		TrustedSources: []string{
			"doctolib.fr", "annuaire.sante.fr", "ordre-chirurgiens-dentistes.fr",
			"linkedin.com",
		},
	}
}

// Load reads criteria from a YAML file, layering it over the defaults so a
// partial file only overrides what it names.
func Load(path string) (Criteria, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Criteria{}, eris.Wrap(err, "scoring: read criteria file")
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Criteria{}, eris.Wrap(err, "scoring: parse criteria file")
	}

	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Validate checks that the criteria are internally consistent.
func (c Criteria) Validate() error {
	var errs []string

	weights := map[string]int{
		"name_verified_weight":  c.NameVerifiedWeight,
		"domain_keyword_weight": c.DomainKeywordWeight,
		"pro_domain_weight":     c.ProDomainWeight,
		"completeness_weight":   c.CompletenessWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.QualifiedThreshold < 0 || c.QualifiedThreshold > 100 {
		errs = append(errs, "qualified_threshold must be between 0 and 100")
	}
	if c.PossibleThreshold < 0 || c.PossibleThreshold > c.QualifiedThreshold {
		errs = append(errs, "possible_threshold must be between 0 and qualified_threshold")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: criteria validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PromptText renders the criteria as scoring instructions for the AI prompt.
func (c Criteria) PromptText() string {
	var b strings.Builder
	b.WriteString("SCORING (0-100):\n")
	fmt.Fprintf(&b, "+%d: name found on a trusted source as a practicing professional\n", c.NameVerifiedWeight)
	fmt.Fprintf(&b, "+%d: email contains a profession-related keyword (%s)\n", c.DomainKeywordWeight, strings.Join(c.DomainKeywords, ", "))
	fmt.Fprintf(&b, "+%d: professional email domain (not %s, ...)\n", c.ProDomainWeight, strings.Join(firstN(c.FreeProviders, 3), ", "))
	fmt.Fprintf(&b, "+%d: complete contact info (name + email + phone)\n", c.CompletenessWeight)
	return b.String()
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
