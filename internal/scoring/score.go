package scoring

import (
	"strings"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// Score applies the weighted criteria to a verdict and candidate. It is
// deterministic and side-effect-free: the same inputs always produce the
// same score and classification. The model's own score hint is advisory
// input to reasoning only; the local recomputation is authoritative.
func Score(v model.Verdict, lead model.Lead, c Criteria) model.ScoredLead {
	var factors []model.Factor
	add := func(criterion string, points int) {
		factors = append(factors, model.Factor{Criterion: criterion, Points: points})
	}

	if v.IsTargetProfession {
		add("name_verified", c.NameVerifiedWeight)
	}
	if containsKeyword(lead.Email, c.DomainKeywords) {
		add("domain_keyword", c.DomainKeywordWeight)
	}
	if lead.Email != "" && !isFreeProvider(lead.Email, c.FreeProviders) {
		add("pro_domain", c.ProDomainWeight)
	}
	if lead.Email != "" && lead.Phone != "" {
		add("completeness", c.CompletenessWeight)
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	score = clamp(score, 0, 100)

	return model.ScoredLead{
		Lead:           lead,
		Verdict:        v,
		Score:          score,
		Classification: classify(score, v.ProfileType, c),
		Factors:        factors,
	}
}

// classify maps a score to a classification. A spam verdict overrides the
// numeric score: a model-flagged spam signal is stronger evidence than
// keyword heuristics.
func classify(score int, profile model.ProfileType, c Criteria) model.Classification {
	if profile == model.ProfileSpam {
		return model.ClassSpam
	}
	switch {
	case score >= c.QualifiedThreshold:
		return model.ClassQualified
	case score >= c.PossibleThreshold:
		return model.ClassPossible
	default:
		return model.ClassUnqualified
	}
}

func containsKeyword(email string, keywords []string) bool {
	if email == "" {
		return false
	}
	lower := strings.ToLower(email)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func isFreeProvider(email string, providers []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, p := range providers {
		if domain == strings.ToLower(p) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
