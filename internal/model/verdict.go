package model

// ProfileType is the model's judgement of what kind of contact a lead is.
type ProfileType string

const (
	// ProfileProfessional means the lead matches the target profession.
	ProfileProfessional ProfileType = "professional"
	// ProfileAdjacent covers related but non-target profiles (students,
	// suppliers, adjacent specialties).
	ProfileAdjacent ProfileType = "adjacent"
	// ProfileSpam means no genuine professional identity could be found.
	ProfileSpam ProfileType = "spam"
)

// Verdict is the structured result of an AI qualification call.
type Verdict struct {
	IsTargetProfession bool        `json:"is_target_profession"`
	ProfileType        ProfileType `json:"profile_type"`
	ProfileLabel       string      `json:"profile_label,omitempty"` // raw label from the model, e.g. "Orthodontiste"
	ModelScore         int         `json:"model_score"`             // advisory only; policy recomputes
	ModelQualified     bool        `json:"model_qualified"`
	Reasoning          string      `json:"reasoning"`
	Sources            []string    `json:"sources,omitempty"`
}

// Classification buckets a scored lead for CRM status and reply formatting.
type Classification string

const (
	ClassQualified   Classification = "qualified"
	ClassPossible    Classification = "possible"
	ClassUnqualified Classification = "unqualified"
	ClassSpam        Classification = "spam"
)

// Rank orders classifications from worst to best. Used to assert
// monotonicity in tests and to pick the stronger of two signals.
func (c Classification) Rank() int {
	switch c {
	case ClassSpam:
		return 0
	case ClassUnqualified:
		return 1
	case ClassPossible:
		return 2
	case ClassQualified:
		return 3
	default:
		return -1
	}
}

// Factor is a single scoring criterion that contributed points.
type Factor struct {
	Criterion string `json:"criterion"`
	Points    int    `json:"points"`
}

// ScoredLead is the outcome of applying the scoring policy to a verdict.
type ScoredLead struct {
	Lead           `json:"lead"`
	Verdict        Verdict        `json:"verdict"`
	Score          int            `json:"score"` // 0-100
	Classification Classification `json:"classification"`
	Factors        []Factor       `json:"factors"`
}

// Qualified reports whether the lead cleared the qualification threshold.
func (s ScoredLead) Qualified() bool {
	return s.Classification == ClassQualified
}
