package qualify

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// ErrMalformedVerdict means the model's output did not contain the required
// JSON schema. It is a hard failure: retrying the same prompt is unlikely
// to help, and the pipeline falls back to its degraded path.
var ErrMalformedVerdict = eris.New("qualify: malformed verdict from model")

// rawVerdict mirrors the JSON schema the prompt demands. Pointer fields
// distinguish absent from false during strict validation.
type rawVerdict struct {
	IsTargetProfession *bool  `json:"is_target_profession"`
	ProfileType        string `json:"profile_type"`
	ProfileLabel       string `json:"profile_label"`
	Score              int    `json:"score"`
	Qualified          *bool  `json:"qualified"`
	Reasoning          string `json:"reasoning"`
}

// parseVerdict extracts and validates the verdict JSON from raw model
// output. It tolerates markdown fences and surrounding prose by scanning
// for the first balanced JSON object that satisfies the schema.
func parseVerdict(text string) (model.Verdict, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "```json", ""), "```", ""))

	var raw rawVerdict
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		if !scanJSONObject(cleaned, &raw) {
			return model.Verdict{}, eris.Wrap(ErrMalformedVerdict, "no JSON object found")
		}
	}

	if raw.IsTargetProfession == nil || raw.Qualified == nil || raw.ProfileType == "" || raw.Reasoning == "" {
		return model.Verdict{}, eris.Wrap(ErrMalformedVerdict, "missing required fields")
	}

	v := model.Verdict{
		IsTargetProfession: *raw.IsTargetProfession,
		ProfileType:        normalizeProfile(raw.ProfileType, raw.ProfileLabel),
		ProfileLabel:       raw.ProfileLabel,
		ModelScore:         raw.Score,
		ModelQualified:     *raw.Qualified,
		Reasoning:          raw.Reasoning,
	}

	// A spam profile can never also be the target profession.
	if v.ProfileType == model.ProfileSpam {
		v.IsTargetProfession = false
	}

	return v, nil
}

// scanJSONObject walks the text for balanced top-level braces and tries to
// decode each candidate object until one parses.
func scanJSONObject(text string, out *rawVerdict) bool {
	depth := 0
	start := -1
	for i, ch := range text {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				if err := json.Unmarshal([]byte(text[start:i+1]), out); err == nil {
					return true
				}
				start = -1
			}
		}
	}
	return false
}

// normalizeProfile folds the model's free-form labels into the enum. Labels
// naming the target profession map to professional; anything unrecognized
// that is not spam counts as adjacent.
func normalizeProfile(profileType, label string) model.ProfileType {
	switch strings.ToLower(strings.TrimSpace(profileType)) {
	case "professional":
		return model.ProfileProfessional
	case "adjacent":
		return model.ProfileAdjacent
	case "spam":
		return model.ProfileSpam
	}

	// Fall back to the label for models that echo the label in both fields.
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "spam":
		return model.ProfileSpam
	case "dentiste", "orthodontiste", "chirurgien-dentiste":
		return model.ProfileProfessional
	default:
		return model.ProfileAdjacent
	}
}
