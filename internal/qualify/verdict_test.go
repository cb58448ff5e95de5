package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-qualifier/internal/model"
)

const goodVerdictJSON = `{
  "is_target_profession": true,
  "profile_type": "professional",
  "profile_label": "Orthodontiste",
  "score": 85,
  "qualified": true,
  "reasoning": "Found on doctolib.fr as a practicing orthodontist in Paris."
}`

func TestParseVerdict_PlainJSON(t *testing.T) {
	v, err := parseVerdict(goodVerdictJSON)
	require.NoError(t, err)

	assert.True(t, v.IsTargetProfession)
	assert.Equal(t, model.ProfileProfessional, v.ProfileType)
	assert.Equal(t, "Orthodontiste", v.ProfileLabel)
	assert.Equal(t, 85, v.ModelScore)
	assert.True(t, v.ModelQualified)
	assert.NotEmpty(t, v.Reasoning)
}

func TestParseVerdict_MarkdownFenced(t *testing.T) {
	v, err := parseVerdict("```json\n" + goodVerdictJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, model.ProfileProfessional, v.ProfileType)
}

func TestParseVerdict_SurroundingProse(t *testing.T) {
	text := "Based on my research, here is my assessment:\n\n" +
		goodVerdictJSON +
		"\n\nLet me know if you need more detail."
	v, err := parseVerdict(text)
	require.NoError(t, err)
	assert.Equal(t, 85, v.ModelScore)
}

func TestParseVerdict_SpamClearsTargetProfession(t *testing.T) {
	text := `{"is_target_profession": true, "profile_type": "spam", "profile_label": "", "score": 0, "qualified": false, "reasoning": "No trace of this person anywhere."}`
	v, err := parseVerdict(text)
	require.NoError(t, err)

	assert.Equal(t, model.ProfileSpam, v.ProfileType)
	assert.False(t, v.IsTargetProfession, "spam can never be the target profession")
}

func TestParseVerdict_MalformedInputs(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose only", "I could not find any information about this lead."},
		{"truncated json", `{"is_target_profession": true, "profile_type":`},
		{"missing qualified", `{"is_target_profession": true, "profile_type": "professional", "reasoning": "x"}`},
		{"missing profile_type", `{"is_target_profession": true, "qualified": false, "reasoning": "x"}`},
		{"missing reasoning", `{"is_target_profession": true, "profile_type": "adjacent", "qualified": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVerdict(tt.text)
			assert.ErrorIs(t, err, ErrMalformedVerdict)
		})
	}
}

func TestNormalizeProfile(t *testing.T) {
	tests := []struct {
		profileType string
		label       string
		want        model.ProfileType
	}{
		{"professional", "", model.ProfileProfessional},
		{"PROFESSIONAL", "", model.ProfileProfessional},
		{" adjacent ", "", model.ProfileAdjacent},
		{"spam", "", model.ProfileSpam},
		{"", "Dentiste", model.ProfileProfessional},
		{"", "orthodontiste", model.ProfileProfessional},
		{"", "SPAM", model.ProfileSpam},
		{"", "étudiant", model.ProfileAdjacent},
		{"something-else", "fournisseur", model.ProfileAdjacent},
	}

	for _, tt := range tests {
		got := normalizeProfile(tt.profileType, tt.label)
		assert.Equal(t, tt.want, got, "type=%q label=%q", tt.profileType, tt.label)
	}
}
