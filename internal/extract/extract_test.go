package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotification = `A new lead has arrived : Marie Dubois - France (75012)
Email : Marie.Dubois@cabinet-dentaire.fr
Mobile : <tel:+33612345678|+33 6 12 34 56 78>
Coming from Google Ads - Sales owner : Simon Gautier`

func TestExtract_FullNotification(t *testing.T) {
	lead, err := Extract("C123", "1700000000.000100", sampleNotification)
	require.NoError(t, err)

	assert.Equal(t, "C123", lead.Channel)
	assert.Equal(t, "1700000000.000100", lead.ThreadTS)
	assert.Equal(t, "marie.dubois@cabinet-dentaire.fr", lead.Email)
	assert.Equal(t, "+33 6 12 34 56 78", lead.Phone)
	assert.Equal(t, "Marie Dubois", lead.FullName)
	assert.Equal(t, "Marie", lead.FirstName)
	assert.Equal(t, "Dubois", lead.LastName)
	assert.Equal(t, "France", lead.Country)
	assert.Equal(t, "75012", lead.PostalCode)
	assert.Equal(t, "Google Ads", lead.Source)
	assert.Equal(t, "Simon Gautier", lead.SalesOwner)
}

func TestExtract_EmailLowercased(t *testing.T) {
	lead, err := Extract("C1", "", "Contact: DR.MARTIN@Ortho-Clinic.FR")
	require.NoError(t, err)
	assert.Equal(t, "dr.martin@ortho-clinic.fr", lead.Email)
}

func TestExtract_PhoneRules(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "tel link preferred over labeled number",
			msg:  "Mobile : <tel:+33699887766|+33 6 99 88 77 66> Phone : 01 02 03 04 05",
			want: "+33 6 99 88 77 66",
		},
		{
			name: "labeled telephone with accents",
			msg:  "Téléphone : 06 11 22 33 44",
			want: "06 11 22 33 44",
		},
		{
			name: "bare french number",
			msg:  "call me on 0611223344 tomorrow",
			want: "0611223344",
		},
		{
			name: "bare international prefix",
			msg:  "reach us at +33 1 44 55 66 77",
			want: "+33 1 44 55 66 77",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, err := Extract("C1", "", tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lead.Phone)
		})
	}
}

func TestExtract_ShortNumberRejected(t *testing.T) {
	// Postal codes and scores must not pass as phone numbers.
	_, err := Extract("C1", "", "score 75012 for this campaign")
	assert.ErrorIs(t, err, ErrNoContactInfo)
}

func TestExtract_NoContactInfo(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"empty", ""},
		{"plain chatter", "hello team, standup at 10"},
		{"name only", "A new lead has arrived : Jean Dupont - France (75001)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract("C1", "", tt.msg)
			assert.ErrorIs(t, err, ErrNoContactInfo)
		})
	}
}

func TestExtract_EmailOnlyIsEnough(t *testing.T) {
	lead, err := Extract("C1", "", "New inquiry from paul@exemple.fr")
	require.NoError(t, err)
	assert.Equal(t, "paul@exemple.fr", lead.Email)
	assert.Empty(t, lead.Phone)
	assert.Equal(t, "paul@exemple.fr", lead.Identity())
}

func TestExtract_PhoneOnlyIdentity(t *testing.T) {
	lead, err := Extract("C1", "", "Mobile : 06 11 22 33 44")
	require.NoError(t, err)
	assert.Empty(t, lead.Email)
	assert.Equal(t, "06 11 22 33 44", lead.Identity())
}

func TestExtract_BookedPhrasing(t *testing.T) {
	msg := "The following lead has booked a consultation : Dr Anne Leroy - Belgique (1000)\nEmail : anne@clinique.be"
	lead, err := Extract("C1", "", msg)
	require.NoError(t, err)
	assert.Equal(t, "Dr Anne Leroy", lead.FullName)
	assert.Equal(t, "Belgique", lead.Country)
	assert.Equal(t, "1000", lead.PostalCode)
}

func TestExtract_LabeledNameFallback(t *testing.T) {
	lead, err := Extract("C1", "", "Name : Pierre Morel\nEmail : pierre@dentiste.fr")
	require.NoError(t, err)
	assert.Equal(t, "Pierre Morel", lead.FullName)
	assert.Equal(t, "Pierre", lead.FirstName)
	assert.Equal(t, "Morel", lead.LastName)
}

func TestExtract_UnicodeNameNormalized(t *testing.T) {
	// Decomposed e + combining acute must come out composed.
	msg := "Name : Stéphane Rémy\nEmail : stephane@cabinet.fr"
	lead, err := Extract("C1", "", msg)
	require.NoError(t, err)
	assert.Equal(t, "Stéphane Rémy", lead.FullName)
}
