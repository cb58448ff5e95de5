package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchContactByEmail_Found(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody searchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(searchResponse{Results: []Contact{
			{ID: "c-42", Properties: map[string]string{"hs_lead_status": "NEW"}},
		}})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	contact, err := c.SearchContactByEmail(context.Background(), "marie@cabinet.fr")
	require.NoError(t, err)

	require.NotNil(t, contact)
	assert.Equal(t, "c-42", contact.ID)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/crm/v3/objects/contacts/search", gotPath)
	require.Len(t, gotBody.FilterGroups, 1)
	require.Len(t, gotBody.FilterGroups[0].Filters, 1)
	f := gotBody.FilterGroups[0].Filters[0]
	assert.Equal(t, "email", f.PropertyName)
	assert.Equal(t, "EQ", f.Operator)
	assert.Equal(t, "marie@cabinet.fr", f.Value)
}

func TestSearchContactByEmail_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	contact, err := c.SearchContactByEmail(context.Background(), "nobody@cabinet.fr")
	require.NoError(t, err)
	assert.Nil(t, contact)
}

func TestUpdateContact(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody propertiesBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	err := c.UpdateContact(context.Background(), "c-42", map[string]string{
		"hs_lead_status": "OPEN",
		"lifecyclestage": "lead",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/crm/v3/objects/contacts/c-42", gotPath)
	assert.Equal(t, "OPEN", gotBody.Properties["hs_lead_status"])
}

func TestCreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)

		var body propertiesBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(Contact{ID: "new-7", Properties: body.Properties})
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	contact, err := c.CreateContact(context.Background(), map[string]string{"email": "x@y.fr"})
	require.NoError(t, err)
	assert.Equal(t, "new-7", contact.ID)
}

func TestDo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL))
	_, err := c.SearchContactByEmail(context.Background(), "x@y.fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRateLimit_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	// Tiny limit so the second call must wait; cancelled context aborts it.
	c := NewClient("t", WithBaseURL(srv.URL), WithRateLimit(0.001))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.SearchContactByEmail(ctx, "first@y.fr")
	require.NoError(t, err)

	cancel()
	_, err = c.SearchContactByEmail(ctx, "second@y.fr")
	assert.Error(t, err)
}
