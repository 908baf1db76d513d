package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"d":{"results":[{"Id":1,"Title":"First"},{"Id":2,"Title":"Second"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")

	var rows []struct {
		ID    int    `json:"Id"`
		Title string `json:"Title"`
	}
	err := c.Items(context.Background(), "Suggestions", Query{
		Filter:  "Status eq 'Accepted'",
		Select:  []string{"Id", "Title"},
		Expand:  []string{"Author"},
		OrderBy: "Created desc",
		Top:     10,
	}, &rows)
	require.NoError(t, err)

	assert.Equal(t, "/web/lists/getbytitle('Suggestions')/items", gotPath)
	assert.Contains(t, gotQuery, "%24filter=Status+eq+%27Accepted%27")
	assert.Contains(t, gotQuery, "%24select=Id%2CTitle")
	assert.Contains(t, gotQuery, "%24expand=Author")
	assert.Contains(t, gotQuery, "%24orderby=Created+desc")
	assert.Contains(t, gotQuery, "%24top=10")
	assert.Equal(t, "application/json;odata=verbose", gotAccept)
	assert.Equal(t, "Bearer secret", gotAuth)

	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0].Title)
	assert.Equal(t, 2, rows[1].ID)
}

func TestItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/web/lists/getbytitle('Suggestions')/items(7)", r.URL.Path)
		assert.Equal(t, "Likes", r.URL.Query().Get("$select"))
		_, _ = w.Write([]byte(`{"d":{"Likes":"3"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	fields, err := c.Item(context.Background(), "Suggestions", 7, []string{"Likes"})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"3"`), fields["Likes"])
}

func TestCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json;odata=verbose", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Better coffee", payload["Title"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"d":{"Id":42}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	id, err := c.Create(context.Background(), "Suggestions", map[string]any{"Title": "Better coffee"})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestUpdateSendsMergeHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "MERGE", r.Header.Get("X-HTTP-Method"))
		assert.Equal(t, "*", r.Header.Get("IF-MATCH"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.Update(context.Background(), "Suggestions", 3, map[string]any{"Likes": 4})
	assert.NoError(t, err)
}

func TestDeleteSendsDeleteHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Header.Get("X-HTTP-Method"))
		assert.Equal(t, "*", r.Header.Get("IF-MATCH"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	assert.NoError(t, c.Delete(context.Background(), "Likes", 9))
}

func TestErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":{"value":"Column 'Bogus' does not exist"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	var rows []map[string]any
	err := c.Items(context.Background(), "Suggestions", Query{Filter: "Bogus eq 1"}, &rows)
	require.Error(t, err)

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "Suggestions", storeErr.List)
	assert.Equal(t, "query", storeErr.Op)
	assert.Equal(t, http.StatusBadRequest, storeErr.StatusCode)
	assert.Equal(t, "Column 'Bogus' does not exist", storeErr.Message)
}

func TestErrorRawBodyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	var rows []map[string]any
	err := c.Items(context.Background(), "Comments", Query{}, &rows)

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "upstream unavailable", storeErr.Message)
}
