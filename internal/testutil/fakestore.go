// Package testutil provides shared test infrastructure: an in-memory record
// store speaking the same wire protocol as the real one, data fixtures, and
// fakes for the external client surfaces.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"kominn/internal/store"
)

var itemsPathRe = regexp.MustCompile(`^/web/lists/getbytitle\('([^']+)'\)/items(?:\((\d+)\))?$`)

// FakeStore is an in-memory record store served over HTTP. It understands the
// query subset the repositories use: $filter with eq/ne/and/or, parentheses,
// substringof and nested field paths, plus $orderby and $top.
type FakeStore struct {
	mu     sync.Mutex
	srv    *httptest.Server
	lists  map[string][]map[string]any
	nextID map[string]int

	// Fail, when set, makes every request for the named list return a 500
	// with the given message.
	failList    string
	failMessage string
}

// NewFakeStore starts a fake record store and registers its shutdown with t.
func NewFakeStore(t *testing.T) *FakeStore {
	t.Helper()
	f := &FakeStore{
		lists:  map[string][]map[string]any{},
		nextID: map[string]int{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// Client returns a store client pointed at the fake.
func (f *FakeStore) Client() *store.Client {
	return store.New(f.srv.URL, "test-token")
}

// URL returns the fake's base URL.
func (f *FakeStore) URL() string { return f.srv.URL }

// Fail makes every request against the named list return a 500 with the
// given message. Pass an empty list name to clear.
func (f *FakeStore) Fail(list, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = list
	f.failMessage = message
}

// Seed inserts rows into a list, assigning ids to rows that lack one.
func (f *FakeStore) Seed(list string, rows ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		if _, ok := row["Id"]; !ok {
			f.nextID[list]++
			row["Id"] = f.nextID[list]
		} else if id, ok := toInt(row["Id"]); ok && id > f.nextID[list] {
			f.nextID[list] = id
		}
		f.lists[list] = append(f.lists[list], row)
	}
}

// Row returns a copy of the row with the given id, or nil.
func (f *FakeStore) Row(list string, id int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.lists[list] {
		if rid, ok := toInt(row["Id"]); ok && rid == id {
			return cloneRow(row)
		}
	}
	return nil
}

// Rows returns a copy of all rows in a list.
func (f *FakeStore) Rows(list string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.lists[list]))
	for _, row := range f.lists[list] {
		out = append(out, cloneRow(row))
	}
	return out
}

func (f *FakeStore) handle(w http.ResponseWriter, r *http.Request) {
	m := itemsPathRe.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	list := m[1]

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failList == list {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": map[string]any{"value": f.failMessage},
			},
		})
		return
	}

	if m[2] == "" {
		switch r.Method {
		case http.MethodGet:
			f.handleQuery(w, r, list)
		case http.MethodPost:
			f.handleCreate(w, r, list)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, _ := strconv.Atoi(m[2])
	switch {
	case r.Method == http.MethodGet:
		f.handleGet(w, r, list, id)
	case r.Method == http.MethodPost && r.Header.Get("X-HTTP-Method") == "MERGE":
		f.handleMerge(w, r, list, id)
	case r.Method == http.MethodPost && r.Header.Get("X-HTTP-Method") == "DELETE":
		f.handleDelete(w, list, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeStore) handleQuery(w http.ResponseWriter, r *http.Request, list string) {
	q := r.URL.Query()

	var filter *filterNode
	if raw := q.Get("$filter"); raw != "" {
		parsed, err := parseFilter(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": map[string]any{"value": err.Error()}},
			})
			return
		}
		filter = parsed
	}

	var results []map[string]any
	for _, row := range f.lists[list] {
		projected := f.project(list, row)
		if filter == nil || filter.eval(projected) {
			results = append(results, projected)
		}
	}

	if orderBy := q.Get("$orderby"); orderBy != "" {
		sortRows(results, orderBy)
	}

	if rawTop := q.Get("$top"); rawTop != "" {
		if top, err := strconv.Atoi(rawTop); err == nil && top >= 0 && top < len(results) {
			results = results[:top]
		}
	}

	if results == nil {
		results = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"d": map[string]any{"results": results},
	})
}

func (f *FakeStore) handleGet(w http.ResponseWriter, r *http.Request, list string, id int) {
	row := f.findRow(list, id)
	if row == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	projected := f.project(list, row)
	if sel := r.URL.Query().Get("$select"); sel != "" {
		narrowed := map[string]any{}
		for _, field := range strings.Split(sel, ",") {
			field = strings.TrimSpace(field)
			if v, ok := projected[field]; ok {
				narrowed[field] = v
			}
		}
		projected = narrowed
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"d": projected})
}

func (f *FakeStore) handleCreate(w http.ResponseWriter, r *http.Request, list string) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.nextID[list]++
	id := f.nextID[list]
	fields["Id"] = id
	if _, ok := fields["Created"]; !ok {
		fields["Created"] = time.Now().UTC().Format(time.RFC3339)
	}
	f.lists[list] = append(f.lists[list], fields)

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"d": map[string]any{"Id": id},
	})
}

func (f *FakeStore) handleMerge(w http.ResponseWriter, r *http.Request, list string, id int) {
	row := f.findRow(list, id)
	if row == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	for k, v := range fields {
		row[k] = v
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeStore) handleDelete(w http.ResponseWriter, list string, id int) {
	rows := f.lists[list]
	for i, row := range rows {
		if rid, ok := toInt(row["Id"]); ok && rid == id {
			f.lists[list] = append(rows[:i:i], rows[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *FakeStore) findRow(list string, id int) map[string]any {
	for _, row := range f.lists[list] {
		if rid, ok := toInt(row["Id"]); ok && rid == id {
			return row
		}
	}
	return nil
}

// project expands lookup fields the way the real store does: scalar AuthorId
// becomes a nested Author singleton, and InspiredById ids become expanded
// references with titles resolved from the same list.
func (f *FakeStore) project(list string, row map[string]any) map[string]any {
	out := cloneRow(row)
	if aid, ok := toInt(out["AuthorId"]); ok {
		if _, present := out["Author"]; !present {
			out["Author"] = map[string]any{"Id": aid}
		}
	}
	if raw, present := out["InspiredById"]; present {
		if _, already := out["InspiredBy"]; !already {
			var refs []map[string]any
			for _, id := range lookupIDs(raw) {
				ref := map[string]any{"Id": id}
				if target := f.findRow(list, id); target != nil {
					ref["Title"] = target["Title"]
				}
				refs = append(refs, ref)
			}
			if refs == nil {
				refs = []map[string]any{}
			}
			out["InspiredBy"] = map[string]any{"results": refs}
		}
	}
	return out
}

// lookupIDs extracts ids from a stored multi-value lookup assignment.
func lookupIDs(raw any) []int {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m["results"].([]any)
	if !ok {
		return nil
	}
	var ids []int
	for _, v := range list {
		if id, ok := toInt(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func sortRows(rows []map[string]any, orderBy string) {
	parts := strings.Fields(orderBy)
	if len(parts) == 0 {
		return
	}
	field := parts[0]
	desc := len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareValues(rows[i][field], rows[j][field]) < 0
		if desc {
			return !less && compareValues(rows[i][field], rows[j][field]) != 0
		}
		return less
	})
}

func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
