// Package store implements the generic record store client. Collections are
// list-shaped and queried through an OData-style REST surface; mutations are
// single round trips with all field assignments sent together.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kominn/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const acceptVerbose = "application/json;odata=verbose"

// Query holds the supported list query options. Zero values are omitted from
// the request.
type Query struct {
	Filter  string
	Select  []string
	Expand  []string
	OrderBy string
	Top     int
}

// Error is a failed collection operation. The client performs no retries;
// recovery, if any, is the caller's responsibility.
type Error struct {
	List       string
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %s (status %d)", e.Op, e.List, e.Message, e.StatusCode)
}

// Client talks to the backing record store. All operations are single network
// round trips.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a store client for the given API base URL, e.g.
// "https://tenant.example.com/_api".
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Items queries a collection and decodes the result rows into dest, which
// must be a pointer to a slice.
func (c *Client) Items(ctx context.Context, list string, q Query, dest any) error {
	body, err := c.roundTrip(ctx, "query", list, http.MethodGet, c.itemsURL(list)+q.encode(), nil, nil)
	if err != nil {
		return err
	}
	var envelope struct {
		D struct {
			Results json.RawMessage `json:"results"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &Error{List: list, Op: "query", Message: "malformed response: " + err.Error()}
	}
	if err := json.Unmarshal(envelope.D.Results, dest); err != nil {
		return &Error{List: list, Op: "query", Message: "malformed rows: " + err.Error()}
	}
	return nil
}

// Item fetches one record by id, optionally narrowed to the given fields, and
// returns the raw field values. Counter fields are read through this so the
// caller can apply the lenient text parse the store requires.
func (c *Client) Item(ctx context.Context, list string, id int, fields []string) (map[string]json.RawMessage, error) {
	u := c.itemURL(list, id)
	if len(fields) > 0 {
		u += "?" + url.Values{"$select": {strings.Join(fields, ",")}}.Encode()
	}
	body, err := c.roundTrip(ctx, "get", list, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		D map[string]json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{List: list, Op: "get", Message: "malformed response: " + err.Error()}
	}
	return envelope.D, nil
}

// Create adds a record with the given field assignments and returns its id.
// All assignments are committed in one request.
func (c *Client) Create(ctx context.Context, list string, fields map[string]any) (int, error) {
	body, err := c.roundTrip(ctx, "create", list, http.MethodPost, c.itemsURL(list), fields, nil)
	if err != nil {
		return 0, err
	}
	var envelope struct {
		D struct {
			ID int `json:"Id"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, &Error{List: list, Op: "create", Message: "malformed response: " + err.Error()}
	}
	return envelope.D.ID, nil
}

// Update merges the given field assignments into an existing record.
func (c *Client) Update(ctx context.Context, list string, id int, fields map[string]any) error {
	headers := map[string]string{
		"X-HTTP-Method": "MERGE",
		"IF-MATCH":      "*",
	}
	_, err := c.roundTrip(ctx, "update", list, http.MethodPost, c.itemURL(list, id), fields, headers)
	return err
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, list string, id int) error {
	headers := map[string]string{
		"X-HTTP-Method": "DELETE",
		"IF-MATCH":      "*",
	}
	_, err := c.roundTrip(ctx, "delete", list, http.MethodPost, c.itemURL(list, id), nil, headers)
	return err
}

func (c *Client) itemsURL(list string) string {
	return fmt.Sprintf("%s/web/lists/getbytitle('%s')/items", c.BaseURL, url.PathEscape(list))
}

func (c *Client) itemURL(list string, id int) string {
	return fmt.Sprintf("%s/web/lists/getbytitle('%s')/items(%d)", c.BaseURL, url.PathEscape(list), id)
}

func (q Query) encode() string {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("$filter", q.Filter)
	}
	if len(q.Select) > 0 {
		v.Set("$select", strings.Join(q.Select, ","))
	}
	if len(q.Expand) > 0 {
		v.Set("$expand", strings.Join(q.Expand, ","))
	}
	if q.OrderBy != "" {
		v.Set("$orderby", q.OrderBy)
	}
	if q.Top > 0 {
		v.Set("$top", strconv.Itoa(q.Top))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) roundTrip(ctx context.Context, op, list, method, rawURL string, payload map[string]any, headers map[string]string) ([]byte, error) {
	ctx, span := observability.Tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("store.list", list),
			attribute.String("store.op", op),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{List: list, Op: op, Message: "encode request: " + err.Error()}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, &Error{List: list, Op: op, Message: err.Error()}
	}
	req.Header.Set("Accept", acceptVerbose)
	req.Header.Set("X-Correlation-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", acceptVerbose)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	observability.StoreRoundTrips.WithLabelValues(list, op).Inc()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		observability.StoreErrors.WithLabelValues(list, op).Inc()
		span.RecordError(err)
		return nil, &Error{List: list, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.StoreErrors.WithLabelValues(list, op).Inc()
		return nil, &Error{List: list, Op: op, StatusCode: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.StoreErrors.WithLabelValues(list, op).Inc()
		return nil, &Error{List: list, Op: op, StatusCode: resp.StatusCode, Message: serverMessage(body)}
	}
	return body, nil
}

// serverMessage extracts the human-readable error from a verbose OData error
// body, falling back to a truncated raw body.
func serverMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message struct {
				Value string `json:"value"`
			} `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message.Value != "" {
		return envelope.Error.Message.Value
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "request failed"
	}
	return s
}
