// Package repository provides collection access over the record store client.
package repository

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Collection names in the backing store.
const (
	ListSuggestions  = "Suggestions"
	ListComments     = "Comments"
	ListLikes        = "Likes"
	ListGoals        = "SustainabilityGoals"
	ListIcons        = "Icons"
	ListCampaigns    = "Campaigns"
	ListTenantConfig = "TenantConfig"
	ListPostalCodes  = "PostalCodes"
)

// counterFromRaw parses a counter field read back from the store. The store
// hands counters back as text that may be absent, null, empty, or quoted;
// empty and "0" both mean zero.
func counterFromRaw(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	if s == "" || s == "0" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// lookupResults is the wire shape of a multi-value lookup field.
type lookupResults struct {
	Results []int `json:"results"`
}

// refResults is the wire shape of an expanded multi-value lookup.
type refResults struct {
	Results []struct {
		ID    int    `json:"Id"`
		Title string `json:"Title"`
	} `json:"results"`
}

// stringResults is the wire shape of a multi-value text field.
type stringResults struct {
	Results []string `json:"results"`
}

// multiLookup builds the wire value for a multi-value lookup assignment.
func multiLookup(ids []int) map[string]any {
	if ids == nil {
		ids = []int{}
	}
	return map[string]any{"results": ids}
}
