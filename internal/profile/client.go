// Package profile implements the profile directory client. It resolves actor
// profiles from the people-manager property bag and login names to canonical
// directory identities.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kominn/internal/models"
)

// UnresolvedID is returned by EnsureUser when the directory cannot resolve a
// login. Callers use the sentinel to skip optional lookup fields instead of
// handling an error mid-chain.
const UnresolvedID = -1

// property keys in the directory's generic property bag.
const (
	propOffice    = "Office"
	propJobTitle  = "SPS-JobTitle"
	propBranch    = "Department"
	propManager   = "Manager"
	propCellPhone = "CellPhone"
)

// Client talks to the profile directory API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a profile directory client for the given API base URL.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Token:      token,
	}
}

type profileProperty struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type profileEnvelope struct {
	D struct {
		DisplayName           string `json:"DisplayName"`
		Email                 string `json:"Email"`
		PictureURL            string `json:"PictureUrl"`
		UserProfileProperties struct {
			Results []profileProperty `json:"results"`
		} `json:"UserProfileProperties"`
	} `json:"d"`
}

// GetUserProfile reads the profile for the given login and extracts the fixed
// set of named properties from the property bag. Missing keys yield empty
// strings, never an error. The manager reference is left unresolved; callers
// chain EnsureUser when they need the manager's identity.
func (c *Client) GetUserProfile(ctx context.Context, login string) (*models.Person, error) {
	u := fmt.Sprintf("%s/SP.UserProfiles.PeopleManager/GetPropertiesFor(accountName=@v)?@v='%s'",
		c.BaseURL, url.QueryEscape(login))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile directory: unexpected status %d for %q", resp.StatusCode, login)
	}

	var envelope profileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("profile directory: decode: %w", err)
	}

	bag := envelope.D.UserProfileProperties.Results
	p := &models.Person{
		Name:             envelope.D.DisplayName,
		MailAddress:      envelope.D.Email,
		ProfileImageURL:  envelope.D.PictureURL,
		Address:          bagValue(bag, propOffice),
		Department:       bagValue(bag, propJobTitle),
		Branch:           bagValue(bag, propBranch),
		ManagerLoginName: bagValue(bag, propManager),
		Telephone:        bagValue(bag, propCellPhone),
	}
	return p, nil
}

// EnsureUser resolves a login to its directory identity, provisioning it if
// necessary. When the directory cannot resolve the login the sentinel
// UnresolvedID is returned with a nil error.
func (c *Client) EnsureUser(ctx context.Context, login string) (int, string, error) {
	payload, err := json.Marshal(map[string]string{"logonName": login})
	if err != nil {
		return UnresolvedID, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/web/ensureuser", bytes.NewReader(payload))
	if err != nil {
		return UnresolvedID, "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json;odata=verbose")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return UnresolvedID, "", fmt.Errorf("profile directory: ensure user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Unknown login. Not an error: submission logic skips the field.
		return UnresolvedID, "", nil
	default:
		return UnresolvedID, "", fmt.Errorf("profile directory: ensure user: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		D struct {
			ID    int    `json:"Id"`
			Title string `json:"Title"`
		} `json:"d"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return UnresolvedID, "", fmt.Errorf("profile directory: decode ensure user: %w", err)
	}
	return envelope.D.ID, envelope.D.Title, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json;odata=verbose")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func bagValue(bag []profileProperty, key string) string {
	for _, prop := range bag {
		if prop.Key == key {
			return prop.Value
		}
	}
	return ""
}
