package testutil

import (
	"context"
	"fmt"
	"sync"

	"kominn/internal/induct"
	"kominn/internal/models"
	"kominn/internal/profile"
)

// FakeDirectory is an in-memory profile directory.
type FakeDirectory struct {
	mu       sync.Mutex
	Profiles map[string]*models.Person // keyed by login
	Resolved map[string]struct {
		ID   int
		Name string
	} // EnsureUser results keyed by login
	Err error
}

// NewFakeDirectory creates an empty fake directory.
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		Profiles: map[string]*models.Person{},
		Resolved: map[string]struct {
			ID   int
			Name string
		}{},
	}
}

// AddProfile registers a profile under the given login.
func (d *FakeDirectory) AddProfile(login string, p *models.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Profiles[login] = p
}

// AddResolved registers an EnsureUser result for the given login.
func (d *FakeDirectory) AddResolved(login string, id int, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Resolved[login] = struct {
		ID   int
		Name string
	}{ID: id, Name: name}
}

// GetUserProfile returns the registered profile snapshot for a login.
func (d *FakeDirectory) GetUserProfile(_ context.Context, login string) (*models.Person, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	p, ok := d.Profiles[login]
	if !ok {
		return nil, fmt.Errorf("profile query failed for %q", login)
	}
	copied := *p
	return &copied, nil
}

// EnsureUser resolves a login to an identity; unknown logins yield the
// unresolved sentinel, matching the real client.
func (d *FakeDirectory) EnsureUser(_ context.Context, login string) (int, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return profile.UnresolvedID, "", d.Err
	}
	r, ok := d.Resolved[login]
	if !ok {
		return profile.UnresolvedID, "", nil
	}
	return r.ID, r.Name, nil
}

// FakeIdeaAPI records external publish calls.
type FakeIdeaAPI struct {
	mu     sync.Mutex
	NextID string
	Err    error
	Calls  []induct.Idea
}

// CreateIdea records the call and returns the configured id or error.
func (f *FakeIdeaAPI) CreateIdea(_ context.Context, clientID string, idea induct.Idea) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Calls = append(f.Calls, idea)
	if f.NextID == "" {
		return "ext-1", nil
	}
	return f.NextID, nil
}

// CallCount returns the number of external calls made.
func (f *FakeIdeaAPI) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
