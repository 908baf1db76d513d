package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"kominn/internal/cache"
	"kominn/internal/config"
	"kominn/internal/models"
	"kominn/internal/repository"
	"kominn/internal/server"
	"kominn/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-12345678901234567890123456789012"
	kariLogin  = "i:0#.f|membership|kari@example.org"
)

type testEnv struct {
	app   *fiber.App
	fake  *testutil.FakeStore
	dir   *testutil.FakeDirectory
	ideas *testutil.FakeIdeaAPI
}

// newTestEnv builds a server over the fake store with routes registered.
// The outer middleware stack (metrics, limiter) is not mounted; handler
// behavior is what is under test here.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cache.Reset()
	cache.ResetPublished()

	fake := testutil.NewFakeStore(t)
	dir := testutil.NewFakeDirectory()
	ideas := &testutil.FakeIdeaAPI{}

	cfg := &config.Config{
		Port:      "8375",
		JWTSecret: testSecret,
		StoreURL:  fake.URL(),
		Env:       "test",
	}
	srv, err := server.NewServerWithDeps(cfg, fake.Client(), dir, ideas, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{app: app, fake: fake, dir: dir, ideas: ideas}
}

func token(t *testing.T, actorID int, login string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(actorID),
		"login": login,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) request(t *testing.T, method, path, body, bearer string) *http.Response {
	t.Helper()
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedProfile(env *testEnv) {
	env.dir.AddProfile(kariLogin, &models.Person{
		Name:            "Kari Nordmann",
		MailAddress:     "kari@example.org",
		ProfileImageURL: "https://cdn.example.org/kari.jpg",
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	require.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/suggestions/mine"},
		{http.MethodPost, "/api/suggestions/"},
		{http.MethodPost, "/api/suggestions/1/like"},
		{http.MethodPost, "/api/suggestions/1/publish"},
		{http.MethodGet, "/api/profile/me"},
	} {
		resp := env.request(t, route.method, route.path, "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
		resp.Body.Close()
	}
}

func TestGetSuggestionsByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Title": "Accepted one", "Status": "Accepted"}),
		testutil.SuggestionRow(map[string]any{"Title": "Submitted one", "Status": "Submitted"}),
	)

	resp := env.request(t, http.MethodGet, "/api/suggestions/?status=Accepted", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]models.Suggestion](t, resp)
	require.Len(t, got, 1)
	require.Equal(t, "Accepted one", got[0].Title)
}

func TestGetSuggestionsDefaultHidesSubmitted(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Title": "Accepted one", "Status": "Accepted"}),
		testutil.SuggestionRow(map[string]any{"Title": "Unreviewed draft", "Status": "Submitted"}),
	)

	resp := env.request(t, http.MethodGet, "/api/suggestions/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]models.Suggestion](t, resp)
	require.Len(t, got, 1)
	require.Equal(t, "Accepted one", got[0].Title)
}

func TestGetSuggestionsRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/suggestions/?status=Draft", "", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetSuggestionNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/suggestions/404", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[models.ErrorResponse](t, resp)
	require.Equal(t, "NOT_FOUND", body.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/suggestions/search", "", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitSuggestion(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(env)

	resp := env.request(t, http.MethodPost, "/api/suggestions/",
		`{"title":"Better coffee","summary":"Coffee is bad","suggested_solution":"New machines"}`,
		token(t, 77, kariLogin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Suggestion](t, resp)
	require.Equal(t, models.StatusSubmitted, created.Status)
	require.Equal(t, 77, created.Submitter.ID)
}

func TestSubmitSuggestionRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(env)

	resp := env.request(t, http.MethodPost, "/api/suggestions/",
		`{"summary":"No title"}`, token(t, 77, kariLogin))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCommentsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(env)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 5, "Status": "Accepted", "NumberOfComments": 0}),
	)

	resp := env.request(t, http.MethodPost, "/api/suggestions/5/comments",
		`{"text":"Great idea"}`, token(t, 77, kariLogin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Comment](t, resp)
	require.Equal(t, "Kari Nordmann", created.CreatedBy)

	resp = env.request(t, http.MethodGet, "/api/suggestions/5/comments", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := decodeBody[[]models.Comment](t, resp)
	require.Len(t, comments, 1)
	require.Equal(t, "Great idea", comments[0].Text)
}

func TestToggleLikeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 5, "Status": "Accepted", "Likes": 3}),
	)
	bearer := token(t, 77, kariLogin)

	resp := env.request(t, http.MethodPost, "/api/suggestions/5/like", "", bearer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	liked := decodeBody[models.Suggestion](t, resp)
	require.Equal(t, 4, liked.Likes)

	resp = env.request(t, http.MethodPost, "/api/suggestions/5/like", "", bearer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unliked := decodeBody[models.Suggestion](t, resp)
	require.Equal(t, 3, unliked.Likes)
}

func TestPublishEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListTenantConfig, map[string]any{"ClientId": "tenant-abc"})
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 5, "Title": "Better coffee", "Status": "Accepted", "SendToKS": false}),
	)
	bearer := token(t, 77, kariLogin)

	resp := env.request(t, http.MethodPost, "/api/suggestions/5/publish", "", bearer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	require.Equal(t, "ext-1", body["external_id"])

	// A second publish conflicts and makes no further external call.
	resp = env.request(t, http.MethodPost, "/api/suggestions/5/publish", "", bearer)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	require.Equal(t, 1, env.ideas.CallCount())
}

func TestPublishEndpointWithoutConfig(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 5, "Status": "Accepted", "SendToKS": false}),
	)

	resp := env.request(t, http.MethodPost, "/api/suggestions/5/publish", "", token(t, 77, kariLogin))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestGetGoalsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Seed(repository.ListIcons, testutil.IconRow(1, "/assets/goal-1.png"))
	env.fake.Seed(repository.ListGoals, testutil.GoalRow(1, 1, "No Poverty"))

	resp := env.request(t, http.MethodGet, "/api/goals", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	goals := decodeBody[[]models.SustainabilityGoal](t, resp)
	require.Len(t, goals, 1)
	require.Equal(t, "/assets/goal-1.png", goals[0].ImageSrc)
}

func TestGetCampaignsActiveFilter(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	env.fake.Seed(repository.ListCampaigns,
		map[string]any{
			"Title": "Running", "Placement": 1,
			"StartDate": now.Add(-24 * time.Hour).Format(time.RFC3339),
			"EndDate":   now.Add(24 * time.Hour).Format(time.RFC3339),
		},
		map[string]any{
			"Title": "Finished", "Placement": 2,
			"StartDate": now.Add(-96 * time.Hour).Format(time.RFC3339),
			"EndDate":   now.Add(-48 * time.Hour).Format(time.RFC3339),
		},
	)

	resp := env.request(t, http.MethodGet, "/api/campaigns?active=true", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	campaigns := decodeBody[[]models.Campaign](t, resp)
	require.Len(t, campaigns, 1)
	require.Equal(t, "Running", campaigns[0].Text)
}

func TestGetMyProfileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(env)

	resp := env.request(t, http.MethodGet, "/api/profile/me", "", token(t, 77, kariLogin))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	person := decodeBody[models.Person](t, resp)
	require.Equal(t, 77, person.ID)
	require.Equal(t, "Kari Nordmann", person.Name)
}

func TestStoreFailureMapsToBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Fail(repository.ListSuggestions, "backing store down")

	resp := env.request(t, http.MethodGet, "/api/suggestions/", "", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}
