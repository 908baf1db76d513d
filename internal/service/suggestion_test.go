package service_test

import (
	"context"
	"testing"

	"kominn/internal/models"
	"kominn/internal/repository"
	"kominn/internal/service"
	"kominn/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suggestionEnv struct {
	fake *testutil.FakeStore
	dir  *testutil.FakeDirectory
	svc  *service.SuggestionService
}

func newSuggestionEnv(t *testing.T) *suggestionEnv {
	t.Helper()
	fake := testutil.NewFakeStore(t)
	fake.Seed(repository.ListPostalCodes,
		map[string]any{"Zipcode": "0556", "City": "Oslo", "CountyCode": "03"},
	)
	client := fake.Client()
	goals := repository.NewGoalRepository(client)
	suggestions := repository.NewSuggestionRepository(client, goals)

	dir := testutil.NewFakeDirectory()
	profiles := service.NewProfileService(dir, repository.NewPostalRepository(client))

	return &suggestionEnv{
		fake: fake,
		dir:  dir,
		svc:  service.NewSuggestionService(suggestions, profiles),
	}
}

func TestSubmitResolvesProfileChain(t *testing.T) {
	env := newSuggestionEnv(t)
	env.dir.AddProfile(kariLogin, &models.Person{
		Name:             "Kari Nordmann",
		MailAddress:      "kari@example.org",
		ManagerLoginName: "ola@example.org",
		Zipcode:          "0556",
	})
	env.dir.AddResolved("ola@example.org", 314, "Ola Hansen")

	created, err := env.svc.Submit(context.Background(), service.Actor{ID: 77, Login: kariLogin}, service.SubmitRequest{
		Title:             "Better coffee",
		Summary:           "Coffee is bad",
		SuggestedSolution: "New machines",
		Goals:             []int{3},
		CampaignRef:       "vann-og-avlop",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, created.Status)
	assert.False(t, created.SentToExternal)

	row := env.fake.Row(repository.ListSuggestions, created.ID)
	require.NotNil(t, row)
	assert.Equal(t, "Kari Nordmann", row["Name"])
	assert.Equal(t, "Oslo", row["City"])
	assert.Equal(t, "03", row["CountyCode"])
	assert.EqualValues(t, 77, row["AuthorId"])
	assert.EqualValues(t, 314, row["ManagerId"])
	assert.Equal(t, "vann-og-avlop", row["CompRef"])
}

func TestSubmitWithUnresolvableManagerOmitsLookup(t *testing.T) {
	env := newSuggestionEnv(t)
	env.dir.AddProfile(kariLogin, &models.Person{
		Name:             "Kari Nordmann",
		ManagerLoginName: "ghost@example.org",
	})

	created, err := env.svc.Submit(context.Background(), service.Actor{ID: 77, Login: kariLogin}, service.SubmitRequest{
		Title: "No manager",
	})
	require.NoError(t, err)

	row := env.fake.Row(repository.ListSuggestions, created.ID)
	_, present := row["ManagerId"]
	assert.False(t, present)
}

func TestSubmitFailsWhenProfileUnavailable(t *testing.T) {
	env := newSuggestionEnv(t)
	// No profile registered for the login.

	_, err := env.svc.Submit(context.Background(), service.Actor{ID: 77, Login: kariLogin}, service.SubmitRequest{
		Title: "Never created",
	})
	require.Error(t, err)
	assert.Empty(t, env.fake.Rows(repository.ListSuggestions))
}

func TestMineIncludesSubmitted(t *testing.T) {
	env := newSuggestionEnv(t)
	env.fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Title": "Mine, submitted", "Status": "Submitted", "AuthorId": 77}),
		testutil.SuggestionRow(map[string]any{"Title": "Mine, accepted", "Status": "Accepted", "AuthorId": 77}),
		testutil.SuggestionRow(map[string]any{"Title": "Not mine", "Status": "Accepted", "AuthorId": 78}),
	)

	got, err := env.svc.Mine(context.Background(), service.Actor{ID: 77})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
