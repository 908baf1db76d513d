package service

import (
	"bytes"
	"context"
	"html/template"

	"kominn/internal/cache"
	"kominn/internal/induct"
	"kominn/internal/models"
	"kominn/internal/observability"
	"kominn/internal/repository"
)

// descriptionTmpl renders the suggestion body sections into the HTML
// description the acceptance API expects. Sections with no content are
// skipped.
var descriptionTmpl = template.Must(template.New("description").Parse(`{{if .Summary}}<h3>Sammendrag</h3><p>{{.Summary}}</p>{{end}}{{if .Challenges}}<h3>Utfordringer</h3><p>{{.Challenges}}</p>{{end}}{{if .SuggestedSolution}}<h3>Forslag til løsning</h3><p>{{.SuggestedSolution}}</p>{{end}}{{if .UsefulForOthers}}<h3>Nyttig for andre</h3><p>{{.UsefulForOthers}} ({{.UsefulnessType}})</p>{{end}}`))

// PublishService forwards accepted suggestions to the external acceptance
// system and marks them as sent.
type PublishService struct {
	suggestions repository.SuggestionRepository
	tenant      repository.TenantConfigRepository
	ideas       IdeaAPI
}

// NewPublishService creates a publish service.
func NewPublishService(suggestions repository.SuggestionRepository, tenant repository.TenantConfigRepository, ideas IdeaAPI) *PublishService {
	return &PublishService{suggestions: suggestions, tenant: tenant, ideas: ideas}
}

// Publish sends a suggestion to the external system exactly once and flips
// its SentToExternal flag. An already-sent suggestion fails immediately with
// no network traffic. When the external POST succeeded on an earlier attempt
// but the flag write failed, the recorded external id is reused and only the
// flag write is retried.
func (s *PublishService) Publish(ctx context.Context, suggestion *models.Suggestion) (string, error) {
	if suggestion.SentToExternal {
		observability.PublishAttempts.WithLabelValues("already_published").Inc()
		return "", models.ErrAlreadyPublished
	}

	// Concurrent callers race each other to the external POST; the record
	// lock makes the guard check and the POST a single critical section.
	var externalID string
	err := cache.WithRecordLock(ctx, cache.PublishLockKey(suggestion.ID), func() error {
		var err error
		externalID, err = s.publishLocked(ctx, suggestion)
		return err
	})
	return externalID, err
}

func (s *PublishService) publishLocked(ctx context.Context, suggestion *models.Suggestion) (string, error) {
	// A prior attempt may have reached the external system without the flag
	// landing. Self-heal: retry only the flag write.
	if externalID, ok := cache.PublishedID(ctx, suggestion.ID); ok {
		if err := s.suggestions.MarkPublished(ctx, suggestion.ID); err != nil {
			observability.PublishAttempts.WithLabelValues("mark_failed").Inc()
			return "", models.NewPublishedNotMarkedError(externalID, err)
		}
		observability.PublishAttempts.WithLabelValues("recovered").Inc()
		return externalID, nil
	}

	clientID, err := s.tenant.ClientID(ctx)
	if err != nil {
		observability.PublishAttempts.WithLabelValues("config_error").Inc()
		return "", err
	}
	if clientID == "" {
		observability.PublishAttempts.WithLabelValues("config_missing").Inc()
		return "", models.ErrConfigurationMissing
	}

	var description bytes.Buffer
	if err := descriptionTmpl.Execute(&description, suggestion); err != nil {
		return "", models.NewInternalError(err)
	}

	externalID, err := s.ideas.CreateIdea(ctx, clientID, induct.Idea{
		Title:       suggestion.Title,
		Description: description.String(),
	})
	if err != nil {
		observability.PublishAttempts.WithLabelValues("external_error").Inc()
		return "", err
	}

	// The external POST is irrevocable from here on. Record the id before
	// the flag write so a crash between the two stays recoverable.
	cache.MarkPublished(ctx, suggestion.ID, externalID)

	if err := s.suggestions.MarkPublished(ctx, suggestion.ID); err != nil {
		observability.PublishAttempts.WithLabelValues("mark_failed").Inc()
		return "", models.NewPublishedNotMarkedError(externalID, err)
	}

	observability.PublishAttempts.WithLabelValues("published").Inc()
	suggestion.SentToExternal = true
	return externalID, nil
}
