package service

import (
	"context"

	"kominn/internal/models"
	"kominn/internal/repository"
)

// SubmitRequest carries everything a submission needs, including the campaign
// correlation metadata the UI derived from its entry point. The metadata is
// explicit here; the mutation path never reads ambient request state.
type SubmitRequest struct {
	Title             string `json:"title"`
	Summary           string `json:"summary"`
	Challenges        string `json:"challenges"`
	SuggestedSolution string `json:"suggested_solution"`
	Location          string `json:"location"`
	UsefulForOthers   string `json:"useful_for_others"`
	UsefulnessType    string `json:"usefulness_type"`
	Image             string `json:"image"`
	InspiredBy        []int  `json:"inspired_by,omitempty"`
	Goals             []int  `json:"sustainability_goals,omitempty"`
	CampaignRef       string `json:"campaign_ref,omitempty"`
	IsPast            bool   `json:"is_past"`
}

// SuggestionService composes suggestion queries and submissions.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	profiles    *ProfileService
}

// NewSuggestionService creates a suggestion service.
func NewSuggestionService(suggestions repository.SuggestionRepository, profiles *ProfileService) *SuggestionService {
	return &SuggestionService{suggestions: suggestions, profiles: profiles}
}

// List returns suggestions per the query composition rules of the repository.
func (s *SuggestionService) List(ctx context.Context, opts repository.ListOptions) ([]*models.Suggestion, error) {
	return s.suggestions.List(ctx, opts)
}

// Mine returns the actor's own suggestions, including ones still in the
// Submitted state.
func (s *SuggestionService) Mine(ctx context.Context, actor Actor) ([]*models.Suggestion, error) {
	return s.suggestions.ListByAuthor(ctx, actor.ID)
}

// Search returns suggestions whose title contains the query, excluding ones
// still in the Submitted state.
func (s *SuggestionService) Search(ctx context.Context, title string) ([]*models.Suggestion, error) {
	return s.suggestions.FindByTitle(ctx, title)
}

// Get returns one suggestion by id.
func (s *SuggestionService) Get(ctx context.Context, id int) (*models.Suggestion, error) {
	return s.suggestions.GetByID(ctx, id)
}

// Submit resolves the actor's profile snapshot, then creates the suggestion
// record. The resolution chain runs before the create so the mutation itself
// needs no lookups: profile, manager identity and postal enrichment are all
// settled by the time the record is written.
func (s *SuggestionService) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*models.Suggestion, error) {
	submitter, err := s.profiles.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}

	suggestion := &models.Suggestion{
		Title:             req.Title,
		Summary:           req.Summary,
		Challenges:        req.Challenges,
		SuggestedSolution: req.SuggestedSolution,
		Location:          req.Location,
		UsefulForOthers:   req.UsefulForOthers,
		UsefulnessType:    req.UsefulnessType,
		Image:             req.Image,
		CompetitionRef:    req.CampaignRef,
		IsPast:            req.IsPast,
		Submitter:         *submitter,
	}
	for _, id := range req.InspiredBy {
		suggestion.InspiredBy = append(suggestion.InspiredBy, models.SuggestionRef{ID: id})
	}
	for _, id := range req.Goals {
		suggestion.SustainabilityGoals = append(suggestion.SustainabilityGoals, models.SustainabilityGoal{ID: id})
	}

	return s.suggestions.Create(ctx, suggestion)
}
