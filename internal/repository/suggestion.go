package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kominn/internal/models"
	"kominn/internal/profile"
	"kominn/internal/store"
)

const defaultListTop = 100

// ListOptions controls suggestion query composition. Filter, when set, fully
// replaces the default status filter; Sort, when set, replaces the default
// Created-descending order.
type ListOptions struct {
	Status models.Status
	Top    int
	Filter string
	Sort   string
}

// SuggestionRepository reads and mutates suggestion records.
type SuggestionRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*models.Suggestion, error)
	ListByAuthor(ctx context.Context, authorID int) ([]*models.Suggestion, error)
	FindByTitle(ctx context.Context, title string) ([]*models.Suggestion, error)
	GetByID(ctx context.Context, id int) (*models.Suggestion, error)
	Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	AdjustLikes(ctx context.Context, id, delta int) (int, error)
	AdjustComments(ctx context.Context, id, delta int) (int, error)
	MarkPublished(ctx context.Context, id int) error
}

type suggestionRepository struct {
	store *store.Client
	goals GoalRepository
}

// NewSuggestionRepository creates a suggestion repository over the given
// store client. Goal references on queried rows are mapped against the goal
// repository's resolved list.
func NewSuggestionRepository(s *store.Client, goals GoalRepository) SuggestionRepository {
	return &suggestionRepository{store: s, goals: goals}
}

type suggestionRow struct {
	ID                int    `json:"Id"`
	Title             string `json:"Title"`
	Summary           string `json:"Summary"`
	Challenges        string `json:"Challenges"`
	SuggestedSolution string `json:"SuggestedSolution"`
	Location          string `json:"Location"`
	UsefulForOthers   string `json:"UsefulForOthers"`
	UsefulnessType    string `json:"UsefulnessType"`
	Status            string `json:"Status"`
	Likes             *int   `json:"Likes"`
	NumberOfComments  *int   `json:"NumberOfComments"`
	Image             string `json:"Image"`
	CompRef           string `json:"CompRef"`
	IsPast            bool   `json:"IsPast"`
	SendToKS          bool   `json:"SendToKS"`

	Name        string `json:"Name"`
	Address     string `json:"Address"`
	City        string `json:"City"`
	CountyCode  string `json:"CountyCode"`
	Department  string `json:"Department"`
	MailAddress string `json:"MailAddress"`
	Telephone   string `json:"Telephone"`
	Zipcode     string `json:"Zipcode"`
	ManagerID   int    `json:"ManagerId"`

	Created time.Time `json:"Created"`
	Author  struct {
		ID int `json:"Id"`
	} `json:"Author"`
	InspiredBy *refResults    `json:"InspiredBy"`
	Tags       *stringResults `json:"Tags"`
	GoalIDs    *lookupResults `json:"SustainabilityGoalsId"`
}

func (r *suggestionRepository) List(ctx context.Context, opts ListOptions) ([]*models.Suggestion, error) {
	// Goals are resolved up front so every row maps its references against
	// the same snapshot.
	goals, err := r.goals.List(ctx)
	if err != nil {
		return nil, err
	}
	goalByID := make(map[int]models.SustainabilityGoal, len(goals))
	for _, g := range goals {
		goalByID[g.ID] = g
	}

	filter := opts.Filter
	if filter == "" {
		// Submitted rows are unreviewed drafts and never appear in the
		// default listing; callers wanting them pass an explicit filter.
		filter = fmt.Sprintf("Status ne '%s'", models.StatusSubmitted)
		if opts.Status != "" {
			filter = fmt.Sprintf("%s and Status eq '%s'", filter, opts.Status)
		}
	}
	sort := opts.Sort
	if sort == "" {
		sort = "Created desc"
	}
	top := opts.Top
	if top <= 0 {
		top = defaultListTop
	}

	var rows []suggestionRow
	err = r.store.Items(ctx, ListSuggestions, store.Query{
		Filter:  filter,
		Select:  []string{"*", "Author/Id", "InspiredBy/Id", "InspiredBy/Title"},
		Expand:  []string{"InspiredBy", "Author"},
		OrderBy: sort,
		Top:     top,
	}, &rows)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*models.Suggestion, 0, len(rows))
	for i := range rows {
		suggestions = append(suggestions, mapRow(&rows[i], goalByID))
	}
	return suggestions, nil
}

func (r *suggestionRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Suggestion, error) {
	return r.List(ctx, ListOptions{Filter: fmt.Sprintf("Author/Id eq %d", authorID)})
}

func (r *suggestionRepository) FindByTitle(ctx context.Context, title string) ([]*models.Suggestion, error) {
	escaped := strings.ReplaceAll(title, "'", "''")
	return r.List(ctx, ListOptions{
		Filter: fmt.Sprintf("substringof('%s', Title) and Status ne '%s'", escaped, models.StatusSubmitted),
	})
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int) (*models.Suggestion, error) {
	found, err := r.List(ctx, ListOptions{Filter: fmt.Sprintf("Id eq %d", id), Top: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, models.NewNotFoundError("Suggestion", id)
	}
	return found[0], nil
}

// mapRow projects a raw store row into the domain model. Missing Image, Likes
// and NumberOfComments normalize to empty string and zero. Goal references
// that resolve to no known goal are omitted.
func mapRow(row *suggestionRow, goalByID map[int]models.SustainabilityGoal) *models.Suggestion {
	status, _ := models.ParseStatus(row.Status)
	s := &models.Suggestion{
		ID:                row.ID,
		Title:             row.Title,
		Summary:           row.Summary,
		Challenges:        row.Challenges,
		SuggestedSolution: row.SuggestedSolution,
		Location:          row.Location,
		UsefulForOthers:   row.UsefulForOthers,
		UsefulnessType:    row.UsefulnessType,
		Status:            status,
		Image:             row.Image,
		Created:           row.Created,
		CompetitionRef:    row.CompRef,
		IsPast:            row.IsPast,
		SentToExternal:    row.SendToKS,
		Submitter: models.Person{
			ID:          row.Author.ID,
			Name:        row.Name,
			Address:     row.Address,
			City:        row.City,
			CountyCode:  row.CountyCode,
			Department:  row.Department,
			MailAddress: row.MailAddress,
			Telephone:   row.Telephone,
			Zipcode:     row.Zipcode,
		},
	}
	if row.Likes != nil {
		s.Likes = *row.Likes
	}
	if row.NumberOfComments != nil {
		s.NumberOfComments = *row.NumberOfComments
	}
	if row.ManagerID > 0 {
		s.Submitter.Manager = &models.Person{ID: row.ManagerID}
	}
	if row.InspiredBy != nil {
		for _, ref := range row.InspiredBy.Results {
			s.InspiredBy = append(s.InspiredBy, models.SuggestionRef{ID: ref.ID, Title: ref.Title})
		}
	}
	if row.Tags != nil {
		s.Tags = row.Tags.Results
	}
	if row.GoalIDs != nil {
		for _, id := range row.GoalIDs.Results {
			if goal, ok := goalByID[id]; ok {
				s.SustainabilityGoals = append(s.SustainabilityGoals, goal)
			}
		}
	}
	return s
}

// Create writes a new suggestion record. Status is forced to Submitted
// regardless of input; the manager lookup is set only when the submitter's
// manager identity is resolved. Manager and goal validity are the caller's
// responsibility; no resolution happens here. The store transaction is
// all-or-nothing, so no partial record survives a rejection.
func (r *suggestionRepository) Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	fields := map[string]any{
		"Title":             s.Title,
		"Summary":           s.Summary,
		"Challenges":        s.Challenges,
		"SuggestedSolution": s.SuggestedSolution,
		"Location":          s.Location,
		"UsefulForOthers":   s.UsefulForOthers,
		"UsefulnessType":    s.UsefulnessType,
		"CountyCode":        s.Submitter.CountyCode,
		"Name":              s.Submitter.Name,
		"Address":           s.Submitter.Address,
		"MailAddress":       s.Submitter.MailAddress,
		"Telephone":         s.Submitter.Telephone,
		"Zipcode":           s.Submitter.Zipcode,
		"City":              s.Submitter.City,
		"Department":        s.Submitter.Department,
		"Image":             s.Image,
		"Status":            string(models.StatusSubmitted),
		"CompRef":           s.CompetitionRef,
		"SendToKS":          false,
		"IsPast":            s.IsPast,
		"AuthorId":          s.Submitter.ID,
	}
	if id := s.Submitter.ManagerID(); id != profile.UnresolvedID {
		fields["ManagerId"] = id
	}
	if len(s.InspiredBy) > 0 {
		ids := make([]int, 0, len(s.InspiredBy))
		for _, ref := range s.InspiredBy {
			ids = append(ids, ref.ID)
		}
		fields["InspiredById"] = multiLookup(ids)
	}
	if len(s.SustainabilityGoals) > 0 {
		ids := make([]int, 0, len(s.SustainabilityGoals))
		for _, goal := range s.SustainabilityGoals {
			ids = append(ids, goal.ID)
		}
		fields["SustainabilityGoalsId"] = multiLookup(ids)
	}

	id, err := r.store.Create(ctx, ListSuggestions, fields)
	if err != nil {
		return nil, models.NewSubmissionError(err)
	}

	created := *s
	created.ID = id
	created.Status = models.StatusSubmitted
	created.SentToExternal = false
	return &created, nil
}

func (r *suggestionRepository) AdjustLikes(ctx context.Context, id, delta int) (int, error) {
	return r.adjustCounter(ctx, id, "Likes", delta)
}

func (r *suggestionRepository) AdjustComments(ctx context.Context, id, delta int) (int, error) {
	return r.adjustCounter(ctx, id, "NumberOfComments", delta)
}

// adjustCounter re-reads the counter as text, parses it leniently, applies
// the delta and writes the result back. The read and the write are separate
// round trips; callers must hold the record lock for the suggestion.
func (r *suggestionRepository) adjustCounter(ctx context.Context, id int, field string, delta int) (int, error) {
	raw, err := r.store.Item(ctx, ListSuggestions, id, []string{field})
	if err != nil {
		return 0, err
	}
	count := counterFromRaw(raw[field]) + delta
	if count < 0 {
		count = 0
	}
	if err := r.store.Update(ctx, ListSuggestions, id, map[string]any{field: count}); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkPublished flips the monotonic SentToExternal flag via a partial update.
func (r *suggestionRepository) MarkPublished(ctx context.Context, id int) error {
	return r.store.Update(ctx, ListSuggestions, id, map[string]any{"SendToKS": true})
}
