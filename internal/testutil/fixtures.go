package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// SuggestionRow builds a plausible suggestion row for seeding the fake store.
// Overrides are merged on top of the generated fields.
func SuggestionRow(overrides map[string]any) map[string]any {
	row := map[string]any{
		"Title":             gofakeit.Sentence(4),
		"Summary":           gofakeit.Paragraph(1, 2, 8, " "),
		"Challenges":        gofakeit.Sentence(8),
		"SuggestedSolution": gofakeit.Sentence(10),
		"Location":          gofakeit.City(),
		"UsefulForOthers":   gofakeit.Sentence(6),
		"UsefulnessType":    "Kvalitet",
		"Status":            "Accepted",
		"Likes":             gofakeit.Number(0, 20),
		"NumberOfComments":  0,
		"Image":             "",
		"CompRef":           "",
		"IsPast":            false,
		"SendToKS":          false,
		"Name":              gofakeit.Name(),
		"Address":           gofakeit.Street(),
		"City":              gofakeit.City(),
		"CountyCode":        "03",
		"Department":        gofakeit.JobTitle(),
		"MailAddress":       gofakeit.Email(),
		"Telephone":         gofakeit.Phone(),
		"Zipcode":           "0556",
		"AuthorId":          gofakeit.Number(1, 50),
		"Created":           time.Now().UTC().Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour).Format(time.RFC3339),
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// CommentRow builds a comment row for seeding the fake store.
func CommentRow(suggestionID int, overrides map[string]any) map[string]any {
	row := map[string]any{
		"SuggestionId": suggestionID,
		"Title":        gofakeit.Name(),
		"Image":        "",
		"Text":         gofakeit.Sentence(12),
		"Created":      time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// GoalRow builds a sustainability goal row.
func GoalRow(id, iconID int, title string) map[string]any {
	return map[string]any{
		"Id":     id,
		"Title":  title,
		"IconId": iconID,
	}
}

// IconRow builds an icon row with the nested file path shape the store uses.
func IconRow(id int, serverRelativeURL string) map[string]any {
	return map[string]any{
		"Id":   id,
		"File": map[string]any{"ServerRelativeUrl": serverRelativeURL},
	}
}
