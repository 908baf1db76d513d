package models

// SustainabilityGoal is a goal a suggestion can be tagged with. ImageSrc is
// the resolved icon URL, or empty string when the icon reference is dangling.
type SustainabilityGoal struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	ImageSrc string `json:"image_src"`
}
