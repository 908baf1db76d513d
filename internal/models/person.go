package models

// Person is a profile snapshot resolved from the profile directory. The
// Manager field is populated only when the directory could resolve the
// manager login to a known identity.
type Person struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	CountyCode       string  `json:"county_code"`
	Department       string  `json:"department"`
	MailAddress      string  `json:"mail_address"`
	Manager          *Person `json:"manager,omitempty"`
	ManagerLoginName string  `json:"manager_login_name,omitempty"`
	Telephone        string  `json:"telephone"`
	Zipcode          string  `json:"zipcode"`
	Branch           string  `json:"branch"`
	ProfileImageURL  string  `json:"profile_image_url"`
}

// ManagerID returns the resolved manager identity, or -1 when the manager is
// unknown. The sentinel keeps lookup-field assembly branch-free for callers.
func (p *Person) ManagerID() int {
	if p.Manager == nil {
		return -1
	}
	return p.Manager.ID
}
