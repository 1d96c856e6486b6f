package domain

// Participant is a resolved GitHub identity. GHID is the identity key; the rest is display payload.
type Participant struct {
	GHID         int64  `json:"ghid"`
	Username     string `json:"ghUsername"`
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`

	// AccessToken is only used to query the directory on the participant's behalf.
	AccessToken string `json:"-"`
}

// Public returns the participant without its credential.
func (p Participant) Public() Participant {
	p.AccessToken = ""
	return p
}

// DisplayName prefers the full name and falls back to the login.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}
