package team

type Team struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	MemberIDs  []string `json:"member_ids"`
	XPTotal    int      `json:"xp_total"` // incrementally maintained sum of member XP
	Position   int      `json:"position"` // rank, derived by sorting
	InviteCode string   `json:"invite_code,omitempty"`
}

// HasMember reports whether the user belongs to the team.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
