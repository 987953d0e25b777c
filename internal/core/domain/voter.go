package domain

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Voter is the registry entry for a wallet that wants to take part in
// governance. Verification is granted by an admin.
type Voter struct {
	ID         string    `json:"id"`
	Age        int       `json:"age"`
	IsResident bool      `json:"is_resident"`
	IsVerified bool      `json:"is_verified"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (v *Voter) Record(hasPriorVote bool) VoterRecord {
	return VoterRecord{
		Age:          v.Age,
		IsResident:   v.IsResident,
		IsVerified:   v.IsVerified,
		Role:         v.Role,
		HasPriorVote: hasPriorVote,
	}
}
