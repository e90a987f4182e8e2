// internal/models/user.go
package models

import "time"

// Role distinguishes the two kinds of account.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleHR        Role = "hr"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleHR
}

// User is the login identity shared by both account kinds.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// HRProfile describes the company side of an HR manager account.
type HRProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	CompanyName string    `json:"companyName" db:"company_name"`
	CompanySize string    `json:"companySize,omitempty" db:"company_size"`
	Department  string    `json:"department,omitempty" db:"department"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Account is either a CandidateAccount or an HRAccount. Each variant carries only
// the profile valid for its role.
type Account interface {
	Identity() User
	Role() Role
	isAccount()
}

type CandidateAccount struct {
	User    User             `json:"user"`
	Profile CandidateProfile `json:"profile"`
}

func (a CandidateAccount) Identity() User { return a.User }
func (a CandidateAccount) Role() Role     { return RoleCandidate }
func (CandidateAccount) isAccount()       {}

type HRAccount struct {
	User    User      `json:"user"`
	Profile HRProfile `json:"profile"`
}

func (a HRAccount) Identity() User { return a.User }
func (a HRAccount) Role() Role     { return RoleHR }
func (HRAccount) isAccount()       {}
