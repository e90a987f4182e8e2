// internal/models/candidate.go
package models

import "time"

type EducationEntry struct {
	ID          string `json:"id" yaml:"id"`
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	StartYear   int    `json:"startYear" yaml:"startYear"`
	EndYear     *int   `json:"endYear,omitempty" yaml:"endYear,omitempty"`
	IsCurrent   bool   `json:"isCurrent" yaml:"isCurrent"`
}

// FileRef points at an uploaded document.
type FileRef struct {
	Filename   string    `json:"filename" yaml:"filename"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
}

// CandidateProfile is what a screener sees on a card.
type CandidateProfile struct {
	ID                string           `json:"id" db:"id"`
	UserID            string           `json:"userId" db:"user_id"`
	FullName          string           `json:"fullName" db:"full_name"`
	Email             string           `json:"email" db:"email"`
	Phone             string           `json:"phone,omitempty" db:"phone"`
	Location          string           `json:"location,omitempty" db:"location"`
	YearsOfExperience int              `json:"yearsOfExperience" db:"years_of_experience"`
	Skills            []string         `json:"skills" db:"skills"`
	Education         []EducationEntry `json:"education" db:"education"`
	Resume            *FileRef         `json:"resume,omitempty" db:"resume"`
	CV                *FileRef         `json:"cv,omitempty" db:"cv"`
	Portfolio         string           `json:"portfolio,omitempty" db:"portfolio"`
	LinkedIn          string           `json:"linkedIn,omitempty" db:"linkedin"`
	GitHub            string           `json:"github,omitempty" db:"github"`
	PersonalWebsite   string           `json:"personalWebsite,omitempty" db:"personal_website"`
	Bio               string           `json:"bio,omitempty" db:"bio"`
	CreatedAt         time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" db:"updated_at"`
}

// ProfilePatch carries the editable fields of a candidate profile. Nil fields are left alone.
type ProfilePatch struct {
	FullName          *string          `json:"fullName,omitempty" validate:"omitempty,min=1,max=120"`
	Phone             *string          `json:"phone,omitempty" validate:"omitempty,max=40"`
	Location          *string          `json:"location,omitempty" validate:"omitempty,max=120"`
	YearsOfExperience *int             `json:"yearsOfExperience,omitempty" validate:"omitempty,min=0,max=70"`
	Skills            []string         `json:"skills,omitempty" validate:"omitempty,max=50,dive,min=1,max=60"`
	Education         []EducationEntry `json:"education,omitempty" validate:"omitempty,max=20"`
	Portfolio         *string          `json:"portfolio,omitempty" validate:"omitempty,url"`
	LinkedIn          *string          `json:"linkedIn,omitempty" validate:"omitempty,url"`
	GitHub            *string          `json:"github,omitempty" validate:"omitempty,url"`
	PersonalWebsite   *string          `json:"personalWebsite,omitempty" validate:"omitempty,url"`
	Bio               *string          `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// Apply copies the set fields of patch onto p.
func (patch ProfilePatch) Apply(p *CandidateProfile) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.YearsOfExperience != nil {
		p.YearsOfExperience = *patch.YearsOfExperience
	}
	if patch.Skills != nil {
		p.Skills = append([]string(nil), patch.Skills...)
	}
	if patch.Education != nil {
		p.Education = append([]EducationEntry(nil), patch.Education...)
	}
	if patch.Portfolio != nil {
		p.Portfolio = *patch.Portfolio
	}
	if patch.LinkedIn != nil {
		p.LinkedIn = *patch.LinkedIn
	}
	if patch.GitHub != nil {
		p.GitHub = *patch.GitHub
	}
	if patch.PersonalWebsite != nil {
		p.PersonalWebsite = *patch.PersonalWebsite
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
}
