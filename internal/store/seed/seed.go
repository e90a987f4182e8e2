// internal/store/seed/seed.go
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"swipe-screening/internal/common/validation"
	"swipe-screening/internal/models"
)

//go:embed schema.json
var schemaJSON []byte

// Sink receives fixture records. The memory repository implements it.
type Sink interface {
	PutUser(models.User) error
	PutCandidateProfile(models.CandidateProfile) error
	PutHRProfile(models.HRProfile) error
	PutJob(models.Job) error
	PutApplication(models.Application) error
	PutConversation(models.ChatConversation) error
	PutMessage(models.ChatMessage) error
}

type Fixtures struct {
	Users         []UserFixture         `yaml:"users"`
	Jobs          []JobFixture          `yaml:"jobs"`
	Applications  []ApplicationFixture  `yaml:"applications"`
	Conversations []ConversationFixture `yaml:"conversations"`
}

type UserFixture struct {
	ID               string            `yaml:"id"`
	Email            string            `yaml:"email"`
	Password         string            `yaml:"password"`
	Name             string            `yaml:"name"`
	Role             models.Role       `yaml:"role"`
	CreatedAt        time.Time         `yaml:"createdAt"`
	CandidateProfile *CandidateFixture `yaml:"candidateProfile"`
	HRProfile        *HRFixture        `yaml:"hrProfile"`
}

type CandidateFixture struct {
	ID                string                  `yaml:"id"`
	Phone             string                  `yaml:"phone"`
	Location          string                  `yaml:"location"`
	YearsOfExperience int                     `yaml:"yearsOfExperience"`
	Skills            []string                `yaml:"skills"`
	Education         []models.EducationEntry `yaml:"education"`
	Resume            *models.FileRef         `yaml:"resume"`
	CV                *models.FileRef         `yaml:"cv"`
	Portfolio         string                  `yaml:"portfolio"`
	LinkedIn          string                  `yaml:"linkedIn"`
	GitHub            string                  `yaml:"github"`
	PersonalWebsite   string                  `yaml:"personalWebsite"`
	Bio               string                  `yaml:"bio"`
}

type HRFixture struct {
	ID          string `yaml:"id"`
	CompanyName string `yaml:"companyName"`
	CompanySize string `yaml:"companySize"`
	Department  string `yaml:"department"`
}

type JobFixture struct {
	ID             string              `yaml:"id"`
	HRID           string              `yaml:"hrId"`
	Title          string              `yaml:"title"`
	Description    string              `yaml:"description"`
	Department     string              `yaml:"department"`
	Location       string              `yaml:"location"`
	RequiredSkills []string            `yaml:"requiredSkills"`
	MinExperience  int                 `yaml:"minExperience"`
	MinEducation   string              `yaml:"minEducation"`
	Salary         *models.SalaryRange `yaml:"salaryRange"`
	Status         models.JobStatus    `yaml:"status"`
	CreatedAt      time.Time           `yaml:"createdAt"`
	ClosedAt       *time.Time          `yaml:"closedAt"`
}

type ApplicationFixture struct {
	ID          string                   `yaml:"id"`
	JobID       string                   `yaml:"jobId"`
	CandidateID string                   `yaml:"candidateId"`
	Status      models.ApplicationStatus `yaml:"status"`
	AppliedAt   time.Time                `yaml:"appliedAt"`
}

type ConversationFixture struct {
	ID            string           `yaml:"id"`
	HRID          string           `yaml:"hrId"`
	CandidateID   string           `yaml:"candidateId"`
	JobID         string           `yaml:"jobId"`
	ApplicationID string           `yaml:"applicationId"`
	Messages      []MessageFixture `yaml:"messages"`
}

type MessageFixture struct {
	ID         string      `yaml:"id"`
	SenderID   string      `yaml:"senderId"`
	SenderRole models.Role `yaml:"senderRole"`
	Message    string      `yaml:"message"`
	Timestamp  time.Time   `yaml:"timestamp"`
	Read       bool        `yaml:"read"`
}

// Summary counts what Apply inserted.
type Summary struct {
	Users         int
	Candidates    int
	HRManagers    int
	Jobs          int
	Applications  int
	Conversations int
	Messages      int
}

// Parse validates raw YAML against the embedded schema and decodes it.
func Parse(data []byte) (*Fixtures, error) {
	schema, err := validation.CompileSchema(schemaJSON)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("seed validation failed: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

// LoadInto reads the seed file at path and applies it to sink.
func LoadInto(sink Sink, path string, bcryptCost int, now time.Time) (Summary, error) {
	f, err := LoadFile(path)
	if err != nil {
		return Summary{}, err
	}
	return f.Apply(sink, bcryptCost, now)
}

// Apply hashes passwords with the given bcrypt cost and inserts every record into sink.
// Records missing timestamps are stamped with now. Candidate profiles are inserted in
// file order, which becomes the screening order.
func (f *Fixtures) Apply(sink Sink, bcryptCost int, now time.Time) (Summary, error) {
	var sum Summary
	now = now.UTC()
	stamp := func(t time.Time) time.Time {
		if t.IsZero() {
			return now
		}
		return t.UTC()
	}

	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
		if err != nil {
			return sum, fmt.Errorf("hash password of %s: %w", u.Email, err)
		}
		user := models.User{
			ID:           u.ID,
			Email:        u.Email,
			PasswordHash: string(hash),
			Name:         u.Name,
			Role:         u.Role,
			CreatedAt:    stamp(u.CreatedAt),
		}
		if err := sink.PutUser(user); err != nil {
			return sum, err
		}
		sum.Users++

		switch {
		case u.Role == models.RoleCandidate && u.CandidateProfile != nil:
			if err := sink.PutCandidateProfile(u.CandidateProfile.profile(user)); err != nil {
				return sum, err
			}
			sum.Candidates++
		case u.Role == models.RoleHR && u.HRProfile != nil:
			p := u.HRProfile
			if err := sink.PutHRProfile(models.HRProfile{
				ID:          p.ID,
				UserID:      user.ID,
				CompanyName: p.CompanyName,
				CompanySize: p.CompanySize,
				Department:  p.Department,
				CreatedAt:   user.CreatedAt,
				UpdatedAt:   user.CreatedAt,
			}); err != nil {
				return sum, err
			}
			sum.HRManagers++
		default:
			return sum, fmt.Errorf("user %s: profile does not match role %q", u.ID, u.Role)
		}
	}

	applicants := make(map[string]int)
	for _, a := range f.Applications {
		applicants[a.JobID]++
	}

	for _, j := range f.Jobs {
		var closedAt *time.Time
		if j.ClosedAt != nil {
			c := j.ClosedAt.UTC()
			closedAt = &c
		}
		skills := j.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		if err := sink.PutJob(models.Job{
			ID:             j.ID,
			HRID:           j.HRID,
			Title:          j.Title,
			Description:    j.Description,
			Department:     j.Department,
			Location:       j.Location,
			RequiredSkills: skills,
			MinExperience:  j.MinExperience,
			MinEducation:   j.MinEducation,
			Salary:         j.Salary,
			Status:         j.Status,
			CreatedAt:      stamp(j.CreatedAt),
			ClosedAt:       closedAt,
			ApplicantCount: applicants[j.ID],
		}); err != nil {
			return sum, err
		}
		sum.Jobs++
	}

	for _, a := range f.Applications {
		status := a.Status
		if status == "" {
			status = models.ApplicationStatusApplied
		}
		app := models.Application{
			ID:          a.ID,
			JobID:       a.JobID,
			CandidateID: a.CandidateID,
			Status:      models.ApplicationStatusApplied,
			AppliedAt:   stamp(a.AppliedAt),
		}
		app.Transition(status, app.AppliedAt)
		if err := sink.PutApplication(app); err != nil {
			return sum, err
		}
		sum.Applications++
	}

	for _, c := range f.Conversations {
		conv := models.ChatConversation{
			ID:            c.ID,
			HRID:          c.HRID,
			CandidateID:   c.CandidateID,
			JobID:         c.JobID,
			ApplicationID: c.ApplicationID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for i, m := range c.Messages {
			ts := stamp(m.Timestamp)
			if i == 0 {
				conv.CreatedAt = ts
			}
			conv.UpdatedAt = ts
			conv.LastMessage = m.Message
		}
		if err := sink.PutConversation(conv); err != nil {
			return sum, err
		}
		sum.Conversations++

		for _, m := range c.Messages {
			if err := sink.PutMessage(models.ChatMessage{
				ID:             m.ID,
				ConversationID: c.ID,
				SenderID:       m.SenderID,
				SenderRole:     m.SenderRole,
				Message:        m.Message,
				Timestamp:      stamp(m.Timestamp),
				Read:           m.Read,
			}); err != nil {
				return sum, err
			}
			sum.Messages++
		}
	}
	return sum, nil
}

func (c *CandidateFixture) profile(u models.User) models.CandidateProfile {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	education := c.Education
	if education == nil {
		education = []models.EducationEntry{}
	}
	return models.CandidateProfile{
		ID:                c.ID,
		UserID:            u.ID,
		FullName:          u.Name,
		Email:             u.Email,
		Phone:             c.Phone,
		Location:          c.Location,
		YearsOfExperience: c.YearsOfExperience,
		Skills:            skills,
		Education:         education,
		Resume:            c.Resume,
		CV:                c.CV,
		Portfolio:         c.Portfolio,
		LinkedIn:          c.LinkedIn,
		GitHub:            c.GitHub,
		PersonalWebsite:   c.PersonalWebsite,
		Bio:               c.Bio,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.CreatedAt,
	}
}
