package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"swipe-screening/internal/models"
	"swipe-screening/internal/store/memory"
)

const minimalSeed = `
users:
  - id: u-hr
    email: hr@acme.io
    password: secret123
    name: Hana
    role: hr
    hrProfile: {id: hr-1, companyName: Acme}
  - id: u-1
    email: one@mail.io
    password: secret123
    name: One
    role: candidate
    createdAt: 2024-02-01T10:00:00Z
    candidateProfile:
      id: c-1
      skills: [go]
      education:
        - {id: e-1, institution: MIT, degree: BSc, startYear: 2010}
jobs:
  - {id: job-1, hrId: hr-1, title: SRE, status: active}
applications:
  - {id: app-1, jobId: job-1, candidateId: c-1, status: rejected, appliedAt: 2024-02-02T10:00:00Z}
conversations:
  - id: conv-1
    hrId: hr-1
    candidateId: c-1
    jobId: job-1
    applicationId: app-1
    messages:
      - {id: m-1, senderId: u-hr, senderRole: hr, message: Hello, timestamp: 2024-02-03T10:00:00Z}
`

var seedNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestParseAndApply(t *testing.T) {
	f, err := Parse([]byte(minimalSeed))
	require.NoError(t, err)

	repo := memory.New()
	sum, err := f.Apply(repo, bcrypt.MinCost, seedNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Candidates: 1, HRManagers: 1, Jobs: 1, Applications: 1, Conversations: 1, Messages: 1}, sum)

	ctx := context.Background()
	u, err := repo.FindUserByEmail(ctx, "one@mail.io")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), u.CreatedAt)

	hr, err := repo.FindUserByEmail(ctx, "hr@acme.io")
	require.NoError(t, err)
	assert.Equal(t, seedNow, hr.CreatedAt)

	p, err := repo.CandidateProfile(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "One", p.FullName)
	assert.Equal(t, []string{"go"}, p.Skills)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "MIT", p.Education[0].Institution)

	job, err := repo.Job(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, job.ApplicantCount)

	app, err := repo.Application(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, app.Status)
	require.NotNil(t, app.RejectedAt)

	conv, err := repo.Conversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", conv.LastMessage)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing users", `jobs: []`},
		{"bad role", `
users:
  - {id: u, email: a@b.io, password: secret123, name: A, role: admin}
`},
		{"candidate without profile", `
users:
  - {id: u, email: a@b.io, password: secret123, name: A, role: candidate}
`},
		{"hr with candidate profile", `
users:
  - id: u
    email: a@b.io
    password: secret123
    name: A
    role: hr
    hrProfile: {id: hr-1, companyName: X}
    candidateProfile: {id: c-1}
`},
		{"bad job status", `
users: []
jobs:
  - {id: j, hrId: h, title: T, status: paused}
`},
		{"unknown top-level key", `
users: []
interviews: []
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "seed validation failed")
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("users: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse seed")
}

func TestApply_DanglingReference(t *testing.T) {
	f, err := Parse([]byte(`
users:
  - {id: u-hr, email: hr@acme.io, password: secret123, name: H, role: hr, hrProfile: {id: hr-1, companyName: A}}
jobs:
  - {id: job-1, hrId: hr-404, title: SRE, status: active}
`))
	require.NoError(t, err)

	_, err = f.Apply(memory.New(), bcrypt.MinCost, seedNow)
	assert.Error(t, err)
}

func TestLoadFile_ShippedSeed(t *testing.T) {
	f, err := LoadFile("../../../configs/seed.yaml")
	require.NoError(t, err)

	repo := memory.New()
	sum, err := f.Apply(repo, bcrypt.MinCost, seedNow)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Candidates)

	cands, err := repo.CandidatesForJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, cands, 3)
	assert.Equal(t, "candidate-1", cands[0].ID)
	assert.Equal(t, "candidate-3", cands[1].ID)
	assert.Equal(t, "candidate-4", cands[2].ID)
}
