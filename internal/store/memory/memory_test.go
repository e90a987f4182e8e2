package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	seq := 0
	return New(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s-%d", prefix, seq)
		}),
	)
}

// seeded builds one HR manager with one job and three applicants, inserted in the
// order carol, alice, bob.
func seeded(t *testing.T) *Repository {
	t.Helper()
	r := newTestRepo(t)

	require.NoError(t, r.PutUser(models.User{ID: "u-hr", Email: "hr@acme.io", Role: models.RoleHR}))
	require.NoError(t, r.PutHRProfile(models.HRProfile{ID: "hr-1", UserID: "u-hr", CompanyName: "Acme"}))
	require.NoError(t, r.PutJob(models.Job{ID: "job-1", HRID: "hr-1", Title: "SRE", Status: models.JobStatusActive}))
	require.NoError(t, r.PutJob(models.Job{ID: "job-2", HRID: "hr-1", Title: "PM", Status: models.JobStatusClosed}))

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, r.PutUser(models.User{ID: "u-" + name, Email: name + "@mail.io", Role: models.RoleCandidate}))
		require.NoError(t, r.PutCandidateProfile(models.CandidateProfile{ID: "c-" + name, UserID: "u-" + name, FullName: name}))
	}
	for _, id := range []string{"bob", "alice", "carol"} {
		require.NoError(t, r.PutApplication(models.Application{
			ID: "app-" + id, JobID: "job-1", CandidateID: "c-" + id, Status: models.ApplicationStatusApplied,
		}))
	}
	return r
}

// ==========================
// Accounts
// ==========================

func TestCreateCandidate_Success(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	acc, err := r.CreateCandidate(ctx, store.NewCandidate{Email: "New@Mail.io", PasswordHash: "h", Name: "Nia"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCandidate, acc.Role())
	assert.Equal(t, "Nia", acc.Profile.FullName)
	assert.Equal(t, acc.User.ID, acc.Profile.UserID)
	assert.Empty(t, acc.Profile.Skills)
	assert.Equal(t, testNow, acc.Profile.CreatedAt)

	u, err := r.FindUserByEmail(ctx, "new@mail.io")
	require.NoError(t, err)
	assert.Equal(t, acc.User.ID, u.ID)

	loaded, err := r.LoadAccount(ctx, u.ID)
	require.NoError(t, err)
	cand, ok := loaded.(models.CandidateAccount)
	require.True(t, ok)
	assert.Equal(t, acc.Profile.ID, cand.Profile.ID)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateHR(ctx, store.NewHR{Email: "boss@acme.io", Name: "Boss"})
	require.NoError(t, err)

	_, err = r.CreateCandidate(ctx, store.NewCandidate{Email: " BOSS@acme.io", Name: "Copy"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestLoadAccount_HR(t *testing.T) {
	r := seeded(t)

	acc, err := r.LoadAccount(context.Background(), "u-hr")
	require.NoError(t, err)
	hr, ok := acc.(models.HRAccount)
	require.True(t, ok)
	assert.Equal(t, "Acme", hr.Profile.CompanyName)

	_, err = r.LoadAccount(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// ==========================
// Profiles
// ==========================

func TestUpdateCandidateProfile(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	bio := "Go and Kubernetes"
	years := 4
	later := testNow.Add(time.Hour)
	p, err := r.UpdateCandidateProfile(ctx, "c-alice", models.ProfilePatch{
		Bio:               &bio,
		YearsOfExperience: &years,
		Skills:            []string{"go", "k8s"},
	}, later)
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, 4, p.YearsOfExperience)
	assert.Equal(t, later, p.UpdatedAt)
	assert.Equal(t, "alice", p.FullName)

	p.Skills[0] = "mutated"
	again, err := r.CandidateProfile(ctx, "c-alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "k8s"}, again.Skills)

	_, err = r.UpdateCandidateProfile(ctx, "c-ghost", models.ProfilePatch{}, later)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// ==========================
// Jobs And Applications
// ==========================

func TestJobs(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	own, err := r.JobsByHR(ctx, "hr-1")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	active, err := r.ActiveJobs(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "job-1", active[0].ID)

	_, err = r.Job(ctx, "job-9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCandidatesForJob_ProfileOrder(t *testing.T) {
	r := seeded(t)

	cands, err := r.CandidatesForJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, cands, 3)
	assert.Equal(t, "c-carol", cands[0].ID)
	assert.Equal(t, "c-alice", cands[1].ID)
	assert.Equal(t, "c-bob", cands[2].ID)

	none, err := r.CandidatesForJob(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = r.CandidatesForJob(context.Background(), "job-x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateApplication(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	require.NoError(t, r.PutUser(models.User{ID: "u-dan", Email: "dan@mail.io", Role: models.RoleCandidate}))
	require.NoError(t, r.PutCandidateProfile(models.CandidateProfile{ID: "c-dan", UserID: "u-dan"}))

	app, err := r.CreateApplication(ctx, "job-1", "c-dan", testNow)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.Equal(t, testNow, app.AppliedAt)

	job, _ := r.Job(ctx, "job-1")
	assert.Equal(t, 1, job.ApplicantCount)

	_, err = r.CreateApplication(ctx, "job-1", "c-dan", testNow)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = r.CreateApplication(ctx, "job-x", "c-dan", testNow)
	assert.ErrorIs(t, err, store.ErrNotFound)

	mine, err := r.ApplicationsByCandidate(ctx, "c-dan")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestSetApplicationStatus(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	app, err := r.SetApplicationStatus(ctx, "app-bob", models.ApplicationStatusShortlisted, testNow)
	require.NoError(t, err)
	require.NotNil(t, app.ShortlistedAt)
	assert.Nil(t, app.RejectedAt)

	app, err = r.SetApplicationStatus(ctx, "app-bob", models.ApplicationStatusRejected, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, app.Status)
	require.NotNil(t, app.RejectedAt)

	_, err = r.SetApplicationStatus(ctx, "app-bob", models.ApplicationStatusApplied, testNow)
	assert.ErrorIs(t, err, store.ErrInvalidStatus)

	_, err = r.SetApplicationStatus(ctx, "app-bob", "archived", testNow)
	assert.ErrorIs(t, err, store.ErrInvalidStatus)

	_, err = r.SetApplicationStatus(ctx, "app-none", models.ApplicationStatusRejected, testNow)
	assert.ErrorIs(t, err, store.ErrNotFound)

	byJob, err := r.ApplicationsByJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "app-bob", byJob[0].ID)
	assert.Equal(t, models.ApplicationStatusRejected, byJob[0].Status)
}

func TestPutApplication_Rejects(t *testing.T) {
	r := seeded(t)

	err := r.PutApplication(models.Application{ID: "app-x", JobID: "job-1", CandidateID: "c-bob", Status: models.ApplicationStatusApplied})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = r.PutApplication(models.Application{ID: "app-y", JobID: "job-2", CandidateID: "c-bob", Status: "lost"})
	assert.ErrorIs(t, err, store.ErrInvalidStatus)
}

// ==========================
// Conversations
// ==========================

func TestConversations(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	require.NoError(t, r.PutConversation(models.ChatConversation{ID: "conv-1", HRID: "hr-1", CandidateID: "c-bob", JobID: "job-1"}))
	require.NoError(t, r.PutMessage(models.ChatMessage{ID: "m-1", ConversationID: "conv-1", SenderRole: models.RoleHR, Message: "Hi"}))
	assert.ErrorIs(t, r.PutMessage(models.ChatMessage{ID: "m-2", ConversationID: "conv-9"}), store.ErrNotFound)

	hrConvs, err := r.Conversations(ctx, "hr-1", models.RoleHR)
	require.NoError(t, err)
	assert.Len(t, hrConvs, 1)

	candConvs, err := r.Conversations(ctx, "c-alice", models.RoleCandidate)
	require.NoError(t, err)
	assert.Empty(t, candConvs)

	msgs, err := r.Messages(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi", msgs[0].Message)

	_, err = r.Messages(ctx, "conv-9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
