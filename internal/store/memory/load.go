// internal/store/memory/load.go
package memory

import (
	"fmt"

	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

// The Put methods insert fixture records with their ids as given. They are used by
// the seed loader and by tests.

func (r *Repository) PutUser(u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putUserLocked(u)
}

func (r *Repository) PutCandidateProfile(p models.CandidateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.candidates[p.ID]; dup {
		return fmt.Errorf("candidate profile %s: %w", p.ID, store.ErrDuplicate)
	}
	if u, ok := r.users[p.UserID]; !ok || u.Role != models.RoleCandidate {
		return fmt.Errorf("candidate profile %s: user %s: %w", p.ID, p.UserID, store.ErrNotFound)
	}
	r.putCandidateLocked(cloneProfile(p))
	return nil
}

func (r *Repository) PutHRProfile(p models.HRProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.hrProfiles[p.ID]; dup {
		return fmt.Errorf("hr profile %s: %w", p.ID, store.ErrDuplicate)
	}
	if u, ok := r.users[p.UserID]; !ok || u.Role != models.RoleHR {
		return fmt.Errorf("hr profile %s: user %s: %w", p.ID, p.UserID, store.ErrNotFound)
	}
	r.hrProfiles[p.ID] = p
	r.hrByUser[p.UserID] = p.ID
	return nil
}

func (r *Repository) PutJob(j models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.jobs[j.ID]; dup {
		return fmt.Errorf("job %s: %w", j.ID, store.ErrDuplicate)
	}
	if _, ok := r.hrProfiles[j.HRID]; !ok {
		return fmt.Errorf("job %s: hr %s: %w", j.ID, j.HRID, store.ErrNotFound)
	}
	r.jobs[j.ID] = cloneJob(j)
	r.jobOrder = append(r.jobOrder, j.ID)
	return nil
}

func (r *Repository) PutApplication(a models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.apps[a.ID]; dup {
		return fmt.Errorf("application %s: %w", a.ID, store.ErrDuplicate)
	}
	if _, ok := r.jobs[a.JobID]; !ok {
		return fmt.Errorf("application %s: job %s: %w", a.ID, a.JobID, store.ErrNotFound)
	}
	if _, ok := r.candidates[a.CandidateID]; !ok {
		return fmt.Errorf("application %s: candidate %s: %w", a.ID, a.CandidateID, store.ErrNotFound)
	}
	if _, dup := r.appPairs[pair{a.JobID, a.CandidateID}]; dup {
		return fmt.Errorf("application %s for job %s by %s: %w", a.ID, a.JobID, a.CandidateID, store.ErrDuplicate)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("application %s: %w: %q", a.ID, store.ErrInvalidStatus, a.Status)
	}
	r.putApplicationLocked(a)
	return nil
}

func (r *Repository) PutConversation(c models.ChatConversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.conversations[c.ID]; dup {
		return fmt.Errorf("conversation %s: %w", c.ID, store.ErrDuplicate)
	}
	r.conversations[c.ID] = c
	r.convOrder = append(r.convOrder, c.ID)
	return nil
}

func (r *Repository) PutMessage(m models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[m.ConversationID]; !ok {
		return fmt.Errorf("message %s: conversation %s: %w", m.ID, m.ConversationID, store.ErrNotFound)
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *Repository) putUserLocked(u models.User) error {
	key := normalizeEmail(u.Email)
	if _, taken := r.byEmail[key]; taken {
		return fmt.Errorf("email %s: %w", u.Email, store.ErrDuplicate)
	}
	if _, dup := r.users[u.ID]; dup {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrDuplicate)
	}
	r.users[u.ID] = u
	r.byEmail[key] = u.ID
	return nil
}

func (r *Repository) putCandidateLocked(p models.CandidateProfile) {
	r.candidates[p.ID] = p
	r.candidateOrder = append(r.candidateOrder, p.ID)
	r.candidateByUser[p.UserID] = p.ID
}

func (r *Repository) putApplicationLocked(a models.Application) {
	r.apps[a.ID] = a
	r.appOrder = append(r.appOrder, a.ID)
	r.appPairs[pair{a.JobID, a.CandidateID}] = a.ID
}

func cloneProfile(p models.CandidateProfile) models.CandidateProfile {
	p.Skills = append([]string{}, p.Skills...)
	p.Education = append([]models.EducationEntry{}, p.Education...)
	if p.Resume != nil {
		r := *p.Resume
		p.Resume = &r
	}
	if p.CV != nil {
		cv := *p.CV
		p.CV = &cv
	}
	return p
}

func cloneJob(j models.Job) models.Job {
	j.RequiredSkills = append([]string{}, j.RequiredSkills...)
	if j.Salary != nil {
		s := *j.Salary
		j.Salary = &s
	}
	return j
}
