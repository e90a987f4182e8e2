// internal/store/postgres/queries.go
package postgres

const (
	userColumns = `id, email, password_hash, name, role, created_at`

	candidateColumns = `id, user_id, full_name, email, phone, location, years_of_experience,
		skills, education, resume, cv, portfolio, linkedin, github, personal_website, bio,
		created_at, updated_at`

	hrColumns = `id, user_id, company_name, company_size, department, created_at, updated_at`

	jobColumns = `id, hr_id, title, description, department, location, required_skills,
		min_experience, min_education, salary_min, salary_max, status, created_at, closed_at,
		applicant_count`

	applicationColumns = `id, job_id, candidate_id, status, applied_at, shortlisted_at, rejected_at`

	conversationColumns = `id, hr_id, candidate_id, job_id, application_id, created_at, updated_at, last_message`
)

const (
	queryUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	queryUserByID    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	insertUser       = `INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryCandidateByID     = `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE id = $1`
	queryCandidateByUser   = `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE user_id = $1`
	queryCandidateForWrite = `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE id = $1 FOR UPDATE`
	insertCandidate        = `INSERT INTO candidate_profiles (id, user_id, full_name, email, skills, education, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	updateCandidate = `UPDATE candidate_profiles SET full_name = $2, phone = $3, location = $4,
		years_of_experience = $5, skills = $6, education = $7, portfolio = $8, linkedin = $9,
		github = $10, personal_website = $11, bio = $12, updated_at = $13 WHERE id = $1`

	queryHRByUser = `SELECT ` + hrColumns + ` FROM hr_profiles WHERE user_id = $1`
	insertHR      = `INSERT INTO hr_profiles (id, user_id, company_name, company_size, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryJobByID   = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	queryJobsByHR  = `SELECT ` + jobColumns + ` FROM jobs WHERE hr_id = $1 ORDER BY created_at, id`
	queryActiveJob = `SELECT ` + jobColumns + ` FROM jobs WHERE status = 'active' ORDER BY created_at, id`
	queryJobExists = `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`
	bumpApplicants = `UPDATE jobs SET applicant_count = applicant_count + 1 WHERE id = $1`

	queryApplicationByID     = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	queryApplicationForWrite = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	queryApplicationsByJob   = `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = $1 ORDER BY seq`
	queryApplicationsByCand  = `SELECT ` + applicationColumns + ` FROM applications WHERE candidate_id = $1 ORDER BY seq`
	insertApplication        = `INSERT INTO applications (id, job_id, candidate_id, status, applied_at)
		VALUES ($1, $2, $3, $4, $5)`
	updateApplicationStatus = `UPDATE applications SET status = $2, shortlisted_at = $3, rejected_at = $4 WHERE id = $1`

	queryCandidatesForJob = `SELECT ` + candidateColumns + ` FROM candidate_profiles
		WHERE id IN (SELECT candidate_id FROM applications WHERE job_id = $1)
		ORDER BY seq`

	queryConversationsForHR        = `SELECT ` + conversationColumns + ` FROM chat_conversations WHERE hr_id = $1 ORDER BY updated_at DESC`
	queryConversationsForCandidate = `SELECT ` + conversationColumns + ` FROM chat_conversations WHERE candidate_id = $1 ORDER BY updated_at DESC`
	queryConversationByID          = `SELECT ` + conversationColumns + ` FROM chat_conversations WHERE id = $1`
	queryMessages                  = `SELECT id, conversation_id, sender_id, sender_role, message, sent_at, read
		FROM chat_messages WHERE conversation_id = $1 ORDER BY sent_at, id`
)
