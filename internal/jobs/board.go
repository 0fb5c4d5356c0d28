// Package jobs implements the job board: listings, applications and postings.
package jobs

import (
	"context"
	"strings"
	"sync"

	"huntx-client/internal/api"
	"huntx-client/internal/models"
	"huntx-client/internal/policy"
)

// API is the part of the REST client used by the board.
type API interface {
	Jobs(ctx context.Context, filter models.JobFilter) (models.JobPage, error)
	Job(ctx context.Context, id string) (models.Job, error)
	FeaturedJobs(ctx context.Context) ([]models.Job, error)
	TopCompanies(ctx context.Context) ([]models.Company, error)
	Apply(ctx context.Context, jobID string) error
	MyApplications(ctx context.Context) ([]models.Application, error)
	EmployerApplications(ctx context.Context) ([]models.Application, error)
	PostJob(ctx context.Context, job api.NewJob) (string, error)
	MyJobs(ctx context.Context) ([]models.Job, error)
	UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (models.ApplicationStatus, error)
}

// Authorizer decides whether a role may perform an action.
type Authorizer interface {
	Check(ctx context.Context, kind models.ErrorKind, role models.Role, action string) error
}

// SessionSource reports the signed-in user.
type SessionSource interface {
	Current() (models.Session, bool)
}

// Board wraps the job endpoints with role checks and remembers which jobs the
// signed-in job seeker applied to.
type Board struct {
	api     API
	policy  Authorizer
	session SessionSource

	mu      sync.RWMutex
	owner   string
	applied map[string]bool
}

func NewBoard(client API, authz Authorizer, session SessionSource) *Board {
	return &Board{api: client, policy: authz, session: session, applied: make(map[string]bool)}
}

// List returns one page of listings. Page and limit default to 1 and 9.
func (b *Board) List(ctx context.Context, filter models.JobFilter) (models.JobPage, error) {
	return b.api.Jobs(ctx, filter.Normalize())
}

// Get returns one listing.
func (b *Board) Get(ctx context.Context, id string) (models.Job, error) {
	if strings.TrimSpace(id) == "" {
		return models.Job{}, models.Errorf(models.KindFetch, "get job", models.ErrValidation, "job id is required")
	}
	return b.api.Job(ctx, id)
}

// Featured returns the promoted listings.
func (b *Board) Featured(ctx context.Context) ([]models.Job, error) {
	return b.api.FeaturedJobs(ctx)
}

// TopCompanies returns the companies with the most listings.
func (b *Board) TopCompanies(ctx context.Context) ([]models.Company, error) {
	return b.api.TopCompanies(ctx)
}

// Apply submits an application for jobID. Only job seekers may apply, and only
// once per job.
func (b *Board) Apply(ctx context.Context, jobID string) error {
	const op = "apply for job"
	sess, err := b.authorize(ctx, models.KindSend, op, policy.ActionJobsApply)
	if err != nil {
		return err
	}
	if applied, _ := b.HasApplied(ctx, jobID); applied {
		return models.Errorf(models.KindSend, op, models.ErrValidation, "already applied for job %s", jobID)
	}
	if err := b.api.Apply(ctx, jobID); err != nil {
		return err
	}

	b.mu.Lock()
	if b.owner == sess.UserID {
		b.applied[jobID] = true
	}
	b.mu.Unlock()
	return nil
}

// HasApplied reports whether the signed-in job seeker applied to jobID. The
// first call loads the application list.
func (b *Board) HasApplied(ctx context.Context, jobID string) (bool, error) {
	sess, ok := b.session.Current()
	if !ok || sess.Role != models.RoleJobSeeker {
		return false, nil
	}
	b.mu.RLock()
	loaded := b.owner == sess.UserID
	applied := b.applied[jobID]
	b.mu.RUnlock()
	if loaded {
		return applied, nil
	}
	if _, err := b.MyApplications(ctx); err != nil {
		return false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applied[jobID], nil
}

// MyApplications lists the signed-in job seeker's applications.
func (b *Board) MyApplications(ctx context.Context) ([]models.Application, error) {
	sess, err := b.authorize(ctx, models.KindFetch, "my applications", policy.ActionJobsApply)
	if err != nil {
		return nil, err
	}
	apps, err := b.api.MyApplications(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.owner = sess.UserID
	b.applied = make(map[string]bool, len(apps))
	for _, a := range apps {
		b.applied[a.Job.ID] = true
	}
	b.mu.Unlock()
	return apps, nil
}

// Post publishes a listing. Title, company and description are required.
func (b *Board) Post(ctx context.Context, job api.NewJob) (string, error) {
	const op = "post job"
	if _, err := b.authorize(ctx, models.KindSend, op, policy.ActionJobsPost); err != nil {
		return "", err
	}
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	job.Description = strings.TrimSpace(job.Description)
	if job.Title == "" || job.Company == "" || job.Description == "" {
		return "", models.Errorf(models.KindSend, op, models.ErrValidation, "title, company and description are required")
	}
	return b.api.PostJob(ctx, job)
}

// MyJobs lists the signed-in employer's listings.
func (b *Board) MyJobs(ctx context.Context) ([]models.Job, error) {
	if _, err := b.authorize(ctx, models.KindFetch, "my jobs", policy.ActionJobsMine); err != nil {
		return nil, err
	}
	return b.api.MyJobs(ctx)
}

// EmployerApplications lists applications to the signed-in employer's jobs.
func (b *Board) EmployerApplications(ctx context.Context) ([]models.Application, error) {
	if _, err := b.authorize(ctx, models.KindFetch, "employer applications", policy.ActionJobsApplicationsView); err != nil {
		return nil, err
	}
	return b.api.EmployerApplications(ctx)
}

// UpdateApplicationStatus records the employer's decision on an application.
func (b *Board) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (models.ApplicationStatus, error) {
	const op = "update application status"
	if _, err := b.authorize(ctx, models.KindSend, op, policy.ActionJobsApplicationsUpdate); err != nil {
		return "", err
	}
	if !status.Valid() {
		return "", models.Errorf(models.KindSend, op, models.ErrValidation, "unknown status %q", status)
	}
	return b.api.UpdateApplicationStatus(ctx, applicationID, status)
}

func (b *Board) authorize(ctx context.Context, kind models.ErrorKind, op, action string) (models.Session, error) {
	sess, ok := b.session.Current()
	if !ok {
		return models.Session{}, models.NewError(models.KindAuth, op, models.ErrNotSignedIn)
	}
	if err := b.policy.Check(ctx, kind, sess.Role, action); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}
