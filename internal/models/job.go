package models

import "time"

// Job is a listing posted by an employer.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	JobType     string    `json:"jobType,omitempty"`
	Salary      string    `json:"salary,omitempty"`
	Description string    `json:"description,omitempty"`
	PostedBy    string    `json:"postedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// JobFilter narrows a listing query.
type JobFilter struct {
	Search   string
	JobType  string
	Location string
	Company  string
	Page     int
	Limit    int
}

const (
	DefaultJobPage  = 1
	DefaultJobLimit = 9
)

// Normalize fills the paging defaults.
func (f JobFilter) Normalize() JobFilter {
	if f.Page < 1 {
		f.Page = DefaultJobPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultJobLimit
	}
	return f
}

// JobPage is one page of listings plus the total match count.
type JobPage struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// TotalPages is ceil(Total/Limit), at least 1.
func (p JobPage) TotalPages() int {
	if p.Limit < 1 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// HasPage reports whether n is within the page range.
func (p JobPage) HasPage(n int) bool {
	return n >= 1 && n <= p.TotalPages()
}

// ApplicationStatus is the employer's decision on an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Application links a job seeker to a job.
type Application struct {
	ID        string            `json:"id"`
	Job       Job               `json:"job"`
	Applicant Contact           `json:"applicant"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Company is an aggregate shown on the landing view.
type Company struct {
	Name     string `json:"name"`
	JobCount int    `json:"jobCount"`
}
