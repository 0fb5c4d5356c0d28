package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"huntx-client/internal/models"
)

// Jobs lists one page of listings matching filter. No token is required.
func (c *Client) Jobs(ctx context.Context, filter models.JobFilter) (models.JobPage, error) {
	filter = filter.Normalize()
	query := url.Values{}
	query.Set("search", filter.Search)
	query.Set("jobType", filter.JobType)
	query.Set("location", filter.Location)
	query.Set("company", filter.Company)
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.Limit))

	var out jobPage
	if err := c.read(ctx, "list jobs", request{
		method: http.MethodGet,
		route:  "/jobs/list",
		path:   "/jobs/list",
		query:  query,
	}, &out); err != nil {
		return models.JobPage{}, err
	}
	return models.JobPage{Jobs: out.Jobs.models(), Total: out.Total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Job fetches a single listing.
func (c *Client) Job(ctx context.Context, id string) (models.Job, error) {
	var out wireJob
	if err := c.read(ctx, "get job", request{
		method: http.MethodGet,
		route:  "/jobs/list/:id",
		path:   "/jobs/list/" + url.PathEscape(id),
	}, &out); err != nil {
		return models.Job{}, err
	}
	return out.model(), nil
}

// FeaturedJobs returns the listings promoted on the landing view.
func (c *Client) FeaturedJobs(ctx context.Context) ([]models.Job, error) {
	var out wireJobs
	if err := c.read(ctx, "featured jobs", request{
		method: http.MethodGet,
		route:  "/jobs/featured",
		path:   "/jobs/featured",
	}, &out); err != nil {
		return nil, err
	}
	return out.models(), nil
}

// TopCompanies returns the companies with the most listings.
func (c *Client) TopCompanies(ctx context.Context) ([]models.Company, error) {
	var out wireCompanies
	if err := c.read(ctx, "top companies", request{
		method: http.MethodGet,
		route:  "/jobs/top-companies",
		path:   "/jobs/top-companies",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply submits an application for jobID on behalf of the signed-in job seeker.
func (c *Client) Apply(ctx context.Context, jobID string) error {
	return c.write(ctx, "apply for job", request{
		method: http.MethodPost,
		route:  "/jobs/apply/:id",
		path:   "/jobs/apply/" + url.PathEscape(jobID),
		body:   struct{}{},
		auth:   true,
	}, nil)
}

// MyApplications lists the applications of the signed-in job seeker.
func (c *Client) MyApplications(ctx context.Context) ([]models.Application, error) {
	return c.applications(ctx, "my applications", "/jobs/my-applications")
}

// EmployerApplications lists applications to the signed-in employer's jobs.
func (c *Client) EmployerApplications(ctx context.Context) ([]models.Application, error) {
	return c.applications(ctx, "employer applications", "/jobs/employer-applications")
}

func (c *Client) applications(ctx context.Context, op, path string) ([]models.Application, error) {
	var out wireApplications
	if err := c.read(ctx, op, request{method: http.MethodGet, route: path, path: path, auth: true}, &out); err != nil {
		return nil, err
	}
	apps := make([]models.Application, 0, len(out))
	for _, a := range out {
		apps = append(apps, a.model())
	}
	return apps, nil
}

// NewJob is the body of a job posting.
type NewJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobType     string `json:"jobType"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
}

// PostJob publishes a listing and returns the backend confirmation text.
func (c *Client) PostJob(ctx context.Context, job NewJob) (string, error) {
	var out messageResponse
	if err := c.write(ctx, "post job", request{
		method: http.MethodPost,
		route:  "/jobs/post",
		path:   "/jobs/post",
		body:   job,
		auth:   true,
	}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// MyJobs lists the signed-in employer's listings.
func (c *Client) MyJobs(ctx context.Context) ([]models.Job, error) {
	var out wireJobs
	if err := c.read(ctx, "my jobs", request{
		method: http.MethodGet,
		route:  "/jobs/my-jobs",
		path:   "/jobs/my-jobs",
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	return out.models(), nil
}

type applicationStatusBody struct {
	Status models.ApplicationStatus `json:"status"`
}

// UpdateApplicationStatus records the employer's decision and returns the
// status the backend stored.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (models.ApplicationStatus, error) {
	var out applicationStatusBody
	if err := c.write(ctx, "update application status", request{
		method: http.MethodPut,
		route:  "/jobs/application-status/:id",
		path:   "/jobs/application-status/" + url.PathEscape(applicationID),
		body:   applicationStatusBody{Status: status},
		auth:   true,
	}, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return status, nil
	}
	return out.Status, nil
}
