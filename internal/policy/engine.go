package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"huntx-client/internal/models"
)

// Actions checked against the role policy.
const (
	ActionJobsApply              = "jobs.apply"
	ActionJobsPost               = "jobs.post"
	ActionJobsMine               = "jobs.mine"
	ActionJobsApplicationsView   = "jobs.applications.view"
	ActionJobsApplicationsUpdate = "jobs.applications.update"
)

const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Engine evaluates which role may perform which action.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares policyContent. An empty policy uses DefaultPolicy.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	if policyContent == "" {
		policyContent = DefaultPolicy
	}
	r := rego.New(
		rego.Query("data.huntx.access.decision"),
		rego.Module("huntx_access.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// LoadEngine reads the policy from path, or uses DefaultPolicy when path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return NewEngine(ctx, string(content))
}

// Decide returns the decision for role performing action.
func (e *Engine) Decide(ctx context.Context, role models.Role, action string) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"role":   string(role),
		"action": action,
	}))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}
	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionDeny, nil
}

// Check returns ErrForbidden wrapped as kind when role may not perform action.
func (e *Engine) Check(ctx context.Context, kind models.ErrorKind, role models.Role, action string) error {
	decision, err := e.Decide(ctx, role, action)
	if err != nil {
		return models.NewError(kind, action, err)
	}
	if decision != DecisionAllow {
		return models.Errorf(kind, action, models.ErrForbidden, "%s may not perform %s", roleName(role), action)
	}
	return nil
}

func roleName(r models.Role) string {
	if r == "" {
		return "anonymous user"
	}
	return string(r)
}

// DefaultPolicy restricts applying to job seekers and hiring actions to employers.
const DefaultPolicy = `
package huntx.access

default decision = "allow"

employer_only = {"jobs.post", "jobs.mine", "jobs.applications.view", "jobs.applications.update"}

decision = "deny" {
	input.action == "jobs.apply"
	input.role != "Job Seeker"
}

decision = "deny" {
	employer_only[input.action]
	input.role != "Employer"
}
`
