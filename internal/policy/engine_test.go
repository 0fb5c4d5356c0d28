package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/models"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, "")
	require.NoError(t, err)

	cases := []struct {
		role   models.Role
		action string
		want   string
	}{
		{models.RoleJobSeeker, ActionJobsApply, DecisionAllow},
		{models.RoleEmployer, ActionJobsApply, DecisionDeny},
		{models.RoleEmployer, ActionJobsPost, DecisionAllow},
		{models.RoleJobSeeker, ActionJobsPost, DecisionDeny},
		{models.RoleJobSeeker, ActionJobsApplicationsUpdate, DecisionDeny},
		{models.RoleEmployer, ActionJobsApplicationsView, DecisionAllow},
		{models.RoleJobSeeker, "posts.create", DecisionAllow},
		{"", ActionJobsMine, DecisionDeny},
	}
	for _, tc := range cases {
		got, err := engine.Decide(ctx, tc.role, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s", tc.role, tc.action)
	}
}

func TestCheckWrapsForbidden(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	err = engine.Check(ctx, models.KindSend, models.RoleEmployer, ActionJobsApply)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.True(t, models.IsKind(err, models.KindSend))

	assert.NoError(t, engine.Check(ctx, models.KindSend, models.RoleJobSeeker, ActionJobsApply))
}

func TestLoadEngineFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.rego")
	require.NoError(t, os.WriteFile(path, []byte(`
package huntx.access

default decision = "deny"
`), 0o600))

	engine, err := LoadEngine(context.Background(), path)
	require.NoError(t, err)
	got, err := engine.Decide(context.Background(), models.RoleEmployer, "posts.create")
	require.NoError(t, err)
	assert.Equal(t, DecisionDeny, got)
}

func TestNewEngineRejectsBrokenPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package huntx.access\n decision = ")
	assert.Error(t, err)
}
