package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/signin", func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.Password != "pw" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": "tok", "role": "Employer", "userId": "u1", "name": "Ann"})
	})
	r.GET("/api/jobs/list", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"jobs":  []gin.H{{"_id": "j1", "title": "Go developer", "company": "Acme", "location": "Remote"}},
			"total": 1,
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`api:
  base_url: %s
  timeout: 5s
realtime:
  initial_backoff: 10ms
  max_backoff: 50ms
storage:
  driver: sqlite3
  dsn: %s
telemetry:
  service_name: huntx-client-test
  environment: test
`, baseURL, filepath.Join(dir, "state.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(bytes.NewBufferString(""))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSignInPersistsAcrossRuns(t *testing.T) {
	cfgPath := writeConfig(t, newBackend(t).URL)

	out, err := execute(t, cfgPath, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = execute(t, cfgPath, "signin", "--email", "ann@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ann (Employer)")

	out, err = execute(t, cfgPath, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "u1")
	assert.Contains(t, out, "Employer")

	_, err = execute(t, cfgPath, "signout")
	require.NoError(t, err)
	out, err = execute(t, cfgPath, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestSignInWrongPassword(t *testing.T) {
	cfgPath := writeConfig(t, newBackend(t).URL)

	_, err := execute(t, cfgPath, "signin", "--email", "ann@example.com", "--password", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestThemeToggleIsRemembered(t *testing.T) {
	cfgPath := writeConfig(t, newBackend(t).URL)

	out, err := execute(t, cfgPath, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = execute(t, cfgPath, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)
}

func TestJobsListPrintsPage(t *testing.T) {
	cfgPath := writeConfig(t, newBackend(t).URL)

	out, err := execute(t, cfgPath, "jobs", "list", "--search", "go")

	require.NoError(t, err)
	assert.Contains(t, out, "Go developer")
	assert.Contains(t, out, "page 1 of 1 (1 jobs)")
}

func TestConversationsSendRequiresSession(t *testing.T) {
	cfgPath := writeConfig(t, newBackend(t).URL)

	_, err := execute(t, cfgPath, "conversations", "send", "C42", "Hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}
