package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mounts.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadManifest(t *testing.T) {
	content := `# storage roles for the media container
media|Media files
backups|Backup archive

none|
`
	reqs, err := LoadManifest(writeTempManifest(t, content))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, Requirement{Role: "media", Description: "Media files"}, reqs[0])
	assert.Equal(t, Requirement{Role: "backups", Description: "Backup archive"}, reqs[1])
	assert.True(t, reqs[2].None())
}

func TestLoadManifest_OrderPreserved(t *testing.T) {
	content := "zeta|Z\nalpha|A\nmedia|M\n"
	reqs, err := LoadManifest(writeTempManifest(t, content))
	require.NoError(t, err)

	var roles []string
	for _, r := range reqs {
		roles = append(roles, r.Role)
	}
	assert.Equal(t, []string{"zeta", "alpha", "media"}, roles)
}

func TestLoadManifest_RoleLowercased(t *testing.T) {
	reqs, err := LoadManifest(writeTempManifest(t, "Media|Media files\n"))
	require.NoError(t, err)
	assert.Equal(t, "media", reqs[0].Role)
}

func TestLoadManifest_MissingDescription(t *testing.T) {
	reqs, err := LoadManifest(writeTempManifest(t, "media\n"))
	require.NoError(t, err)
	assert.Equal(t, Requirement{Role: "media"}, reqs[0])
}

func TestLoadManifest_EmptyRole(t *testing.T) {
	_, err := LoadManifest(writeTempManifest(t, "|orphaned description\n"))
	assert.Error(t, err)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.conf"))
	assert.Error(t, err)
}

func TestRequiredRoles(t *testing.T) {
	reqs := []Requirement{
		{Role: "media", Description: "Media files"},
		{Role: NoneRole},
		{Role: "backups", Description: "Backup archive"},
	}
	required := RequiredRoles(reqs)
	require.Len(t, required, 2)
	assert.Equal(t, "media", required[0].Role)
	assert.Equal(t, "backups", required[1].Role)
}
