package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptDrivesPageControls(t *testing.T) {
	raw, err := fs.ReadFile(Static, "static/app.js")
	require.NoError(t, err)
	script := string(raw)

	for _, hook := range []string{
		`getElementById("sign-in")`,
		`getElementById("sign-in-form")`,
		`getElementById("editor-form")`,
		`querySelectorAll(".edit")`,
		`"/api/auth/login"`,
		`"/api/auth/oauth"`,
		`send("PUT", "/api/about"`,
		`send("PUT", "/api/skills"`,
		`send("POST", "/api/projects"`,
		`send("PUT", "/api/projects/"`,
		`"/image"`,
	} {
		assert.Contains(t, script, hook)
	}
}
