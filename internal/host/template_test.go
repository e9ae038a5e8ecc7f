package host_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/value"
)

func Test_RenderTemplate_ExecutesNamedTemplateAgainstData(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.html")
	require.NoError(t, os.WriteFile(tmplPath, []byte(`{{define "greeting.html"}}Hello {{.name}}{{end}}`), 0o644))

	s := host.New(host.WithTemplateDir(dir))

	d := value.NewDict()
	d.Set("name", value.Str("Ada"))
	resp, err := s.RenderTemplate("greeting.html", value.DictV(d))
	require.NoError(t, err)

	require.Equal(t, value.Handle, resp.Kind)
	assert.Equal(t, "response", resp.Hdl.Kind)
}

func Test_RenderTemplate_WithoutTemplateDirIsError(t *testing.T) {
	s := host.New()
	_, err := s.RenderTemplate("anything.html", value.NullV())
	assert.Error(t, err)
}
