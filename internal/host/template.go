package host

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jcorbin/pohlang/internal/value"
)

// RenderTemplate executes the named html/template (loaded at construction
// time via WithTemplateDir) against data, converting data into plain
// Go values first so field/index access inside the template works the
// way render_template callers expect. The result comes back as an opaque
// "response" handle, same as html_response/json_response (§6).
func (s *Services) RenderTemplate(name string, data value.Value) (value.Value, error) {
	if s.templates == nil {
		return value.Value{}, fmt.Errorf("no templates loaded (use WithTemplateDir)")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, valueToJSONAny(data)); err != nil {
		return value.Value{}, err
	}
	return responseValue(http.StatusOK, buf.String(), "text/html; charset=utf-8"), nil
}
