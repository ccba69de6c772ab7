package web

import (
	"io/fs"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	User    any
	Flashes []struct{ Category, Message string }
	Form    map[string]string
	Next    string
}

func TestRenderer_RendersEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range pages {
		rec := httptest.NewRecorder()
		data := testPage{
			Flashes: []struct{ Category, Message string }{{"info", "<hello>"}},
			Form:    map[string]string{"username": "alice"},
		}
		require.NoError(t, r.Instance(name, data).Render(rec), name)

		body := rec.Body.String()
		assert.Contains(t, body, "<!DOCTYPE html>", name)
		assert.Contains(t, body, "&lt;hello&gt;", name)
	}
}

func TestRenderer_LoginKeepsNext(t *testing.T) {
	r := MustRenderer()
	rec := httptest.NewRecorder()
	require.NoError(t, r.Instance("login", testPage{Next: "/tasks"}).Render(rec))
	assert.Contains(t, rec.Body.String(), `name="next" value="/tasks"`)
}

func TestStatic_ContainsTaskScript(t *testing.T) {
	_, err := fs.Stat(Static(), "js/tasks.js")
	assert.NoError(t, err)
}

func TestStaticFiles_RefusesDirectories(t *testing.T) {
	files := StaticFiles()

	f, err := files.Open("/js/tasks.js")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	for _, dir := range []string{"/", "/js", "/css"} {
		_, err := files.Open(dir)
		assert.ErrorIs(t, err, fs.ErrNotExist, dir)
	}
}
