package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrTemplateNotFound indicates the named template is absent from the theme.
var ErrTemplateNotFound = errors.New("render: template not found")

// TemplateNotFoundError carries the missing template name and search root.
type TemplateNotFoundError struct {
	Name    string
	BaseDir string
}

func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return ErrTemplateNotFound.Error()
	}
	if strings.TrimSpace(e.BaseDir) != "" {
		return fmt.Sprintf("%s: %q in %s", ErrTemplateNotFound.Error(), e.Name, e.BaseDir)
	}
	return fmt.Sprintf("%s: %q", ErrTemplateNotFound.Error(), e.Name)
}

func (e *TemplateNotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}

// NewTemplateRenderer returns a TemplateRenderer backed by html/template,
// loading every .html/.tmpl file under baseDir. Template names are their
// base file names, matching html/template's ParseFiles behaviour.
func NewTemplateRenderer(baseDir string) (interfaces.TemplateRenderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("render: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("render: template path %q is not a directory", baseDir)
	}
	return &goTemplateRenderer{baseDir: baseDir, fsys: os.DirFS(baseDir)}, nil
}

// NewTemplateRendererFS is the fs.FS variant of NewTemplateRenderer, used by
// tests and embedded themes.
func NewTemplateRendererFS(fsys fs.FS) interfaces.TemplateRenderer {
	return &goTemplateRenderer{fsys: fsys}
}

type goTemplateRenderer struct {
	baseDir string
	fsys    fs.FS
	once    sync.Once
	tpl     *template.Template
	err     error
}

func (r *goTemplateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		var files []string
		err := fs.WalkDir(r.fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".html" && ext != ".tmpl" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			r.err = err
			return
		}
		if len(files) == 0 {
			r.err = fmt.Errorf("render: no templates found in %s", r.baseDir)
			return
		}

		r.tpl, r.err = template.New("press-theme").Funcs(templateFuncs()).ParseFS(r.fsys, files...)
	})
	return r.tpl, r.err
}

func (r *goTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *goTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", &TemplateNotFoundError{Name: name, BaseDir: r.baseDir}
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *goTemplateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(templateFuncs()).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value any) template.HTML { return toHTML(value) },
		"lower":    strings.ToLower,
	}
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	case []byte:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
