package interfaces

import "io"

// TemplateRenderer resolves named templates and renders them with the
// supplied data. When an optional writer is provided the rendered output is
// additionally copied to it.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
