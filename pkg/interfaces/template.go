package interfaces

import (
	"io"
)

// TemplateRenderer renders named page templates with a data context.
type TemplateRenderer interface {
	Render(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data map[string]any, out ...io.Writer) (string, error)
	GlobalContext(data map[string]any) error
}
