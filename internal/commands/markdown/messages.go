package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importMarkdownMessageType    = "blog.markdown.import"
	reconvertMarkdownMessageType = "blog.markdown.reconvert"
)

// ImportMarkdownCommand turns the Markdown files under Directory into posts.
type ImportMarkdownCommand struct {
	// Directory is the filesystem path to read documents from.
	Directory string `json:"directory"`
	// Author is used for documents whose front matter names none.
	Author string `json:"author,omitempty"`
	// DryRun reports the outcome without writing.
	DryRun bool `json:"dry_run,omitempty"`
	// Update overwrites posts whose slug already exists.
	Update bool `json:"update,omitempty"`
}

// Type implements command.Message.
func (ImportMarkdownCommand) Type() string { return importMarkdownMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.import.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

// ReconvertMarkdownCommand re-renders every stored post body and user about
// text from its Markdown source.
type ReconvertMarkdownCommand struct{}

// Type implements command.Message.
func (ReconvertMarkdownCommand) Type() string { return reconvertMarkdownMessageType }

func (ReconvertMarkdownCommand) Validate() error { return nil }
