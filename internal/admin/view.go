// Package admin serves the login-protected CRUD console. Each record type is
// described by a ModelView that knows its list columns, its form fields and
// how submitted values map onto service requests.
package admin

import (
	"context"
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/staticfiles"
)

// FieldKind selects the form widget for a field.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindTextarea    FieldKind = "textarea"
	KindPassword    FieldKind = "password"
	KindDate        FieldKind = "date"
	KindCheckbox    FieldKind = "checkbox"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
)

// ChoiceSource lists the options of a select field.
type ChoiceSource func(ctx context.Context) ([]staticfiles.Choice, error)

// FieldSpec declares one form field.
type FieldSpec struct {
	Name  string
	Label string
	Kind  FieldKind
	// Key fields identify the record and are read-only once it exists.
	Key     bool
	Choices ChoiceSource
}

// Column declares one list column.
type Column[T any] struct {
	Label string
	Value func(T) string
}

// Row is a rendered list entry.
type Row struct {
	Key   string
	Cells []string
}

// FormChoice is a rendered select option.
type FormChoice struct {
	Value    string
	Label    string
	Selected bool
}

// FormField is a rendered form field.
type FormField struct {
	Name     string
	Label    string
	Kind     string
	Value    string
	Checked  bool
	ReadOnly bool
	Choices  []FormChoice
	Error    string
}

// ModelView is the console's view of one record type.
type ModelView interface {
	Name() string
	Title() string
	Columns() []string
	Count(ctx context.Context) (int, error)
	Rows(ctx context.Context) ([]Row, error)
	// Values returns the form values of the record at key, or the defaults
	// of a new record when key is empty.
	Values(ctx context.Context, key string) (url.Values, error)
	Fields(ctx context.Context, values url.Values, isNew bool, errs map[string]string) ([]FormField, error)
	// Save validates values and creates or updates the record, returning
	// its key.
	Save(ctx context.Context, key string, values url.Values) (string, error)
	Delete(ctx context.Context, key string) error
}

// ViewConfig wires a View. Update is called with the key of an existing
// record, Create with an empty one.
type ViewConfig[T any] struct {
	Name     string
	Title    string
	Columns  []Column[T]
	Fields   []FieldSpec
	List     func(ctx context.Context) ([]T, error)
	Get      func(ctx context.Context, key string) (T, error)
	Key      func(T) string
	Values   func(T) url.Values
	Defaults func() url.Values
	Validate func(values url.Values, isNew bool) error
	Create   func(ctx context.Context, values url.Values) (T, error)
	Update   func(ctx context.Context, key string, values url.Values) (T, error)
	Delete   func(ctx context.Context, key string) error
}

// View is a ModelView over records of type T.
type View[T any] struct {
	cfg ViewConfig[T]
}

var _ ModelView = (*View[any])(nil)

// NewView builds a View from cfg.
func NewView[T any](cfg ViewConfig[T]) *View[T] {
	return &View[T]{cfg: cfg}
}

func (v *View[T]) Name() string  { return v.cfg.Name }
func (v *View[T]) Title() string { return v.cfg.Title }

func (v *View[T]) Columns() []string {
	out := make([]string, 0, len(v.cfg.Columns))
	for _, col := range v.cfg.Columns {
		out = append(out, col.Label)
	}
	return out
}

func (v *View[T]) Count(ctx context.Context) (int, error) {
	records, err := v.cfg.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (v *View[T]) Rows(ctx context.Context) ([]Row, error) {
	records, err := v.cfg.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := Row{Key: v.cfg.Key(record), Cells: make([]string, 0, len(v.cfg.Columns))}
		for _, col := range v.cfg.Columns {
			row.Cells = append(row.Cells, col.Value(record))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (v *View[T]) Values(ctx context.Context, key string) (url.Values, error) {
	if key == "" {
		if v.cfg.Defaults == nil {
			return url.Values{}, nil
		}
		return v.cfg.Defaults(), nil
	}
	record, err := v.cfg.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return v.cfg.Values(record), nil
}

func (v *View[T]) Fields(ctx context.Context, values url.Values, isNew bool, errs map[string]string) ([]FormField, error) {
	fields := make([]FormField, 0, len(v.cfg.Fields))
	for _, def := range v.cfg.Fields {
		field := FormField{
			Name:     def.Name,
			Label:    def.Label,
			Kind:     string(def.Kind),
			Value:    values.Get(def.Name),
			ReadOnly: def.Key && !isNew,
			Error:    errs[def.Name],
		}
		if def.Kind == KindCheckbox {
			field.Checked = checked(field.Value)
		}
		if def.Kind == KindPassword {
			field.Value = ""
		}
		if def.Choices != nil {
			choices, err := def.Choices(ctx)
			if err != nil {
				return nil, err
			}
			selected := values[def.Name]
			for _, choice := range choices {
				field.Choices = append(field.Choices, FormChoice{
					Value:    choice.Value,
					Label:    choice.Label,
					Selected: contains(selected, choice.Value),
				})
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (v *View[T]) Save(ctx context.Context, key string, values url.Values) (string, error) {
	isNew := key == ""
	if v.cfg.Validate != nil {
		if err := v.cfg.Validate(values, isNew); err != nil {
			return "", err
		}
	}
	var (
		record T
		err    error
	)
	if isNew {
		record, err = v.cfg.Create(ctx, values)
	} else {
		record, err = v.cfg.Update(ctx, key, values)
	}
	if err != nil {
		return "", err
	}
	return v.cfg.Key(record), nil
}

func (v *View[T]) Delete(ctx context.Context, key string) error {
	return v.cfg.Delete(ctx, key)
}

// fieldErrors flattens ozzo validation errors into field -> message.
func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			out[field] = fieldErr.Error()
		}
	}
	return out
}

func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
