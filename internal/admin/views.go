package admin

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/servicelinks"
	"github.com/goliatone/go-blog/internal/staticfiles"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Sources are the services the default views read and write.
type Sources struct {
	Users   users.Service
	Posts   posts.Service
	Tags    tags.Service
	Links   servicelinks.Service
	Catalog *staticfiles.Catalog
	Now     func() time.Time
}

// DefaultViews returns the users, posts, tags and services views.
func DefaultViews(src Sources) []ModelView {
	if src.Now == nil {
		src.Now = time.Now
	}
	return []ModelView{
		UsersView(src),
		PostsView(src),
		TagsView(src),
		ServicesView(src),
	}
}

type userForm struct {
	Shortname     string `json:"shortname"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	AboutMarkdown string `json:"about_md"`
	AboutHTML     string `json:"about_html"`
	CSSFile       string `json:"css_file"`
	JSFile        string `json:"js_file"`
	Password      string `json:"password"`
	Convert       bool   `json:"convert"`
}

func userFormFrom(values url.Values) userForm {
	return userForm{
		Shortname:     strings.TrimSpace(values.Get("shortname")),
		Name:          strings.TrimSpace(values.Get("name")),
		URL:           strings.TrimSpace(values.Get("url")),
		AboutMarkdown: values.Get("about_md"),
		AboutHTML:     values.Get("about_html"),
		CSSFile:       values.Get("css_file"),
		JSFile:        values.Get("js_file"),
		Password:      values.Get("password"),
		Convert:       checked(values.Get("convert")),
	}
}

func (f userForm) validate(isNew bool) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Shortname, validation.When(isNew, validation.Required)),
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.URL, is.URL),
		validation.Field(&f.Password, validation.When(isNew, validation.Required)),
	)
}

// UsersView lists and edits users. The password is only replaced when a new
// one is entered.
func UsersView(src Sources) *View[*models.User] {
	return NewView(ViewConfig[*models.User]{
		Name:  "users",
		Title: "Users",
		Columns: []Column[*models.User]{
			{Label: "Shortname", Value: func(u *models.User) string { return u.Shortname }},
			{Label: "Name", Value: func(u *models.User) string { return u.Name }},
			{Label: "URL", Value: func(u *models.User) string { return u.URL }},
			{Label: "CSS file", Value: func(u *models.User) string { return u.CSSFile }},
			{Label: "JS file", Value: func(u *models.User) string { return u.JSFile }},
		},
		Fields: []FieldSpec{
			{Name: "shortname", Label: "Shortname", Kind: KindText, Key: true},
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "url", Label: "URL", Kind: KindText},
			{Name: "convert", Label: "Convert Markdown to HTML", Kind: KindCheckbox},
			{Name: "about_md", Label: "About (Markdown)", Kind: KindTextarea},
			{Name: "about_html", Label: "About (HTML)", Kind: KindTextarea},
			{Name: "css_file", Label: "CSS file", Kind: KindSelect, Choices: assetChoices(src.Catalog, staticfiles.DirCSS)},
			{Name: "js_file", Label: "JS file", Kind: KindSelect, Choices: assetChoices(src.Catalog, staticfiles.DirJS)},
			{Name: "password", Label: "Password", Kind: KindPassword},
		},
		List: src.Users.List,
		Get:  src.Users.Get,
		Key:  func(u *models.User) string { return u.Shortname },
		Values: func(u *models.User) url.Values {
			return url.Values{
				"shortname":  {u.Shortname},
				"name":       {u.Name},
				"url":        {u.URL},
				"about_md":   {u.AboutMarkdown},
				"about_html": {u.AboutHTML},
				"css_file":   {u.CSSFile},
				"js_file":    {u.JSFile},
			}
		},
		Defaults: func() url.Values { return url.Values{"convert": {"y"}} },
		Validate: func(values url.Values, isNew bool) error {
			return userFormFrom(values).validate(isNew)
		},
		Create: func(ctx context.Context, values url.Values) (*models.User, error) {
			f := userFormFrom(values)
			return src.Users.Create(ctx, users.CreateUserRequest{
				Shortname:     f.Shortname,
				Name:          f.Name,
				URL:           f.URL,
				AboutMarkdown: f.AboutMarkdown,
				AboutHTML:     f.AboutHTML,
				CSSFile:       f.CSSFile,
				JSFile:        f.JSFile,
				Password:      f.Password,
				Convert:       f.Convert,
			})
		},
		Update: func(ctx context.Context, key string, values url.Values) (*models.User, error) {
			f := userFormFrom(values)
			return src.Users.Update(ctx, users.UpdateUserRequest{
				Shortname:     key,
				Name:          f.Name,
				URL:           f.URL,
				AboutMarkdown: f.AboutMarkdown,
				AboutHTML:     f.AboutHTML,
				CSSFile:       f.CSSFile,
				JSFile:        f.JSFile,
				Password:      f.Password,
				Convert:       f.Convert,
			})
		},
		Delete: src.Users.Delete,
	})
}

type postForm struct {
	Slug          string   `json:"slug"`
	Date          string   `json:"date"`
	Title         string   `json:"title"`
	Lead          string   `json:"lead"`
	BodyMarkdown  string   `json:"body_md"`
	BodyHTML      string   `json:"body_html"`
	CSSFile       string   `json:"css_file"`
	JSFile        string   `json:"js_file"`
	Tags          []string `json:"tags"`
	UserShortname string   `json:"user"`
	Convert       bool     `json:"convert"`
}

func postFormFrom(values url.Values) postForm {
	return postForm{
		Slug:          strings.TrimSpace(values.Get("slug")),
		Date:          strings.TrimSpace(values.Get("date")),
		Title:         strings.TrimSpace(values.Get("title")),
		Lead:          values.Get("lead"),
		BodyMarkdown:  values.Get("body_md"),
		BodyHTML:      values.Get("body_html"),
		CSSFile:       values.Get("css_file"),
		JSFile:        values.Get("js_file"),
		Tags:          nonEmpty(values["tags"]),
		UserShortname: strings.TrimSpace(values.Get("user")),
		Convert:       checked(values.Get("convert")),
	}
}

func (f postForm) validate(isNew bool) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Slug, validation.When(isNew, validation.Required)),
		validation.Field(&f.Date, validation.Date(DateLayout)),
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.UserShortname, validation.Required),
	)
}

// date returns the parsed date, zero when blank. validate has already
// rejected malformed input.
func (f postForm) date() time.Time {
	if f.Date == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// PostsView lists and edits posts.
func PostsView(src Sources) *View[*models.Post] {
	return NewView(ViewConfig[*models.Post]{
		Name:  "posts",
		Title: "Posts",
		Columns: []Column[*models.Post]{
			{Label: "Slug", Value: func(p *models.Post) string { return p.Slug }},
			{Label: "Date", Value: func(p *models.Post) string { return p.Date.Format(DateLayout) }},
			{Label: "Title", Value: func(p *models.Post) string { return p.Title }},
			{Label: "CSS file", Value: func(p *models.Post) string { return p.CSSFile }},
			{Label: "JS file", Value: func(p *models.Post) string { return p.JSFile }},
			{Label: "Tags", Value: func(p *models.Post) string { return strings.Join(tagNames(p.Tags), ", ") }},
			{Label: "User", Value: func(p *models.Post) string {
				if p.User != nil {
					return p.User.String()
				}
				return p.UserShortname
			}},
		},
		Fields: []FieldSpec{
			{Name: "slug", Label: "Slug", Kind: KindText, Key: true},
			{Name: "date", Label: "Date", Kind: KindDate},
			{Name: "title", Label: "Title", Kind: KindText},
			{Name: "lead", Label: "Lead", Kind: KindTextarea},
			{Name: "body_md", Label: "Body (Markdown)", Kind: KindTextarea},
			{Name: "convert", Label: "Convert Markdown to HTML", Kind: KindCheckbox},
			{Name: "body_html", Label: "Body (HTML)", Kind: KindTextarea},
			{Name: "css_file", Label: "CSS file", Kind: KindSelect, Choices: assetChoices(src.Catalog, staticfiles.DirCSS)},
			{Name: "js_file", Label: "JS file", Kind: KindSelect, Choices: assetChoices(src.Catalog, staticfiles.DirJS)},
			{Name: "tags", Label: "Tags", Kind: KindMultiSelect, Choices: tagChoices(src.Tags)},
			{Name: "user", Label: "User", Kind: KindSelect, Choices: userChoices(src.Users)},
		},
		List: src.Posts.List,
		Get:  src.Posts.Get,
		Key:  func(p *models.Post) string { return p.Slug },
		Values: func(p *models.Post) url.Values {
			return url.Values{
				"slug":      {p.Slug},
				"date":      {p.Date.Format(DateLayout)},
				"title":     {p.Title},
				"lead":      {p.Lead},
				"body_md":   {p.BodyMarkdown},
				"body_html": {p.BodyHTML},
				"css_file":  {p.CSSFile},
				"js_file":   {p.JSFile},
				"tags":      p.TagSlugs(),
				"user":      {p.UserShortname},
			}
		},
		Defaults: func() url.Values {
			return url.Values{
				"date":    {models.Today(src.Now()).Format(DateLayout)},
				"convert": {"y"},
			}
		},
		Validate: func(values url.Values, isNew bool) error {
			return postFormFrom(values).validate(isNew)
		},
		Create: func(ctx context.Context, values url.Values) (*models.Post, error) {
			f := postFormFrom(values)
			return src.Posts.Create(ctx, posts.CreatePostRequest{
				Slug:          f.Slug,
				Date:          f.date(),
				Title:         f.Title,
				Lead:          f.Lead,
				BodyMarkdown:  f.BodyMarkdown,
				BodyHTML:      f.BodyHTML,
				CSSFile:       f.CSSFile,
				JSFile:        f.JSFile,
				UserShortname: f.UserShortname,
				Tags:          f.Tags,
				Convert:       f.Convert,
			})
		},
		Update: func(ctx context.Context, key string, values url.Values) (*models.Post, error) {
			f := postFormFrom(values)
			return src.Posts.Update(ctx, posts.UpdatePostRequest{
				Slug:          key,
				Date:          f.date(),
				Title:         f.Title,
				Lead:          f.Lead,
				BodyMarkdown:  f.BodyMarkdown,
				BodyHTML:      f.BodyHTML,
				CSSFile:       f.CSSFile,
				JSFile:        f.JSFile,
				UserShortname: f.UserShortname,
				Tags:          f.Tags,
				Convert:       f.Convert,
			})
		},
		Delete: src.Posts.Delete,
	})
}

type tagForm struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func tagFormFrom(values url.Values) tagForm {
	return tagForm{
		Slug: strings.TrimSpace(values.Get("slug")),
		Name: strings.TrimSpace(values.Get("name")),
	}
}

func (f tagForm) validate(isNew bool) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Slug, validation.When(isNew, validation.Required)),
		validation.Field(&f.Name, validation.Required),
	)
}

// TagsView lists and edits tags.
func TagsView(src Sources) *View[*models.Tag] {
	return NewView(ViewConfig[*models.Tag]{
		Name:  "tags",
		Title: "Tags",
		Columns: []Column[*models.Tag]{
			{Label: "Slug", Value: func(t *models.Tag) string { return t.Slug }},
			{Label: "Name", Value: func(t *models.Tag) string { return t.Name }},
		},
		Fields: []FieldSpec{
			{Name: "slug", Label: "Slug", Kind: KindText, Key: true},
			{Name: "name", Label: "Name", Kind: KindText},
		},
		List: src.Tags.List,
		Get:  src.Tags.Get,
		Key:  func(t *models.Tag) string { return t.Slug },
		Values: func(t *models.Tag) url.Values {
			return url.Values{"slug": {t.Slug}, "name": {t.Name}}
		},
		Validate: func(values url.Values, isNew bool) error {
			return tagFormFrom(values).validate(isNew)
		},
		Create: func(ctx context.Context, values url.Values) (*models.Tag, error) {
			f := tagFormFrom(values)
			return src.Tags.Create(ctx, tags.CreateTagRequest{Slug: f.Slug, Name: f.Name})
		},
		Update: func(ctx context.Context, key string, values url.Values) (*models.Tag, error) {
			f := tagFormFrom(values)
			return src.Tags.Update(ctx, tags.UpdateTagRequest{Slug: key, Name: f.Name})
		},
		Delete: src.Tags.Delete,
	})
}

type serviceForm struct {
	Name          string `json:"name"`
	IconFile      string `json:"icon_file"`
	AltText       string `json:"alt_text"`
	CSSClass      string `json:"css_class"`
	UserShortname string `json:"user"`
	URL           string `json:"url"`
}

func serviceFormFrom(values url.Values) serviceForm {
	return serviceForm{
		Name:          strings.TrimSpace(values.Get("name")),
		IconFile:      values.Get("icon_file"),
		AltText:       strings.TrimSpace(values.Get("alt_text")),
		CSSClass:      strings.TrimSpace(values.Get("css_class")),
		UserShortname: strings.TrimSpace(values.Get("user")),
		URL:           strings.TrimSpace(values.Get("url")),
	}
}

func (f serviceForm) validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.UserShortname, validation.Required),
		validation.Field(&f.URL, validation.Required, is.URL),
	)
}

func (f serviceForm) update(id int64) servicelinks.UpdateServiceRequest {
	return servicelinks.UpdateServiceRequest{
		ID:            id,
		Name:          f.Name,
		IconFile:      f.IconFile,
		URL:           f.URL,
		AltText:       f.AltText,
		CSSClass:      f.CSSClass,
		UserShortname: f.UserShortname,
	}
}

// ServicesView lists and edits service links. Their key is the numeric id.
func ServicesView(src Sources) *View[*models.Service] {
	return NewView(ViewConfig[*models.Service]{
		Name:  "services",
		Title: "Services",
		Columns: []Column[*models.Service]{
			{Label: "Name", Value: func(s *models.Service) string { return s.Name }},
			{Label: "Icon file", Value: func(s *models.Service) string { return s.IconFile }},
			{Label: "Alt text", Value: func(s *models.Service) string { return s.AltText }},
			{Label: "CSS class", Value: func(s *models.Service) string { return s.CSSClass }},
			{Label: "User", Value: func(s *models.Service) string {
				if s.User != nil {
					return s.User.String()
				}
				return s.UserShortname
			}},
			{Label: "URL", Value: func(s *models.Service) string { return s.URL }},
		},
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "icon_file", Label: "Icon file", Kind: KindSelect, Choices: assetChoices(src.Catalog, staticfiles.DirImages)},
			{Name: "alt_text", Label: "Alt text", Kind: KindText},
			{Name: "css_class", Label: "CSS class", Kind: KindText},
			{Name: "user", Label: "User", Kind: KindSelect, Choices: userChoices(src.Users)},
			{Name: "url", Label: "URL", Kind: KindText},
		},
		List: src.Links.List,
		Get: func(ctx context.Context, key string) (*models.Service, error) {
			id, err := parseServiceID(key)
			if err != nil {
				return nil, err
			}
			return src.Links.Get(ctx, id)
		},
		Key: func(s *models.Service) string { return strconv.FormatInt(s.ID, 10) },
		Values: func(s *models.Service) url.Values {
			return url.Values{
				"name":      {s.Name},
				"icon_file": {s.IconFile},
				"alt_text":  {s.AltText},
				"css_class": {s.CSSClass},
				"user":      {s.UserShortname},
				"url":       {s.URL},
			}
		},
		Validate: func(values url.Values, _ bool) error {
			return serviceFormFrom(values).validate()
		},
		Create: func(ctx context.Context, values url.Values) (*models.Service, error) {
			req := serviceFormFrom(values).update(0)
			return src.Links.Create(ctx, servicelinks.CreateServiceRequest{
				Name:          req.Name,
				IconFile:      req.IconFile,
				URL:           req.URL,
				AltText:       req.AltText,
				CSSClass:      req.CSSClass,
				UserShortname: req.UserShortname,
			})
		},
		Update: func(ctx context.Context, key string, values url.Values) (*models.Service, error) {
			id, err := parseServiceID(key)
			if err != nil {
				return nil, err
			}
			return src.Links.Update(ctx, serviceFormFrom(values).update(id))
		},
		Delete: func(ctx context.Context, key string) error {
			id, err := parseServiceID(key)
			if err != nil {
				return err
			}
			return src.Links.Delete(ctx, id)
		},
	})
}

func parseServiceID(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.NotFoundError{Resource: "service", Key: key}
	}
	return id, nil
}

func assetChoices(catalog *staticfiles.Catalog, dir string) ChoiceSource {
	return func(context.Context) ([]staticfiles.Choice, error) {
		if catalog == nil {
			return []staticfiles.Choice{{}}, nil
		}
		return catalog.Choices(dir)
	}
}

func userChoices(svc users.Service) ChoiceSource {
	return func(ctx context.Context) ([]staticfiles.Choice, error) {
		list, err := svc.List(ctx)
		if err != nil {
			return nil, err
		}
		choices := make([]staticfiles.Choice, 0, len(list))
		for _, user := range list {
			choices = append(choices, staticfiles.Choice{Value: user.Shortname, Label: user.Name})
		}
		return choices, nil
	}
}

func tagChoices(svc tags.Service) ChoiceSource {
	return func(ctx context.Context) ([]staticfiles.Choice, error) {
		list, err := svc.List(ctx)
		if err != nil {
			return nil, err
		}
		choices := make([]staticfiles.Choice, 0, len(list))
		for _, tag := range list {
			choices = append(choices, staticfiles.Choice{Value: tag.Slug, Label: tag.Name})
		}
		return choices, nil
	}
}

func tagNames(list []*models.Tag) []string {
	out := make([]string, 0, len(list))
	for _, tag := range list {
		if tag != nil {
			out = append(out, tag.Name)
		}
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
