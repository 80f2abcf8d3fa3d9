// Package models defines the records persisted by the blog.
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User authors posts and owns service links. The shortname doubles as the
// login handle.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Shortname     string `bun:"shortname,pk"          json:"shortname"`
	Name          string `bun:"name,notnull"          json:"name"`
	URL           string `bun:"url,nullzero"          json:"url,omitempty"`
	AboutMarkdown string `bun:"about_md,nullzero"     json:"about_md,omitempty"`
	AboutHTML     string `bun:"about_html,nullzero"   json:"about_html,omitempty"`
	CSSFile       string `bun:"css_file,nullzero"     json:"css_file,omitempty"`
	JSFile        string `bun:"js_file,nullzero"      json:"js_file,omitempty"`
	PasswordHash  string `bun:"password_hash,notnull" json:"-"`

	Posts    []*Post    `bun:"rel:has-many,join:shortname=user_shortname" json:"posts,omitempty"`
	Services []*Service `bun:"rel:has-many,join:shortname=user_shortname" json:"services,omitempty"`
}

func (u *User) String() string {
	if u == nil {
		return ""
	}
	return u.Name
}

// Post is a dated article written in Markdown and stored alongside its HTML.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	Slug          string    `bun:"slug,pk"                  json:"slug"`
	Date          time.Time `bun:"date,notnull"             json:"date"`
	Title         string    `bun:"title,notnull"            json:"title"`
	Lead          string    `bun:"lead,nullzero"            json:"lead,omitempty"`
	BodyMarkdown  string    `bun:"body_md,nullzero"         json:"body_md,omitempty"`
	BodyHTML      string    `bun:"body_html,nullzero"       json:"body_html,omitempty"`
	CSSFile       string    `bun:"css_file,nullzero"        json:"css_file,omitempty"`
	JSFile        string    `bun:"js_file,nullzero"         json:"js_file,omitempty"`
	UserShortname string    `bun:"user_shortname,notnull"   json:"user_shortname"`

	User *User  `bun:"rel:belongs-to,join:user_shortname=shortname" json:"user,omitempty"`
	Tags []*Tag `bun:"m2m:post_tags,join:Post=Tag"                  json:"tags,omitempty"`
}

func (p *Post) String() string {
	if p == nil {
		return ""
	}
	return p.Title
}

// TagSlugs returns the slugs of the tags attached to the post.
func (p *Post) TagSlugs() []string {
	if p == nil || len(p.Tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if tag != nil {
			out = append(out, tag.Slug)
		}
	}
	return out
}

// Tag groups posts under a shared label.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	Slug string `bun:"slug,pk"       json:"slug"`
	Name string `bun:"name,notnull"  json:"name"`

	Posts []*Post `bun:"m2m:post_tags,join:Tag=Post" json:"posts,omitempty"`
}

func (t *Tag) String() string {
	if t == nil {
		return ""
	}
	return t.Name
}

// PostTag links posts and tags.
type PostTag struct {
	bun.BaseModel `bun:"table:post_tags,alias:pt"`

	PostSlug string `bun:"post_slug,pk" json:"post_slug"`
	Post     *Post  `bun:"rel:belongs-to,join:post_slug=slug" json:"-"`
	TagSlug  string `bun:"tag_slug,pk"  json:"tag_slug"`
	Tag      *Tag   `bun:"rel:belongs-to,join:tag_slug=slug" json:"-"`
}

// Service is an external profile link shown next to a user's posts.
type Service struct {
	bun.BaseModel `bun:"table:services,alias:s"`

	ID            int64  `bun:"id,pk,autoincrement"    json:"id"`
	Name          string `bun:"name,notnull"           json:"name"`
	IconFile      string `bun:"icon_file,nullzero"     json:"icon_file,omitempty"`
	URL           string `bun:"url,notnull"            json:"url"`
	AltText       string `bun:"alt_text,nullzero"      json:"alt_text,omitempty"`
	CSSClass      string `bun:"css_class,nullzero"     json:"css_class,omitempty"`
	UserShortname string `bun:"user_shortname,notnull" json:"user_shortname"`

	User *User `bun:"rel:belongs-to,join:user_shortname=shortname" json:"user,omitempty"`
}

func (s *Service) String() string {
	if s == nil {
		return ""
	}
	owner := s.UserShortname
	if s.User != nil {
		owner = s.User.String()
	}
	return owner + " @ " + s.Name
}

// Today returns the current UTC calendar date at midnight.
func Today(now time.Time) time.Time {
	return DateOnly(now)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
