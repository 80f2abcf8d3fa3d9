// Package markdown renders post and profile Markdown to HTML and imports
// Markdown files with front matter as blog posts.
package markdown
