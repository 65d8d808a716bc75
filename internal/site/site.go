// Package site renders the public portfolio page from a Content Document by
// filling a page template at fixed CSS selectors.
package site

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/types"
)

//go:embed templates/index.html
var defaultTemplate []byte

// FallbackPhoto is shown when the profile has no photo.
const FallbackPhoto = "assets/img/profile.svg"

// Renderer fills a page template with document content.
type Renderer struct {
	template []byte
	md       goldmark.Markdown
}

// New returns a renderer for the template at path, or for the built-in page
// template when path is empty.
func New(templatePath string) (*Renderer, error) {
	tmpl := defaultTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("reading page template %s: %w", templatePath, err)
		}
		tmpl = data
	}
	return &Renderer{
		template: tmpl,
		md:       newMarkdown(),
	}, nil
}

// Render writes the filled page to w. Sections whose anchor element is
// missing from the template are skipped.
func (r *Renderer) Render(w io.Writer, doc *types.Document) error {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(r.template))
	if err != nil {
		return fmt.Errorf("parsing page template: %w", err)
	}

	doc = doc.Clone()
	if doc == nil {
		doc = content.Empty()
	}
	content.Normalize(doc)

	renderHome(page, doc.Profile)
	if err := r.renderAbout(page, doc.About); err != nil {
		return err
	}
	renderSkills(page, doc.Skills)
	renderExperience(page, doc.Experience)
	renderProjects(page, doc.Projects)
	renderProjectFilters(page, doc.Projects)
	if err := renderInsights(page, doc.Insights); err != nil {
		return err
	}
	renderEducation(page, doc.Education)
	renderCertifications(page, doc.Certifications)
	renderContact(page, doc.Contact)

	html, err := goquery.OuterHtml(page.Selection)
	if err != nil {
		return fmt.Errorf("serializing page: %w", err)
	}
	_, err = io.WriteString(w, html)
	return err
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(doc *types.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
