package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/portfolio-admin/internal/types"
)

var esc = html.EscapeString

var whitespace = regexp.MustCompile(`\s+`)

// safeURL drops script URLs; everything else is left for the browser.
func safeURL(u string) string {
	trimmed := strings.ToLower(strings.TrimSpace(u))
	if strings.HasPrefix(trimmed, "javascript:") || strings.HasPrefix(trimmed, "vbscript:") {
		return "#"
	}
	return u
}

// resumeFilename is the download name of an embedded PDF resume.
func resumeFilename(name string) string {
	if name == "" {
		name = "resume"
	}
	return whitespace.ReplaceAllString(name, "_") + ".pdf"
}

func renderHome(page *goquery.Document, p types.Profile) {
	page.Find(".hero-text h1").First().SetText(p.Name)
	page.Find(".headline").First().SetText(p.Headline)
	page.Find(".summary").First().SetText(p.Summary)

	resume := page.Find(".cta-row .btn.primary").First()
	resume.RemoveAttr("download")
	resume.SetAttr("href", safeURL(p.Resume))
	if strings.HasPrefix(p.Resume, "data:application/pdf") {
		resume.SetAttr("download", resumeFilename(p.Name))
	}

	img := page.Find("#profilePhoto")
	src := FallbackPhoto
	if strings.TrimSpace(p.Photo) != "" {
		src = safeURL(p.Photo)
	}
	img.SetAttr("src", src)
	img.SetAttr("onerror", "this.onerror=null;this.src='"+FallbackPhoto+"'")
	if p.Name != "" {
		img.SetAttr("alt", p.Name)
	}
}

func (r *Renderer) renderAbout(page *goquery.Document, a types.About) error {
	paras := page.Find("#about .two-col p")
	for i, text := range []string{a.Para1, a.Para2} {
		if i >= paras.Length() {
			break
		}
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(text), &buf); err != nil {
			return fmt.Errorf("rendering about paragraph %d: %w", i+1, err)
		}
		out := strings.TrimSpace(buf.String())
		slot := paras.Eq(i)
		if inner, ok := singleParagraph(out); ok {
			slot.SetHtml(inner)
		} else {
			slot.ReplaceWithHtml(out)
		}
	}
	return nil
}

// singleParagraph reports whether out is one <p> block and returns its
// contents. Empty output counts as an empty paragraph.
func singleParagraph(out string) (string, bool) {
	if out == "" {
		return "", true
	}
	if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") {
		return "", false
	}
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>"))
	if strings.Contains(inner, "<p>") {
		return "", false
	}
	return inner, true
}

type skillBlock struct {
	title string
	icon  string
	list  []string
}

func listHTML(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, it := range items {
		b.WriteString("<li>" + esc(it) + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func renderSkills(page *goquery.Document, s types.Skills) {
	blocks := []skillBlock{
		{"Languages", "fa-code", s.Languages},
		{"Machine Learning", "fa-gears", s.MachineLearning},
		{"Deep Learning & NLP", "fa-brain", s.DeepLearningNLP},
		{"Data Analysis & Visualization", "fa-chart-simple", s.DataViz},
		{"Databases & Cloud", "fa-cloud", s.DatabasesCloud},
		{"Tools", "fa-toolbox", s.Tools},
	}
	var b strings.Builder
	for _, bl := range blocks {
		fmt.Fprintf(&b, `<div class="skill-card"><h4><i class="fa-solid %s"></i> %s</h4>%s</div>`,
			esc(bl.icon), esc(bl.title), listHTML(bl.list))
	}
	page.Find("#skills .skills-grid").First().SetHtml(b.String())
}

func renderExperience(page *goquery.Document, list []types.Experience) {
	container := page.Find("#experience .container").First()
	if container.Length() == 0 {
		return
	}
	container.Find(".experience-item").Remove()

	var b strings.Builder
	for _, e := range list {
		fmt.Fprintf(&b, `<div class="experience-item"><div class="exp-header"><h4>%s</h4><span>%s</span></div><ul class="exp-points">`,
			esc(e.Role), esc(e.Company))
		for _, p := range e.Points {
			b.WriteString("<li>" + esc(p) + "</li>")
		}
		b.WriteString("</ul></div>")
	}
	container.AppendHtml(b.String())
}

func projectCategory(p types.Project) string {
	if p.Category == "" {
		return "Other"
	}
	return p.Category
}

func renderProjects(page *goquery.Document, list []types.Project) {
	var b strings.Builder
	for _, p := range list {
		icon := p.Icon
		if icon == "" {
			icon = types.DefaultProjectIcon
		}
		fmt.Fprintf(&b, `<article class="card" data-category="%s"><div class="card-icon"><i class="fa-solid %s"></i></div><h4>%s</h4><p>%s</p><ul class="tags">`,
			esc(strings.ToLower(projectCategory(p))), esc(icon), esc(p.Title), esc(p.Desc))
		for _, t := range p.Tags {
			b.WriteString("<li>" + esc(t) + "</li>")
		}
		b.WriteString("</ul>")
		if p.Link != "" {
			fmt.Fprintf(&b, `<a class="card-link" href="%s" target="_blank" rel="noreferrer">View <i class="fa-solid fa-arrow-up-right-from-square"></i></a>`,
				esc(safeURL(p.Link)))
		}
		b.WriteString("</article>")
	}
	page.Find("#projects .cards-grid").First().SetHtml(b.String())
}

// Categories returns "All" followed by each project category in first-seen order.
func Categories(list []types.Project) []string {
	seen := map[string]bool{}
	cats := []string{"All"}
	for _, p := range list {
		c := projectCategory(p)
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}

func renderProjectFilters(page *goquery.Document, list []types.Project) {
	bar := page.Find("#projects .project-filters").First()
	if bar.Length() == 0 || page.Find("#projects .cards-grid").Length() == 0 {
		return
	}
	var b strings.Builder
	for i, c := range Categories(list) {
		class := "filter-btn"
		if i == 0 {
			class += " active"
		}
		fmt.Fprintf(&b, `<button class="%s" data-filter="%s">%s</button>`, class, esc(strings.ToLower(c)), esc(c))
	}
	bar.SetHtml(b.String())
}

func renderInsights(page *goquery.Document, in types.Insights) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding chart data: %w", err)
	}
	script := page.Find("script#insightsData")
	if script.Length() == 0 {
		page.Find("body").AppendHtml(`<script id="insightsData" type="application/json"></script>`)
		script = page.Find("script#insightsData")
	}
	// Script content is raw text. json.Marshal escapes <, > and &, so the
	// payload cannot close the element.
	script.SetHtml(string(data))
	return nil
}

func renderEducation(page *goquery.Document, list []types.Education) {
	var b strings.Builder
	for _, e := range list {
		fmt.Fprintf(&b, `<div class="timeline-item"><div class="tl-dot"></div><div class="tl-content"><h4>%s</h4><p>%s</p></div></div>`,
			esc(e.Title), esc(e.Org))
	}
	page.Find("#education .timeline").First().SetHtml(b.String())
}

func renderCertifications(page *goquery.Document, list []string) {
	var b strings.Builder
	for _, c := range list {
		b.WriteString(`<li><i class="fa-solid fa-certificate"></i> ` + esc(c) + `</li>`)
	}
	page.Find("#certifications .cert-list").First().SetHtml(b.String())
}

func linkURL(u string) string {
	if u == "" {
		return "#"
	}
	return safeURL(u)
}

func renderContact(page *goquery.Document, c types.Contact) {
	item := func(href, icon, label, small string, external bool) string {
		attrs := ""
		if external {
			attrs = ` target="_blank" rel="noreferrer"`
		}
		return fmt.Sprintf(`<a class="contact-item" href="%s"%s><i class="%s"></i><span>%s</span><small>%s</small></a>`,
			esc(href), attrs, icon, label, esc(small))
	}
	page.Find("#contact .contact-grid").First().SetHtml(
		item("mailto:"+c.Email, "fa-solid fa-envelope", "Email", c.Email, true) +
			item("tel:"+c.Phone, "fa-solid fa-phone", "Phone", c.Phone, false) +
			item(linkURL(c.LinkedIn.URL), "fa-brands fa-linkedin", "LinkedIn", c.LinkedIn.Label, true) +
			item(linkURL(c.GitHub.URL), "fa-brands fa-github", "GitHub", c.GitHub.Label, true),
	)
}
