// Package form builds the editable form model of a Content Document and
// applies edits made through it.
//
// The form is derived data: Build reconstructs it from the document every
// time, and every edit goes through Apply, which returns a new document.
package form

import (
	"github.com/jonathan/portfolio-admin/internal/types"
)

// Kind is the input control a field is edited with. It decides how raw input
// is coerced into the document.
type Kind string

// Field kinds.
const (
	KindText      Kind = "text"
	KindTextarea  Kind = "textarea"
	KindNumber    Kind = "number"
	KindCommaList Kind = "comma_list"
	KindLines     Kind = "lines"
	KindKeyValue  Kind = "key_value"
	KindImage     Kind = "image"
	KindFile      Kind = "file"
)

// Field is one editable control.
type Field struct {
	Path        string `json:"path"`
	Label       string `json:"label"`
	Kind        Kind   `json:"kind"`
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	Value       string `json:"value"`
	Rows        []Row  `json:"rows,omitempty"`
	Accept      string `json:"accept,omitempty"`
	Group       string `json:"group,omitempty"`
}

// Item is one entry of a repeated section.
type Item struct {
	Index  int     `json:"index"`
	Fields []Field `json:"fields"`
}

// Section is a titled group of fields. Repeated sections carry Items instead
// of Fields and name the collection that add/remove operate on.
type Section struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Fields     []Field `json:"fields,omitempty"`
	Collection string  `json:"collection,omitempty"`
	Items      []Item  `json:"items,omitempty"`
}

// Form is the complete editor for one document.
type Form struct {
	Sections []Section `json:"sections"`
}

// Section returns the section with the given id.
func (f Form) Section(id string) (Section, bool) {
	for _, s := range f.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Field returns the field with the given path, searching items too.
func (f Form) Field(path string) (Field, bool) {
	for _, s := range f.Sections {
		for _, fl := range s.Fields {
			if fl.Path == path {
				return fl, true
			}
		}
		for _, it := range s.Items {
			for _, fl := range it.Fields {
				if fl.Path == path {
					return fl, true
				}
			}
		}
	}
	return Field{}, false
}

// Build derives the form from doc. It holds no state: calling it twice on the
// same document yields the same form.
func Build(doc *types.Document) Form {
	if doc == nil {
		doc = &types.Document{}
	}
	return Form{Sections: []Section{
		profileSection(doc.Profile),
		aboutSection(doc.About),
		skillsSection(doc.Skills),
		experienceSection(doc.Experience),
		projectsSection(doc.Projects),
		educationSection(doc.Education),
		certificationsSection(doc.Certifications),
		contactSection(doc.Contact),
		insightsSection(doc.Insights),
	}}
}

func text(path, label, placeholder string, maxLen int, value string) Field {
	return Field{Path: path, Label: label, Kind: KindText, Placeholder: placeholder, MaxLength: maxLen, Value: value}
}

func textarea(path, label, placeholder string, maxLen int, value string) Field {
	return Field{Path: path, Label: label, Kind: KindTextarea, Placeholder: placeholder, MaxLength: maxLen, Value: value}
}

func commaList(path, label, placeholder string, values []string) Field {
	return Field{Path: path, Label: label, Kind: KindCommaList, Placeholder: placeholder, Value: JoinCommaList(values)}
}

func profileSection(p types.Profile) Section {
	return Section{ID: "profile", Title: "Profile", Fields: []Field{
		{Path: "profile.photo", Label: "Photo URL", Kind: KindImage, Placeholder: "Image URL or data URL",
			MaxLength: 500, Value: p.Photo, Accept: "image/*", Group: "Profile Photo"},
		text("profile.name", "Name", "Your name", 40, p.Name),
		text("profile.headline", "Headline", "Professional headline", 100, p.Headline),
		textarea("profile.summary", "Summary", "Short professional summary", 400, p.Summary),
		{Path: "profile.resume", Label: "Resume URL", Kind: KindFile, Placeholder: "assets/resume/YourResume.pdf or data URL",
			MaxLength: 200, Value: p.Resume, Accept: "application/pdf", Group: "Resume (PDF)"},
	}}
}

func aboutSection(a types.About) Section {
	return Section{ID: "about", Title: "About", Fields: []Field{
		textarea("about.para1", "About paragraph 1", "", 0, a.Para1),
		textarea("about.para2", "About paragraph 2", "", 0, a.Para2),
	}}
}

func skillsSection(s types.Skills) Section {
	return Section{ID: "skills", Title: "Skills", Fields: []Field{
		commaList("skills.languages", "Languages (comma separated)", "Python, SQL", s.Languages),
		commaList("skills.machine_learning", "Machine Learning (comma separated)", "Scikit-learn, XGBoost, LightGBM", s.MachineLearning),
		commaList("skills.deep_learning_nlp", "Deep Learning & NLP (comma separated)", "TensorFlow, Keras, PyTorch, ...", s.DeepLearningNLP),
		commaList("skills.data_viz", "Data Analysis & Visualization (comma separated)", "Pandas, NumPy, Excel, ...", s.DataViz),
		commaList("skills.databases_cloud", "Databases & Cloud (comma separated)", "MySQL, MongoDB, AWS (S3, EC2)", s.DatabasesCloud),
		commaList("skills.tools", "Tools (comma separated)", "Git, Jupyter, VS Code, Anaconda", s.Tools),
	}}
}

func experienceSection(list []types.Experience) Section {
	items := make([]Item, len(list))
	for i, e := range list {
		p := func(f string) string { return ItemPath(PathExperience, i, f) }
		items[i] = Item{Index: i, Fields: []Field{
			text(p("role"), "Role", "Role", 0, e.Role),
			text(p("company"), "Company", "Company", 0, e.Company),
			{Path: p("points"), Label: "Points", Kind: KindLines, Placeholder: "One bullet per line", Value: JoinLines(e.Points)},
		}}
	}
	return Section{ID: PathExperience, Title: "Experience", Collection: PathExperience, Items: items}
}

func projectsSection(list []types.Project) Section {
	items := make([]Item, len(list))
	for i, pr := range list {
		p := func(f string) string { return ItemPath(PathProjects, i, f) }
		items[i] = Item{Index: i, Fields: []Field{
			text(p("title"), "Title", "Project title", 60, pr.Title),
			textarea(p("desc"), "Description", "Short description", 220, pr.Desc),
			commaList(p("tags"), "Tags", "tag1, tag2", pr.Tags),
			text(p("icon"), "Icon", "FontAwesome icon (e.g., fa-film)", 40, pr.Icon),
			text(p("category"), "Category", "Category (e.g., NLP, ML)", 20, pr.Category),
			text(p("link"), "Link", "https://...", 300, pr.Link),
		}}
	}
	return Section{ID: PathProjects, Title: "Projects", Collection: PathProjects, Items: items}
}

func educationSection(list []types.Education) Section {
	items := make([]Item, len(list))
	for i, e := range list {
		p := func(f string) string { return ItemPath(PathEducation, i, f) }
		items[i] = Item{Index: i, Fields: []Field{
			text(p("title"), "Title", "Program", 80, e.Title),
			text(p("org"), "Organization", "Institution & Years", 120, e.Org),
		}}
	}
	return Section{ID: PathEducation, Title: "Education", Collection: PathEducation, Items: items}
}

func certificationsSection(list []string) Section {
	items := make([]Item, len(list))
	for i, c := range list {
		items[i] = Item{Index: i, Fields: []Field{
			textarea(ItemPath(PathCertifications, i, ""), "Certification", "Certification text", 160, c),
		}}
	}
	return Section{ID: PathCertifications, Title: "Certifications", Collection: PathCertifications, Items: items}
}

func contactSection(c types.Contact) Section {
	linkedin := text("contact.linkedin.label", "Label", "Your name", 40, c.LinkedIn.Label)
	linkedin.Group = "LinkedIn"
	linkedinURL := text("contact.linkedin.url", "URL", "https://linkedin.com/in/...", 200, c.LinkedIn.URL)
	linkedinURL.Group = "LinkedIn"
	github := text("contact.github.label", "Label", "Username", 40, c.GitHub.Label)
	github.Group = "GitHub"
	githubURL := text("contact.github.url", "URL", "https://github.com/username", 200, c.GitHub.URL)
	githubURL.Group = "GitHub"

	return Section{ID: "contact", Title: "Contact", Fields: []Field{
		text("contact.email", "Email", "your@email", 120, c.Email),
		text("contact.phone", "Phone", "+91 ...", 20, c.Phone),
		linkedin, linkedinURL, github, githubURL,
	}}
}

func insightsSection(in types.Insights) Section {
	kv := func(path, label string, c *types.Counts) Field {
		return Field{Path: path, Label: label, Kind: KindKeyValue, Placeholder: "Value (number)", Rows: RowsOf(c)}
	}
	return Section{ID: "insights", Title: "Insights (Charts Data)", Fields: []Field{
		kv("insights.project_categories", "Project Categories (name -> count)", in.ProjectCategories),
		kv("insights.skills_strength", "Skills Strength (name -> 1..10)", in.SkillsStrength),
		kv("insights.tech_frequency", "Tech Frequency (name -> count)", in.TechFrequency),
	}}
}
