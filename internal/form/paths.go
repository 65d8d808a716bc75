package form

import (
	"strconv"
	"strings"

	"github.com/jonathan/portfolio-admin/internal/types"
)

// target is what a path resolves to inside a document. Exactly one of str,
// list or counts is set.
type target struct {
	str    *string
	list   *[]string
	lines  bool // list is edited one entry per line rather than comma separated
	counts **types.Counts
}

// Collection paths that hold repeated sub-forms.
const (
	PathExperience     = "experience"
	PathProjects       = "projects"
	PathEducation      = "education"
	PathCertifications = "certifications"
)

// resolve maps a dotted path such as "projects.2.tags" onto the field it names.
func resolve(doc *types.Document, path string) (target, error) {
	segs := strings.Split(path, ".")
	unknown := &PathError{Path: path, Reason: "unknown field"}

	switch segs[0] {
	case "profile":
		if len(segs) != 2 {
			return target{}, unknown
		}
		p := &doc.Profile
		switch segs[1] {
		case "name":
			return target{str: &p.Name}, nil
		case "headline":
			return target{str: &p.Headline}, nil
		case "summary":
			return target{str: &p.Summary}, nil
		case "photo":
			return target{str: &p.Photo}, nil
		case "resume":
			return target{str: &p.Resume}, nil
		}

	case "about":
		if len(segs) != 2 {
			return target{}, unknown
		}
		switch segs[1] {
		case "para1":
			return target{str: &doc.About.Para1}, nil
		case "para2":
			return target{str: &doc.About.Para2}, nil
		}

	case "skills":
		if len(segs) != 2 {
			return target{}, unknown
		}
		s := &doc.Skills
		switch segs[1] {
		case "languages":
			return target{list: &s.Languages}, nil
		case "machine_learning":
			return target{list: &s.MachineLearning}, nil
		case "deep_learning_nlp":
			return target{list: &s.DeepLearningNLP}, nil
		case "data_viz":
			return target{list: &s.DataViz}, nil
		case "databases_cloud":
			return target{list: &s.DatabasesCloud}, nil
		case "tools":
			return target{list: &s.Tools}, nil
		}

	case PathExperience:
		i, err := itemIndex(path, segs, len(doc.Experience), 3)
		if err != nil {
			return target{}, err
		}
		e := &doc.Experience[i]
		switch segs[2] {
		case "role":
			return target{str: &e.Role}, nil
		case "company":
			return target{str: &e.Company}, nil
		case "points":
			return target{list: &e.Points, lines: true}, nil
		}

	case PathProjects:
		i, err := itemIndex(path, segs, len(doc.Projects), 3)
		if err != nil {
			return target{}, err
		}
		p := &doc.Projects[i]
		switch segs[2] {
		case "title":
			return target{str: &p.Title}, nil
		case "desc":
			return target{str: &p.Desc}, nil
		case "tags":
			return target{list: &p.Tags}, nil
		case "icon":
			return target{str: &p.Icon}, nil
		case "category":
			return target{str: &p.Category}, nil
		case "link":
			return target{str: &p.Link}, nil
		}

	case PathEducation:
		i, err := itemIndex(path, segs, len(doc.Education), 3)
		if err != nil {
			return target{}, err
		}
		e := &doc.Education[i]
		switch segs[2] {
		case "title":
			return target{str: &e.Title}, nil
		case "org":
			return target{str: &e.Org}, nil
		}

	case PathCertifications:
		i, err := itemIndex(path, segs, len(doc.Certifications), 2)
		if err != nil {
			return target{}, err
		}
		return target{str: &doc.Certifications[i]}, nil

	case "contact":
		c := &doc.Contact
		switch {
		case len(segs) == 2 && segs[1] == "email":
			return target{str: &c.Email}, nil
		case len(segs) == 2 && segs[1] == "phone":
			return target{str: &c.Phone}, nil
		case len(segs) == 3 && (segs[1] == "linkedin" || segs[1] == "github"):
			link := &c.LinkedIn
			if segs[1] == "github" {
				link = &c.GitHub
			}
			switch segs[2] {
			case "label":
				return target{str: &link.Label}, nil
			case "url":
				return target{str: &link.URL}, nil
			}
		}

	case "insights":
		if len(segs) != 2 {
			return target{}, unknown
		}
		in := &doc.Insights
		switch segs[1] {
		case "project_categories":
			return target{counts: &in.ProjectCategories}, nil
		case "skills_strength":
			return target{counts: &in.SkillsStrength}, nil
		case "tech_frequency":
			return target{counts: &in.TechFrequency}, nil
		}
	}

	return target{}, unknown
}

// itemIndex parses the index segment of a collection path and checks bounds.
func itemIndex(path string, segs []string, n, wantSegs int) (int, error) {
	if len(segs) != wantSegs {
		return 0, &PathError{Path: path, Reason: "unknown field"}
	}
	i, err := strconv.Atoi(segs[1])
	if err != nil {
		return 0, &PathError{Path: path, Reason: "item index is not a number"}
	}
	if i < 0 || i >= n {
		return 0, &PathError{Path: path, Reason: "item index out of range"}
	}
	return i, nil
}

// ItemPath builds the path of a field inside a collection item.
func ItemPath(collection string, index int, field string) string {
	p := collection + "." + strconv.Itoa(index)
	if field != "" {
		p += "." + field
	}
	return p
}
