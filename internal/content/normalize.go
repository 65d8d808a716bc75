package content

import (
	"github.com/jonathan/portfolio-admin/internal/types"
)

// Normalize fills every optional field with its canonical default: nil
// collections become empty, nil chart mappings become empty mappings, and
// projects without an icon get the default icon.
func Normalize(doc *types.Document) {
	if doc == nil {
		return
	}

	s := &doc.Skills
	for _, list := range []*[]string{
		&s.Languages, &s.MachineLearning, &s.DeepLearningNLP,
		&s.DataViz, &s.DatabasesCloud, &s.Tools,
	} {
		*list = nonNil(*list)
	}

	if doc.Experience == nil {
		doc.Experience = []types.Experience{}
	}
	for i := range doc.Experience {
		doc.Experience[i].Points = nonNil(doc.Experience[i].Points)
	}

	if doc.Projects == nil {
		doc.Projects = []types.Project{}
	}
	for i := range doc.Projects {
		NormalizeProject(&doc.Projects[i])
	}

	if doc.Education == nil {
		doc.Education = []types.Education{}
	}
	doc.Certifications = nonNil(doc.Certifications)

	in := &doc.Insights
	for _, c := range []**types.Counts{&in.ProjectCategories, &in.SkillsStrength, &in.TechFrequency} {
		if *c == nil {
			*c = types.NewCounts()
		}
	}
}

// NormalizeProject fills the defaults of a single project card.
func NormalizeProject(p *types.Project) {
	p.Tags = nonNil(p.Tags)
	if p.Icon == "" {
		p.Icon = types.DefaultProjectIcon
	}
}

// Empty returns a normalized document with no content.
func Empty() *types.Document {
	doc := &types.Document{}
	Normalize(doc)
	return doc
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
