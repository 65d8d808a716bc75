// Package types provides type definitions for the portfolio content and admin API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultProjectIcon is the icon a project gets when none is set.
const DefaultProjectIcon = "fa-diagram-project"

// Document is the Content Document: everything the public page renders.
type Document struct {
	Profile        Profile      `json:"profile"`
	About          About        `json:"about"`
	Skills         Skills       `json:"skills"`
	Experience     []Experience `json:"experience"`
	Projects       []Project    `json:"projects"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications"`
	Contact        Contact      `json:"contact"`
	Insights       Insights     `json:"insights"`
}

// Profile holds the hero section. Photo and Resume are URLs or data URLs.
type Profile struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Photo    string `json:"photo"`
	Resume   string `json:"resume"`
}

// About holds the two free-text about paragraphs.
type About struct {
	Para1 string `json:"para1"`
	Para2 string `json:"para2"`
}

// Skills groups skill names into the six fixed categories shown on the page.
type Skills struct {
	Languages       []string `json:"languages"`
	MachineLearning []string `json:"machine_learning"`
	DeepLearningNLP []string `json:"deep_learning_nlp"`
	DataViz         []string `json:"data_viz"`
	DatabasesCloud  []string `json:"databases_cloud"`
	Tools           []string `json:"tools"`
}

// Experience is a single role with its bullet points.
type Experience struct {
	Role    string   `json:"role"`
	Company string   `json:"company"`
	Points  []string `json:"points"`
}

// Project is a project card.
type Project struct {
	Title    string   `json:"title"`
	Desc     string   `json:"desc"`
	Tags     []string `json:"tags"`
	Icon     string   `json:"icon"`
	Category string   `json:"category"`
	Link     string   `json:"link"`
}

// Education is a timeline entry.
type Education struct {
	Title string `json:"title"`
	Org   string `json:"org"`
}

// Contact holds the contact grid.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn Link   `json:"linkedin"`
	GitHub   Link   `json:"github"`
}

// Link is a labelled URL.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Counts is an insertion-ordered name -> count mapping used for chart data.
type Counts = orderedmap.OrderedMap[string, int]

// Insights holds the chart datasets.
type Insights struct {
	ProjectCategories *Counts `json:"project_categories"`
	SkillsStrength    *Counts `json:"skills_strength"`
	TechFrequency     *Counts `json:"tech_frequency"`
}

// Count is one key/value pair of a Counts mapping.
type Count struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// NewCounts builds a Counts mapping from pairs. A repeated key keeps its first
// position and takes the last value.
func NewCounts(pairs ...Count) *Counts {
	c := orderedmap.New[string, int]()
	for _, p := range pairs {
		c.Set(p.Key, p.Value)
	}
	return c
}

// CountPairs returns the pairs of c in order. A nil mapping has no pairs.
func CountPairs(c *Counts) []Count {
	if c == nil {
		return []Count{}
	}
	out := make([]Count, 0, c.Len())
	for pair := c.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Count{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Skills = Skills{
		Languages:       cloneStrings(d.Skills.Languages),
		MachineLearning: cloneStrings(d.Skills.MachineLearning),
		DeepLearningNLP: cloneStrings(d.Skills.DeepLearningNLP),
		DataViz:         cloneStrings(d.Skills.DataViz),
		DatabasesCloud:  cloneStrings(d.Skills.DatabasesCloud),
		Tools:           cloneStrings(d.Skills.Tools),
	}
	if d.Experience != nil {
		out.Experience = make([]Experience, len(d.Experience))
		for i, e := range d.Experience {
			e.Points = cloneStrings(e.Points)
			out.Experience[i] = e
		}
	}
	if d.Projects != nil {
		out.Projects = make([]Project, len(d.Projects))
		for i, p := range d.Projects {
			p.Tags = cloneStrings(p.Tags)
			out.Projects[i] = p
		}
	}
	if d.Education != nil {
		out.Education = append([]Education{}, d.Education...)
	}
	out.Certifications = cloneStrings(d.Certifications)
	out.Insights = Insights{
		ProjectCategories: cloneCounts(d.Insights.ProjectCategories),
		SkillsStrength:    cloneCounts(d.Insights.SkillsStrength),
		TechFrequency:     cloneCounts(d.Insights.TechFrequency),
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneCounts(in *Counts) *Counts {
	if in == nil {
		return nil
	}
	return NewCounts(CountPairs(in)...)
}
