package form

import (
	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/types"
)

// Op is the kind of change an Update makes.
type Op string

// Update operations.
const (
	OpSet    Op = "set"    // set a scalar or list field from its raw input
	OpAdd    Op = "add"    // append a default item to a collection
	OpRemove Op = "remove" // remove the item at Index from a collection
	OpRows   Op = "rows"   // replace a chart mapping from editor rows
)

// Update is one edit coming from the form.
type Update struct {
	Op    Op     `json:"op" validate:"required,oneof=set add remove rows"`
	Path  string `json:"path" validate:"required"`
	Value string `json:"value,omitempty"`
	Index int    `json:"index,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`
}

// Set is shorthand for a field update.
func Set(path, value string) Update { return Update{Op: OpSet, Path: path, Value: value} }

// Add is shorthand for appending a default item to a collection.
func Add(collection string) Update { return Update{Op: OpAdd, Path: collection} }

// Remove is shorthand for removing an item from a collection.
func Remove(collection string, index int) Update {
	return Update{Op: OpRemove, Path: collection, Index: index}
}

// SetRows is shorthand for replacing a chart mapping.
func SetRows(path string, rows []Row) Update { return Update{Op: OpRows, Path: path, Rows: rows} }

// Apply returns a copy of doc with u applied. doc itself is never modified;
// on error the original document is returned unchanged.
func Apply(doc *types.Document, u Update) (*types.Document, error) {
	if doc == nil {
		doc = content.Empty()
	}
	next := doc.Clone()

	var err error
	switch u.Op {
	case OpSet:
		err = setField(next, u.Path, u.Value)
	case OpAdd:
		err = addItem(next, u.Path)
	case OpRemove:
		err = removeItem(next, u.Path, u.Index)
	case OpRows:
		err = setRows(next, u.Path, u.Rows)
	default:
		err = &UpdateError{Op: u.Op, Message: "unknown operation"}
	}
	if err != nil {
		return doc, err
	}

	content.Normalize(next)
	return next, nil
}

func setField(doc *types.Document, path, value string) error {
	t, err := resolve(doc, path)
	if err != nil {
		return err
	}
	switch {
	case t.str != nil:
		*t.str = value
	case t.list != nil && t.lines:
		*t.list = ParseLines(value)
	case t.list != nil:
		*t.list = ParseCommaList(value)
	default:
		return &UpdateError{Op: OpSet, Message: path + " is a key-value field, send rows"}
	}
	return nil
}

func setRows(doc *types.Document, path string, rows []Row) error {
	t, err := resolve(doc, path)
	if err != nil {
		return err
	}
	if t.counts == nil {
		return &UpdateError{Op: OpRows, Message: path + " is not a key-value field"}
	}
	*t.counts = SyncRows(rows)
	return nil
}

func addItem(doc *types.Document, collection string) error {
	switch collection {
	case PathExperience:
		doc.Experience = append(doc.Experience, types.Experience{Points: []string{}})
	case PathProjects:
		doc.Projects = append(doc.Projects, types.Project{Tags: []string{}, Icon: types.DefaultProjectIcon})
	case PathEducation:
		doc.Education = append(doc.Education, types.Education{})
	case PathCertifications:
		doc.Certifications = append(doc.Certifications, "")
	default:
		return &PathError{Path: collection, Reason: "not a collection"}
	}
	return nil
}

func removeItem(doc *types.Document, collection string, index int) error {
	var n int
	switch collection {
	case PathExperience:
		n = len(doc.Experience)
	case PathProjects:
		n = len(doc.Projects)
	case PathEducation:
		n = len(doc.Education)
	case PathCertifications:
		n = len(doc.Certifications)
	default:
		return &PathError{Path: collection, Reason: "not a collection"}
	}
	if index < 0 || index >= n {
		return &PathError{Path: ItemPath(collection, index, ""), Reason: "item index out of range"}
	}

	switch collection {
	case PathExperience:
		doc.Experience = removeAt(doc.Experience, index)
	case PathProjects:
		doc.Projects = removeAt(doc.Projects, index)
	case PathEducation:
		doc.Education = removeAt(doc.Education, index)
	case PathCertifications:
		doc.Certifications = removeAt(doc.Certifications, index)
	}
	return nil
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
