// Package courses holds the static course catalog and manages which courses each
// user is registered for.
package courses

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

//go:embed catalog.json
var defaultCatalog []byte

var ErrCourseNotFound = errors.New("course not found in catalog")

type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Org   string `json:"org"`
}

// Catalog is the read-only list of courses, kept in its configured order.
type Catalog struct {
	courses []Course
	index   map[string]int
}

// NewCatalog rejects empty and duplicate ids.
func NewCatalog(courses []Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]Course, 0, len(courses)),
		index:   make(map[string]int, len(courses)),
	}
	for _, course := range courses {
		if course.ID == "" {
			return nil, errors.New("catalog: course without id")
		}
		if _, dup := c.index[course.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate course id %q", course.ID)
		}
		c.index[course.ID] = len(c.courses)
		c.courses = append(c.courses, course)
	}
	return c, nil
}

// LoadCatalog decodes a JSON array of {id, title, org} objects.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var courses []Course
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return NewCatalog(courses)
}

func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}

// DefaultCatalog returns the catalog bundled with the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// Courses returns a copy of the catalog in order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	copy(out, c.courses)
	return out
}

func (c *Catalog) Lookup(id string) (Course, bool) {
	i, ok := c.index[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}

func (c *Catalog) Len() int {
	return len(c.courses)
}
