package model

import (
	"encoding/json"
	"strings"
)

// Document is the root of a course description file
type Document struct {
	Course *Course `json:"course"`

	// Source holds the file contents exactly as read, comments included
	Source []byte `json:"-"`
}

// Course holds either sections or modules. When sections is present (even
// empty) modules is ignored.
type Course struct {
	Sections []*Section `json:"sections,omitempty"`
	Modules  []*Module  `json:"modules,omitempty"`
}

// Section groups modules. It has no directory of its own in the default layout.
type Section struct {
	Name    string    `json:"name"`
	Modules []*Module `json:"modules"`
}

// Module is an ordered list of lessons plus free-form metadata
type Module struct {
	Name    string    `json:"name"`
	Lessons []*Lesson `json:"lessons"`

	raw json.RawMessage
}

// Lesson is a leaf of the course tree
type Lesson struct {
	Title   string  `json:"title"`
	Video   *Video  `json:"video,omitempty"`
	Files   []*File `json:"files,omitempty"`
	Content string  `json:"content,omitempty"`

	raw json.RawMessage
}

// Video references a media stream and its thumbnail
type Video struct {
	StreamLink string `json:"stream_link"`
	Name       string `json:"name"`
	Thumbnail  string `json:"thumbnail"`
}

// File is a lesson attachment
type File struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// CourseStats counts the nodes and assets of a course
type CourseStats struct {
	Sections   int
	Modules    int
	Lessons    int
	Videos     int
	Thumbnails int
	Files      int
	Contents   int
}

// Assets returns the number of fetchable assets
func (cs CourseStats) Assets() int {
	return cs.Videos + cs.Thumbnails + cs.Files
}

// IsSectioned reports whether the course declares sections
func (c *Course) IsSectioned() bool {
	return c.Sections != nil
}

// AllModules returns every module in traversal order, flattening sections
func (c *Course) AllModules() []*Module {
	if !c.IsSectioned() {
		return c.Modules
	}
	var modules []*Module
	for _, section := range c.Sections {
		if section == nil {
			continue
		}
		modules = append(modules, section.Modules...)
	}
	return modules
}

// Stats walks the course and counts its nodes
func (c *Course) Stats() CourseStats {
	stats := CourseStats{Sections: len(c.Sections)}
	for _, module := range c.AllModules() {
		if module == nil {
			continue
		}
		stats.Modules++
		for _, lesson := range module.Lessons {
			if lesson == nil {
				continue
			}
			stats.Lessons++
			if lesson.HasVideo() {
				stats.Videos++
				if lesson.Video.HasThumbnail() {
					stats.Thumbnails++
				}
			}
			stats.Files += len(lesson.Files)
			if lesson.HasContent() {
				stats.Contents++
			}
		}
	}
	return stats
}

// UnmarshalJSON decodes the module and keeps the raw node for module.json
func (m *Module) UnmarshalJSON(data []byte) error {
	type plain Module
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Module(decoded)
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the node as it appeared in the document, free-form fields included
func (m Module) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	type plain Module
	return json.Marshal(plain(m))
}

// UnmarshalJSON decodes the lesson and keeps the raw node for lesson.json
func (l *Lesson) UnmarshalJSON(data []byte) error {
	type plain Lesson
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*l = Lesson(decoded)
	l.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the node as it appeared in the document, free-form fields included
func (l Lesson) MarshalJSON() ([]byte, error) {
	if len(l.raw) > 0 {
		return l.raw, nil
	}
	type plain Lesson
	return json.Marshal(plain(l))
}

// HasVideo reports whether the lesson declares a video
func (l *Lesson) HasVideo() bool {
	return l.Video != nil
}

// HasFiles reports whether the lesson declares a file list
func (l *Lesson) HasFiles() bool {
	return l.Files != nil
}

// HasContent reports whether the lesson carries inline text
func (l *Lesson) HasContent() bool {
	return l.Content != ""
}

// HasThumbnail reports whether the video references a non-empty thumbnail
func (v *Video) HasThumbnail() bool {
	return strings.TrimSpace(v.Thumbnail) != ""
}
