package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/ytget/course-archiver/internal/model"
)

// ErrNoCourse is returned when the document has no "course" object
var ErrNoCourse = errors.New("document has no course")

// LoadDocument reads and parses the course document at path
func LoadDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes a course document. Comments and trailing commas are
// accepted; the original bytes are kept in Document.Source.
func ParseDocument(data []byte) (*model.Document, error) {
	// Standardize rewrites its input in place
	standard, err := hujson.Standardize(append([]byte(nil), data...))
	if err != nil {
		return nil, fmt.Errorf("invalid document syntax: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(standard, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Course == nil {
		return nil, ErrNoCourse
	}

	doc.Source = data
	return &doc, nil
}
