package model

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleCourse = `{
  "course": {
    "sections": [
      {"name": "S1", "modules": [
        {"name": "M1", "id": 7, "lessons": [
          {"title": "L1", "video": {"stream_link": "https://cdn.test/v.m3u8", "name": "v.mp4", "thumbnail": "/t.png"}, "extra": true},
          {"title": "L2", "files": [{"url": "/a.pdf", "name": "a.pdf"}, {"url": "/b.pdf", "name": "b.pdf"}], "content": "# hi"}
        ]}
      ]},
      {"name": "S2", "modules": [
        {"name": "M2", "lessons": [{"title": "L3", "video": {"stream_link": "s", "name": "w.mp4", "thumbnail": ""}}]}
      ]}
    ]
  }
}`

func decodeDocument(t *testing.T, raw string) *Document {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Failed to decode document: %v", err)
	}
	return &doc
}

func TestCourse_IsSectioned(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected bool
	}{
		{"sections present", `{"course":{"sections":[{"modules":[]}]}}`, true},
		{"empty sections still sectioned", `{"course":{"sections":[],"modules":[{"name":"M"}]}}`, true},
		{"null sections", `{"course":{"sections":null,"modules":[]}}`, false},
		{"modules only", `{"course":{"modules":[{"name":"M"}]}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeDocument(t, tt.raw)
			if got := doc.Course.IsSectioned(); got != tt.expected {
				t.Errorf("IsSectioned() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCourse_AllModules(t *testing.T) {
	doc := decodeDocument(t, sampleCourse)

	modules := doc.Course.AllModules()
	if len(modules) != 2 {
		t.Fatalf("Expected 2 modules, got %d", len(modules))
	}
	if modules[0].Name != "M1" || modules[1].Name != "M2" {
		t.Errorf("Unexpected module order: %s, %s", modules[0].Name, modules[1].Name)
	}

	flat := decodeDocument(t, `{"course":{"modules":[{"name":"A"},{"name":"B"}]}}`)
	if got := len(flat.Course.AllModules()); got != 2 {
		t.Errorf("Expected 2 modules for flat course, got %d", got)
	}
}

func TestCourse_Stats(t *testing.T) {
	doc := decodeDocument(t, sampleCourse)
	stats := doc.Course.Stats()

	expected := CourseStats{Sections: 2, Modules: 2, Lessons: 3, Videos: 2, Thumbnails: 1, Files: 2, Contents: 1}
	if stats != expected {
		t.Errorf("Stats() = %+v, expected %+v", stats, expected)
	}
	if stats.Assets() != 5 {
		t.Errorf("Assets() = %d, expected 5", stats.Assets())
	}
}

func TestModule_MarshalJSONKeepsFreeFormFields(t *testing.T) {
	doc := decodeDocument(t, sampleCourse)
	module := doc.Course.AllModules()[0]

	out, err := json.MarshalIndent(module, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	text := string(out)
	for _, want := range []string{`"id": 7`, `"extra": true`, `"name": "M1"`} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected module JSON to contain %s, got:\n%s", want, text)
		}
	}
	if strings.Index(text, `"name"`) > strings.Index(text, `"id"`) {
		t.Error("Expected original key order to be preserved")
	}
}

func TestLesson_MarshalJSONWithoutSource(t *testing.T) {
	lesson := &Lesson{Title: "Built", Content: "text"}

	out, err := json.Marshal(lesson)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"title":"Built","content":"text"}` {
		t.Errorf("Unexpected JSON: %s", out)
	}
}

func TestLesson_Predicates(t *testing.T) {
	doc := decodeDocument(t, sampleCourse)
	lessons := doc.Course.AllModules()[0].Lessons

	if !lessons[0].HasVideo() || lessons[0].HasFiles() || lessons[0].HasContent() {
		t.Error("Lesson L1 should only have a video")
	}
	if !lessons[0].Video.HasThumbnail() {
		t.Error("Lesson L1 video should have a thumbnail")
	}
	if lessons[1].HasVideo() || !lessons[1].HasFiles() || !lessons[1].HasContent() {
		t.Error("Lesson L2 should have files and content only")
	}

	second := doc.Course.AllModules()[1].Lessons[0]
	if second.Video.HasThumbnail() {
		t.Error("Empty thumbnail should not count as present")
	}
}
