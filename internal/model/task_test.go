package model

import (
	"errors"
	"testing"
	"time"
)

func TestAssetTask_GetDurationString(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{0, "—"},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
	}

	for _, test := range tests {
		task := &AssetTask{StartedAt: start, FinishedAt: start.Add(test.elapsed)}
		result := task.GetDurationString()
		if result != test.expected {
			t.Errorf("GetDurationString() with elapsed=%v = %s, expected %s", test.elapsed, result, test.expected)
		}
	}

	unfinished := &AssetTask{StartedAt: start}
	if got := unfinished.GetDurationString(); got != "—" {
		t.Errorf("GetDurationString() for unfinished task = %s, expected —", got)
	}
}

func TestAssetTask_GetDisplayName(t *testing.T) {
	tests := []struct {
		destination string
		url         string
		expected    string
	}{
		{"downloads/0_M1/0_L1/a.pdf", "https://x.test/a.pdf", "a.pdf"},
		{`downloads\0_M1\0_L1\v.mp4`, "https://x.test/v.m3u8", "v.mp4"},
		{"", "https://x.test/a.pdf", "https://x.test/a.pdf"},
	}

	for _, test := range tests {
		task := &AssetTask{Destination: test.destination, URL: test.url}
		result := task.GetDisplayName()
		if result != test.expected {
			t.Errorf("GetDisplayName() with destination='%s' = '%s', expected '%s'", test.destination, result, test.expected)
		}
	}
}

func TestAssetTask_Apply(t *testing.T) {
	task := &AssetTask{Status: FetchStatusFetching, StartedAt: time.Now()}
	task.Apply(Failed(errors.New("exit status 8")))

	if task.Status != FetchStatusFailed {
		t.Errorf("Expected status Failed, got %s", task.Status)
	}
	if task.LastError != "exit status 8" {
		t.Errorf("Expected LastError 'exit status 8', got '%s'", task.LastError)
	}
	if task.FinishedAt.IsZero() {
		t.Error("Expected FinishedAt to be set")
	}
}

func TestRunSummary_Record(t *testing.T) {
	summary := &RunSummary{}
	for _, status := range []FetchStatus{FetchStatusFetched, FetchStatusSkipped, FetchStatusSkipped, FetchStatusFailed, FetchStatusPending} {
		summary.Record(&AssetTask{Status: status})
	}

	if summary.Fetched != 1 || summary.Skipped != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected counts: fetched=%d skipped=%d failed=%d", summary.Fetched, summary.Skipped, summary.Failed)
	}
	if summary.Assets() != 4 {
		t.Errorf("Expected 4 assets, got %d", summary.Assets())
	}
	if !summary.HasFailures() {
		t.Error("Expected HasFailures to be true")
	}
}
