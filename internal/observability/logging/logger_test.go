package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "classify", "warn")

	logger.Info("hidden")
	logger.Warn("batch_item_rejected", "file_name", "a.txt")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["service"] != "classify" || record["msg"] != "batch_item_rejected" || record["file_name"] != "a.txt" {
		t.Fatalf("unexpected record: %v", record)
	}
}
