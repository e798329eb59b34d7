package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewEnvelope_Success(t *testing.T) {
	data := map[string]int{"count": 3}
	e := NewEnvelope(true, "Recent analyses", data)

	if !e.Success {
		t.Error("Expected success=true")
	}
	if e.Message != "Recent analyses" {
		t.Errorf("Unexpected message: %s", e.Message)
	}
	if e.Data == nil {
		t.Error("Expected data to be set on success")
	}

	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %s: %v", e.Timestamp, err)
	}
}

func TestNewEnvelope_FailureDropsData(t *testing.T) {
	// Data is present exactly when Success is true, even if the caller
	// passes a payload on failure.
	e := NewEnvelope(false, "validation failed", map[string]string{"leak": "nope"})

	if e.Success {
		t.Error("Expected success=false")
	}
	if e.Data != nil {
		t.Error("Expected data to be dropped on failure")
	}

	encoded, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(encoded), "data") {
		t.Errorf("Failure envelope must omit the data field entirely, got %s", encoded)
	}
	if strings.Contains(string(encoded), "leak") {
		t.Errorf("Failure envelope leaked payload: %s", encoded)
	}
}

func TestNewEnvelope_SuccessWithNilData(t *testing.T) {
	e := NewEnvelope(true, "ok", nil)

	encoded, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// Nil data omits the field rather than emitting "data": null.
	if strings.Contains(string(encoded), `"data"`) {
		t.Errorf("Expected data field omitted for nil payload, got %s", encoded)
	}
}

func TestEnvelope_JSONFieldNames(t *testing.T) {
	e := NewEnvelope(true, "ok", 42)

	encoded, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"success", "message", "timestamp", "data"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected %q field in envelope JSON", key)
		}
	}
}
