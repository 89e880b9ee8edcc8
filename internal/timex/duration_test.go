package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"168h"`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != 168*time.Hour {
		t.Fatalf("got %v, want 168h", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Nanoseconds(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != time.Second {
		t.Fatalf("got %v, want 1s", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatal("expected error for invalid duration string")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatal("expected error for bool value")
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 2 * time.Hour})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(b) != `"2h0m0s"` {
		t.Fatalf("got %s", b)
	}
}
