package livedata

import (
	"testing"

	"github.com/open-electrochem/picostat/pkg/mscript"
)

func TestNewSampleValueNaNBecomesNull(t *testing.T) {
	v, err := mscript.ParseVariable("ba     nan")
	if err != nil {
		t.Fatal(err)
	}
	sv := NewSampleValue(v)
	if sv.Value != nil {
		t.Errorf("NaN reading must serialize as null, got %v", *sv.Value)
	}

	v, err = mscript.ParseVariable("ba8000064n")
	if err != nil {
		t.Fatal(err)
	}
	sv = NewSampleValue(v)
	// Match the runtime float64 multiply in Value(), not a folded constant.
	want := float64(100) * 1e-9
	if sv.Value == nil || *sv.Value != want {
		t.Errorf("value = %v, want %v", sv.Value, want)
	}
	if sv.TypeID != "ba" || sv.Unit != "A" {
		t.Errorf("type = %q unit = %q", sv.TypeID, sv.Unit)
	}
}

func TestMessageFromJsonBytes(t *testing.T) {
	pkg := mscript.ParseDataPackage("Peb8000001 ;ba8000064n\n")
	if pkg == nil {
		t.Fatal("expected package")
	}
	msg := &Message{
		Kind:      KindSample,
		RunID:     "run-1",
		Timestamp: "2025-01-01T00:00:00Z",
		Sample:    NewSample(0, 0, pkg),
	}
	parsed := MessageFromJsonBytes(msg.ToJsonBytes())
	if parsed == nil {
		t.Fatal("round trip failed")
	}
	if parsed.Sample == nil || len(parsed.Sample.Values) != 2 {
		t.Fatalf("sample = %+v", parsed.Sample)
	}

	if MessageFromJsonBytes([]byte(`{"kind":"bogus"}`)) != nil {
		t.Error("unknown kind must be rejected")
	}
	if MessageFromJsonBytes([]byte(`not json`)) != nil {
		t.Error("invalid JSON must be rejected")
	}
}

func TestRunChecksum(t *testing.T) {
	lines := []string{"Pba8000064n\n", "*\n"}
	a := RunChecksum("e\n", lines)
	b := RunChecksum("e\n", lines)
	if a != b {
		t.Errorf("checksum not stable: %d != %d", a, b)
	}
	if a == RunChecksum("e\n", []string{"Pba8000065n\n", "*\n"}) {
		t.Error("different results should not collide on this input")
	}
}
