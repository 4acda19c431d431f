package mscript

import (
	"math"
	"testing"
)

func TestParseVariableOffsetDecoding(t *testing.T) {
	// The 2^27 offset is subtracted for every reading, whatever the type.
	tests := []struct {
		token    string
		rawValue float64
		value    float64
	}{
		{"eb0000000 ", -134217728, -134217728},
		{"eb8000000 ", 0, 0},
		{"ab8000001 ", 1, 1},
		{"ba7ffffffn", -1, -1e-9},
		{"baFFFFFFFu", 134217727, 134217727e-6},
		{"da8010000m", 65536, 65.536},
	}
	for _, tt := range tests {
		v, err := ParseVariable(tt.token)
		if err != nil {
			t.Fatalf("ParseVariable(%q): %v", tt.token, err)
		}
		if v.RawValue != tt.rawValue {
			t.Errorf("ParseVariable(%q) raw = %v, want %v", tt.token, v.RawValue, tt.rawValue)
		}
		if v.Value() != tt.value {
			t.Errorf("ParseVariable(%q) value = %v, want %v", tt.token, v.Value(), tt.value)
		}
	}
}

func TestParseVariableSIPrefixes(t *testing.T) {
	prefixes := map[byte]float64{
		'a': 1e-18, 'f': 1e-15, 'p': 1e-12, 'n': 1e-9, 'u': 1e-6, 'm': 1e-3,
		' ': 1, 'k': 1e3, 'M': 1e6, 'G': 1e9, 'T': 1e12, 'P': 1e15, 'E': 1e18,
		'i': 1,
	}
	for prefix, factor := range prefixes {
		token := "ba8000064" + string(prefix) // raw value 100
		v, err := ParseVariable(token)
		if err != nil {
			t.Fatalf("ParseVariable(%q): %v", token, err)
		}
		if want := 100 * factor; v.Value() != want {
			t.Errorf("prefix %q: value = %v, want %v", prefix, v.Value(), want)
		}
	}
}

func TestParseVariableNaN(t *testing.T) {
	v, err := ParseVariable("ba     nan")
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(v.RawValue) || !math.IsNaN(v.Value()) {
		t.Errorf("expected NaN, got raw=%v value=%v", v.RawValue, v.Value())
	}
	if v.SIPrefix != ' ' {
		t.Errorf("NaN prefix = %q, want ' '", v.SIPrefix)
	}
}

func TestParseVariableUnknownTypeTolerated(t *testing.T) {
	v, err := ParseVariable("zz8000001 ")
	if err != nil {
		t.Fatalf("unknown type id must not fail decoding: %v", err)
	}
	if v.Type.ID != "zz" || v.Type.Name != "unknown" || v.Type.Unit != "" {
		t.Errorf("unexpected placeholder type: %+v", v.Type)
	}
}

func TestParseVariableMetadata(t *testing.T) {
	v, err := ParseVariable("ba8000064n,12,210")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Metadata.HasStatus || v.Metadata.Status != 2 {
		t.Errorf("status = %+v, want 2", v.Metadata)
	}
	if !v.Metadata.HasCurrentRange || v.Metadata.CurrentRange != 16 {
		t.Errorf("current range = %+v, want 16", v.Metadata)
	}

	// Tokens of the wrong shape are ignored, not errors.
	v, err = ParseVariable("ba8000064n,999,3x")
	if err != nil {
		t.Fatal(err)
	}
	if v.Metadata.HasStatus || v.Metadata.HasCurrentRange {
		t.Errorf("unexpected metadata parsed: %+v", v.Metadata)
	}
}

func TestParseVariableErrors(t *testing.T) {
	tokens := []string{
		"ba80000",    // too short
		"ba800g064n", // non-hex digit
		"ba8000064q", // unknown SI prefix
	}
	for _, token := range tokens {
		if _, err := ParseVariable(token); err == nil {
			t.Errorf("ParseVariable(%q): expected error", token)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"ba8000064n", "100 nA"},
		{"ab8000001 ", "1 V"},
		{"ea8000005i", "5"},
		{"ba     nan", "NaN A"},
	}
	for _, tt := range tests {
		v, err := ParseVariable(tt.token)
		if err != nil {
			t.Fatal(err)
		}
		if got := v.ValueString(); got != tt.want {
			t.Errorf("ValueString(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestParseDataPackageRejectsNonPackageLines(t *testing.T) {
	lines := []string{
		"*\n",              // terminator
		"ba8000064n\n",     // missing leading P
		"Pba8000064n",      // missing line terminator
		"",                 // empty
		"M 37 2097152 0\n", // status line
	}
	for _, line := range lines {
		if pkg := ParseDataPackage(line); pkg != nil {
			t.Errorf("ParseDataPackage(%q) = %v, want nil", line, pkg)
		}
	}
}

func TestParseDataPackageDropsWholeLineOnBadToken(t *testing.T) {
	// One malformed token poisons the line: a partial package would
	// misalign columns.
	if pkg := ParseDataPackage("Pba8000064n;abXYZ0001 \n"); pkg != nil {
		t.Errorf("expected nil for line with malformed token, got %v", pkg)
	}
}

func TestParseDataPackage(t *testing.T) {
	pkg := ParseDataPackage("Peb0000001 ;ba2000000n,10,20a\n")
	if pkg == nil {
		t.Fatal("expected package")
	}
	if len(pkg) != 2 {
		t.Fatalf("len = %d, want 2", len(pkg))
	}
	if pkg[0].Type.ID != "eb" || pkg[1].Type.ID != "ba" {
		t.Errorf("unexpected column types: %s, %s", pkg[0].Type.ID, pkg[1].Type.ID)
	}
	if !pkg[1].Metadata.HasStatus || pkg[1].Metadata.Status != 0 {
		t.Errorf("metadata = %+v", pkg[1].Metadata)
	}
	if !pkg[1].Metadata.HasCurrentRange || pkg[1].Metadata.CurrentRange != 10 {
		t.Errorf("metadata = %+v", pkg[1].Metadata)
	}
}

func TestParseResultLinesCurveSegmentation(t *testing.T) {
	lines := []string{
		"*\n", // stray leading terminator, no empty curve
		"Pba8000064n\n",
		"Pba8000065n\n",
		"*\n",
		"*\n", // repeated terminator, no empty curve
		"Pba8000066n\n",
		"+\n",
	}
	curves := ParseResultLines(lines)
	if len(curves) != 2 {
		t.Fatalf("got %d curves, want 2", len(curves))
	}
	if len(curves[0]) != 2 || len(curves[1]) != 1 {
		t.Errorf("curve sizes = %d, %d; want 2, 1", len(curves[0]), len(curves[1]))
	}
}

func TestParseResultLinesAllTerminators(t *testing.T) {
	for _, term := range []string{"+\n", "*\n", "-\n"} {
		curves := ParseResultLines([]string{"Pba8000064n\n", term})
		if len(curves) != 1 {
			t.Errorf("terminator %q: got %d curves, want 1", term, len(curves))
		}
	}
}

func TestParseResultLinesDropsUnterminatedTrailingCurve(t *testing.T) {
	// A curve is only closed by an explicit terminator; a truncated read
	// loses its last partial curve.
	curves := ParseResultLines([]string{"Pba8000064n\n", "Pba8000065n\n"})
	if len(curves) != 0 {
		t.Fatalf("got %d curves, want 0", len(curves))
	}
}

func TestValuesByColumnFlattening(t *testing.T) {
	lines := []string{
		"Peb8000001 \n",
		"Peb8000002 \n",
		"-\n",
		"Peb8000003 \n",
		"Peb8000004 \n",
		"Peb8000005 \n",
		"*\n",
	}
	curves := ParseResultLines(lines)
	got := ValuesByColumn(curves, 0)
	want := []float64{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	second := CurveValuesByColumn(curves, 0, 1)
	if len(second) != 3 || second[0] != 3 || second[2] != 5 {
		t.Errorf("curve 1 column 0 = %v", second)
	}
}

func TestParseResultLinesDeviceCapture(t *testing.T) {
	// Literal device-captured lines; regression for the unconditional
	// offset subtraction.
	lines := []string{
		"Paa0000001 ;ab0200000 ;ba0000020n\n",
		"Paa0000002 ;ab0200000 ;ba0000019n\n",
		"*\n",
	}
	curves := ParseResultLines(lines)
	if len(curves) != 1 {
		t.Fatalf("got %d curves, want 1", len(curves))
	}
	if len(curves[0]) != 2 {
		t.Fatalf("got %d packages, want 2", len(curves[0]))
	}

	aa := ValuesByColumn(curves, 0)
	wantAA := []float64{0x0000001 - 134217728, 0x0000002 - 134217728}
	for i := range wantAA {
		if aa[i] != wantAA[i] {
			t.Errorf("aa[%d] = %v, want %v", i, aa[i], wantAA[i])
		}
	}

	ba := ValuesByColumn(curves, 2)
	// Scaling happens at runtime as a float64 multiply; expectations must
	// round the same way, so no constant folding here.
	wantBA := []float64{
		float64(0x0000020-134217728) * 1e-9,
		float64(0x0000019-134217728) * 1e-9,
	}
	for i := range wantBA {
		if ba[i] != wantBA[i] {
			t.Errorf("ba[%d] = %v, want %v", i, ba[i], wantBA[i])
		}
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "OK"},
		{0x1, "TIMING_ERROR"},
		{0x6, "OVERLOAD | UNDERLOAD"},
		{0xf, "TIMING_ERROR | OVERLOAD | UNDERLOAD | OVERLOAD_WARNING"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.status); got != tt.want {
			t.Errorf("StatusText(%#x) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestRangeText(t *testing.T) {
	ba := VariableType("ba")
	ab := VariableType("ab")
	tests := []struct {
		device string
		vt     VarType
		code   int
		want   string
	}{
		{"EmStat Pico", ba, 0, "100 nA"},
		{"EmStat Pico", ba, 137, "5 mA (High speed)"},
		{"EmStat4 LR", ba, 9, "100 nA"},
		{"EmStat4 HR", ab, 6, "1 V"},
		{"EmStat Pico", ba, 99, "UNKNOWN CURRENT RANGE"},
		{"SomethingElse", ba, 0, "UNKNOWN CURRENT RANGE"},
	}
	for _, tt := range tests {
		if got := RangeText(tt.device, tt.vt, tt.code); got != tt.want {
			t.Errorf("RangeText(%q, %s, %d) = %q, want %q", tt.device, tt.vt.ID, tt.code, got, tt.want)
		}
	}
}
