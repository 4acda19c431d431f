package mscript

import (
	"log"
	"strings"
)

// Multiplication factors for the SI prefix characters used on the wire.
// ' ' means no prefix and 'i' marks a plain integer value; both scale by 1.
var siPrefixFactor = map[byte]float64{
	'a': 1e-18,
	'f': 1e-15,
	'p': 1e-12,
	'n': 1e-9,
	'u': 1e-6,
	'm': 1e-3,
	' ': 1e0,
	'k': 1e3,
	'M': 1e6,
	'G': 1e9,
	'T': 1e12,
	'P': 1e15,
	'E': 1e18,
	'i': 1e0,
}

// Known MethodSCRIPT variable types.
var varTypes = []VarType{
	{"aa", "unknown", ""},
	{"ab", "WE vs RE potential", "V"},
	{"ac", "CE vs GND potential", "V"},
	{"ad", "SE vs GND potential", "V"},
	{"ae", "RE vs GND potential", "V"},
	{"af", "WE vs GND potential", "V"},
	{"ag", "WE vs CE potential", "V"},
	{"as", "AIN0 potential", "V"},
	{"at", "AIN1 potential", "V"},
	{"au", "AIN2 potential", "V"},
	{"av", "AIN3 potential", "V"},
	{"aw", "AIN4 potential", "V"},
	{"ax", "AIN5 potential", "V"},
	{"ay", "AIN6 potential", "V"},
	{"az", "AIN7 potential", "V"},
	{"ba", "WE current", "A"},
	{"ca", "Phase", "degrees"},
	{"cb", "Impedance", "Ω"},
	{"cc", "Z_real", "Ω"},
	{"cd", "Z_imag", "Ω"},
	{"ce", "EIS E TDD", "V"},
	{"cf", "EIS I TDD", "A"},
	{"cg", "EIS sampling frequency", "Hz"},
	{"ch", "EIS E AC", "Vrms"},
	{"ci", "EIS E DC", "V"},
	{"cj", "EIS I AC", "Arms"},
	{"ck", "EIS I DC", "A"},
	{"da", "Applied potential", "V"},
	{"db", "Applied current", "A"},
	{"dc", "Applied frequency", "Hz"},
	{"dd", "Applied AC amplitude", "Vrms"},
	{"ea", "Channel", ""},
	{"eb", "Time", "s"},
	{"ec", "Pin mask", ""},
	{"ed", "Temperature", "° Celsius"},
	{"ha", "Generic current 1", "A"},
	{"hb", "Generic current 2", "A"},
	{"hc", "Generic current 3", "A"},
	{"hd", "Generic current 4", "A"},
	{"ia", "Generic potential 1", "V"},
	{"ib", "Generic potential 2", "V"},
	{"ic", "Generic potential 3", "V"},
	{"id", "Generic potential 4", "V"},
	{"ja", "Misc. generic 1", ""},
	{"jb", "Misc. generic 2", ""},
	{"jc", "Misc. generic 3", ""},
	{"jd", "Misc. generic 4", ""},
}

var varTypesByID = func() map[string]VarType {
	m := make(map[string]VarType, len(varTypes))
	for _, vt := range varTypes {
		m[vt.ID] = vt
	}
	return m
}()

// Metadata status bitmask flags.
var statusFlags = []struct {
	Mask int
	Text string
}{
	{0x1, "TIMING_ERROR"},
	{0x2, "OVERLOAD"},
	{0x4, "UNDERLOAD"},
	{0x8, "OVERLOAD_WARNING"},
}

// Current range codes for the EmStat Pico.
var currentRangesPico = map[int]string{
	0:   "100 nA",
	1:   "2 uA",
	2:   "4 uA",
	3:   "8 uA",
	4:   "16 uA",
	5:   "32 uA",
	6:   "63 uA",
	7:   "125 uA",
	8:   "250 uA",
	9:   "500 uA",
	10:  "1 mA",
	11:  "5 mA",
	128: "100 nA (High speed)",
	129: "1 uA (High speed)",
	130: "6 uA (High speed)",
	131: "13 uA (High speed)",
	132: "25 uA (High speed)",
	133: "50 uA (High speed)",
	134: "100 uA (High speed)",
	135: "200 uA (High speed)",
	136: "1 mA (High speed)",
	137: "5 mA (High speed)",
}

// Current range codes for the EmStat4 series.
// 3 and 6 exist on the LR model only, 27 on the HR model only.
var currentRangesEmstat4 = map[int]string{
	3:  "1 nA",
	6:  "10 nA",
	9:  "100 nA",
	12: "1 uA",
	15: "10 uA",
	18: "100 uA",
	21: "1 mA",
	24: "10 mA",
	27: "100 mA",
}

// Potential range codes for the EmStat4 series.
var potentialRangesEmstat4 = map[int]string{
	2: "50 mV",
	3: "100 mV",
	4: "200 mV",
	5: "500 mV",
	6: "1 V",
}

// VariableType looks up the variable type for a two-letter id.
// Unknown ids are not an error: a placeholder type with an empty unit
// is returned and a warning is logged.
func VariableType(id string) VarType {
	if vt, ok := varTypesByID[id]; ok {
		return vt
	}
	log.Printf("Warning: unsupported variable type id %q", id)
	return VarType{ID: id, Name: "unknown", Unit: ""}
}

// StatusText renders a metadata status bitmask as human-readable text.
func StatusText(status int) string {
	text := ""
	for _, flag := range statusFlags {
		if status&flag.Mask != 0 {
			if text != "" {
				text += " | "
			}
			text += flag.Text
		}
	}
	if text == "" {
		return "OK"
	}
	return text
}

// RangeText renders a metadata range code as human-readable text.
// For EmStat4 devices the code is a potential range for potential-type
// variables (ab, cd) and a current range otherwise.
func RangeText(deviceType string, varType VarType, code int) string {
	var text string
	var ok bool
	switch {
	case deviceType == "EmStat Pico":
		text, ok = currentRangesPico[code]
	case strings.Contains(deviceType, "EmStat4"):
		if varType.ID == "ab" || varType.ID == "cd" {
			text, ok = potentialRangesEmstat4[code]
		} else {
			text, ok = currentRangesEmstat4[code]
		}
	}
	if !ok {
		return "UNKNOWN CURRENT RANGE"
	}
	return text
}
