// Package mscript decodes the measurement telemetry streamed back by
// MethodSCRIPT potentiostats (EmStat Pico and related devices).
//
// The device sends one record per '\n'-terminated ASCII line. A data package
// line starts with 'P' and carries ';'-separated variable tokens; a line
// starting with '+', '*' or '-' terminates the current curve. Use
// ParseResultLines to turn the raw lines of a measurement into curves and
// ValuesByColumn to extract a single column for further processing.
package mscript

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The raw value on the wire is an unsigned 7-digit hex number with a fixed
// offset of 2^27. The offset is subtracted for every variable type without
// exception; downstream consumers are calibrated to this exact arithmetic.
const rawValueOffset = 134217728 // 2^27

// An 8-character literal in the value+prefix region marks a NaN reading.
const nanSentinel = "     nan"

// ParseVariable decodes a single variable token from a data package.
//
// The token layout is a 2-character type id, 7 hexadecimal value digits,
// 1 SI prefix character and zero or more ','-separated metadata tokens.
func ParseVariable(data string) (Variable, error) {
	if len(data) < 10 {
		return Variable{}, fmt.Errorf("variable token too short: %q", data)
	}
	v := Variable{Type: VariableType(data[0:2])}

	if data[2:10] == nanSentinel {
		v.RawValue = math.NaN()
		v.SIPrefix = ' '
	} else {
		raw, err := decodeRawValue(data[2:9])
		if err != nil {
			return Variable{}, err
		}
		v.RawValue = float64(raw)
		v.SIPrefix = data[9]
		if _, ok := siPrefixFactor[v.SIPrefix]; !ok {
			return Variable{}, fmt.Errorf("unknown SI prefix %q in token %q", v.SIPrefix, data)
		}
	}

	// The first ','-split element is the value itself, the rest is metadata.
	v.Metadata = parseMetadata(strings.Split(data, ",")[1:])
	return v, nil
}

// decodeRawValue converts the 7 hexadecimal value digits to the signed
// integer reading by subtracting the fixed offset.
func decodeRawValue(s string) (int64, error) {
	if len(s) != 7 {
		return 0, fmt.Errorf("raw value must be 7 hex digits, got %q", s)
	}
	u, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid raw value %q: %w", s, err)
	}
	return int64(u) - rawValueOffset, nil
}

// parseMetadata interprets the optional metadata tokens of a variable.
// A 2-character token starting with '1' carries the status bitmask,
// a 3-character token starting with '2' carries the range code.
// Unrecognized tokens are ignored.
func parseMetadata(tokens []string) Metadata {
	var md Metadata
	for _, token := range tokens {
		if len(token) == 2 && token[0] == '1' {
			if value, err := strconv.ParseInt(token[1:], 16, 32); err == nil {
				md.Status = int(value)
				md.HasStatus = true
			}
		}
		if len(token) == 3 && token[0] == '2' {
			if value, err := strconv.ParseInt(token[1:], 16, 32); err == nil {
				md.CurrentRange = int(value)
				md.HasCurrentRange = true
			}
		}
	}
	return md
}

// Value returns the reading scaled by its SI prefix. NaN propagates.
func (v Variable) Value() float64 {
	return v.RawValue * siPrefixFactor[v.SIPrefix]
}

// ValueString renders the variable the way the device documentation does:
// raw value plus prefix and unit when a unit is known, plain number otherwise.
func (v Variable) ValueString() string {
	if v.Type.Unit == "" {
		return strconv.FormatFloat(v.Value(), 'g', 9, 64)
	}
	if siPrefixFactor[v.SIPrefix] == 1 {
		if math.IsNaN(v.RawValue) {
			return "NaN " + v.Type.Unit
		}
		return fmt.Sprintf("%d %s", int64(v.RawValue), v.Type.Unit)
	}
	return fmt.Sprintf("%d %c%s", int64(v.RawValue), v.SIPrefix, v.Type.Unit)
}

// ParseDataPackage parses one line as a MethodSCRIPT data package.
//
// A package line starts with 'P', ends with '\n' and contains ';'-separated
// variable tokens. It returns nil if the line is not a data package, or if
// any token in it fails to decode: a partially decoded package would shift
// the remaining columns and silently corrupt every downstream consumer, so
// the whole line is dropped instead.
func ParseDataPackage(line string) Package {
	if !strings.HasPrefix(line, "P") || !strings.HasSuffix(line, "\n") {
		return nil
	}
	tokens := strings.Split(line[1:len(line)-1], ";")
	pkg := make(Package, 0, len(tokens))
	for _, token := range tokens {
		v, err := ParseVariable(token)
		if err != nil {
			return nil
		}
		pkg = append(pkg, v)
	}
	return pkg
}

// ParseResultLines groups the raw lines of a measurement into curves.
//
// Terminator lines close the current curve:
//
//	'+' end of loop
//	'*' end of measurement loop
//	'-' end of scan, within a measurement loop with nscans(>1)
//
// Repeated terminators never produce empty curves. Lines that are neither
// terminators nor valid data packages are ignored. A trailing curve that was
// never closed by a terminator is dropped: an unterminated read means the
// device did not finish the segment, and emitting it would present a
// truncated scan as a complete one.
func ParseResultLines(lines []string) []Curve {
	var curves []Curve
	var current Curve
	for _, line := range lines {
		if len(line) > 0 && (line[0] == '+' || line[0] == '*' || line[0] == '-') {
			if len(current) > 0 {
				curves = append(curves, current)
				current = nil
			}
			continue
		}
		if pkg := ParseDataPackage(line); pkg != nil {
			current = append(current, pkg)
		}
	}
	return curves
}

// ValuesByColumn returns the scaled value of the given column from every
// package of every curve, flattened in curve order then row order.
// An out-of-range column is a programming error and panics.
func ValuesByColumn(curves []Curve, column int) []float64 {
	var values []float64
	for _, curve := range curves {
		for _, row := range curve {
			values = append(values, row[column].Value())
		}
	}
	return values
}

// CurveValuesByColumn returns the scaled value of the given column from
// every package of a single curve, in row order.
func CurveValuesByColumn(curves []Curve, column int, icurve int) []float64 {
	curve := curves[icurve]
	values := make([]float64, 0, len(curve))
	for _, row := range curve {
		values = append(values, row[column].Value())
	}
	return values
}
