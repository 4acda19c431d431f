package mscript

// VarType describes a MethodSCRIPT variable type as reported by the device.
type VarType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Metadata holds the optional metadata tokens attached to a variable.
// Status is a bitmask of the METADATA_STATUS flags, CurrentRange is a
// device-specific range code. The Has* flags distinguish "zero" from "absent".
type Metadata struct {
	Status          int  `json:"status,omitempty"`
	HasStatus       bool `json:"has_status,omitempty"`
	CurrentRange    int  `json:"current_range,omitempty"`
	HasCurrentRange bool `json:"has_current_range,omitempty"`
}

// Variable is a single decoded MethodSCRIPT variable from a data package.
// RawValue is the offset-corrected integer reading (or NaN), SIPrefix the
// scaling character that was attached to it on the wire.
type Variable struct {
	Type     VarType  `json:"type"`
	RawValue float64  `json:"raw_value"`
	SIPrefix byte     `json:"si_prefix"`
	Metadata Metadata `json:"metadata"`
}

// Package is one data package: the ordered variables of a single sample row.
// Columns are positional; their meaning is stable within one curve only.
type Package []Variable

// Curve is one contiguous run of data packages between two terminator lines.
type Curve []Package
