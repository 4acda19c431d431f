package livedata

import (
	"encoding/json"
	"log"
	"math"

	"github.com/open-electrochem/picostat/pkg/mscript"
	"github.com/sigurn/crc16"
)

// Message kinds broadcast by the picostat API.
const (
	KindSample = "sample" // one decoded data package
	KindRun    = "run"    // run summary, sent once the measurement ends
)

// Message is the envelope broadcast to websocket subscribers.
type Message struct {
	Kind      string      `json:"kind"`
	RunID     string      `json:"run_id"`
	Timestamp string      `json:"timestamp"`
	Sample    *Sample     `json:"sample,omitempty"`
	Run       *RunSummary `json:"run,omitempty"`
}

// Sample is one decoded data package, positioned within its run.
type Sample struct {
	Curve  int           `json:"curve"`
	Row    int           `json:"row"`
	Values []SampleValue `json:"values"`
}

// SampleValue is one decoded variable. Value is nil for NaN readings,
// which JSON cannot carry as a number.
type SampleValue struct {
	TypeID string   `json:"type_id"`
	Name   string   `json:"name"`
	Unit   string   `json:"unit"`
	Value  *float64 `json:"value"`
	Text   string   `json:"text"`
}

// RunSummary describes a finished (or timed-out) measurement run.
type RunSummary struct {
	Technique  string `json:"technique"`
	State      string `json:"state"`
	Lines      int    `json:"lines"`
	Curves     int    `json:"curves"`
	Points     int    `json:"points"`
	Checksum   uint16 `json:"checksum"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

// NewSampleValue converts a decoded variable into its wire form.
func NewSampleValue(v mscript.Variable) SampleValue {
	sv := SampleValue{
		TypeID: v.Type.ID,
		Name:   v.Type.Name,
		Unit:   v.Type.Unit,
		Text:   v.ValueString(),
	}
	if value := v.Value(); !math.IsNaN(value) {
		sv.Value = &value
	}
	return sv
}

// NewSample converts one data package into its wire form.
func NewSample(curve, row int, pkg mscript.Package) *Sample {
	values := make([]SampleValue, len(pkg))
	for i, v := range pkg {
		values[i] = NewSampleValue(v)
	}
	return &Sample{Curve: curve, Row: row, Values: values}
}

func (m *Message) ToJsonBytes() []byte {
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("Error marshaling live data message: %v", err)
		return nil
	}
	return data
}

// MessageFromJsonBytes parses a broadcast message, returning nil if the
// payload is not one.
func MessageFromJsonBytes(data []byte) *Message {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if m.Kind != KindSample && m.Kind != KindRun {
		return nil
	}
	return &m
}

// RunChecksum fingerprints the raw text of a run (script plus result lines)
// so re-imports of the same run can be detected.
func RunChecksum(script string, lines []string) uint16 {
	table := crc16.MakeTable(crc16.CRC16_ARC)
	crc := crc16.Init(table)
	crc = crc16.Update(crc, []byte(script), table)
	for _, line := range lines {
		crc = crc16.Update(crc, []byte(line), table)
	}
	return crc16.Complete(crc, table)
}
