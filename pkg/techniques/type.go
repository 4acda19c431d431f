package techniques

import "fmt"

// Model selects the instrument variant whose limits apply during validation.
// It replaces the implicit process-wide model selection of older tooling:
// callers pass the model spec explicitly to Validate.
type Model int

const (
	PicoLowRange Model = iota
	PicoHighRange
)

// ModelFromName resolves the config file's device_model value.
func ModelFromName(name string) (Model, error) {
	switch name {
	case "low_range":
		return PicoLowRange, nil
	case "high_range":
		return PicoHighRange, nil
	default:
		return 0, fmt.Errorf("unknown device model %q (expected \"low_range\" or \"high_range\")", name)
	}
}

// ModelSpec is the closed set of limits for one instrument model.
type ModelSpec struct {
	Name string

	// Potential window, V.
	EMin, EMax float64
	// Measurable current, A.
	IMin, IMax float64
	// Compliance voltage, V.
	ComplianceVoltage float64
	// EIS frequency window, Hz.
	FreqMin, FreqMax float64
	// Scan rate, V/s.
	ScanRateMin, ScanRateMax float64
	// Potential step, V.
	EStepMin, EStepMax float64
	// Sampling interval, s.
	DtMin, DtMax float64
	// Total run time, s.
	TtotMin, TtotMax float64
}

// Spec returns the limits for the given model. Low range is the default
// variant of the EmStat Pico.
func Spec(m Model) ModelSpec {
	spec := ModelSpec{
		Name:              "EmStat Pico (low range)",
		EMin:              -3.0,
		EMax:              3.0,
		IMin:              1e-9,
		IMax:              0.01,
		ComplianceVoltage: 5.0,
		FreqMin:           1e-8,
		FreqMax:           200000,
		ScanRateMin:       1e-6,
		ScanRateMax:       10.0,
		EStepMin:          0.0001,
		EStepMax:          0.25,
		DtMin:             0.0001,
		DtMax:             300,
		TtotMin:           0.001,
		TtotMax:           86400,
	}
	if m == PicoHighRange {
		spec.Name = "EmStat Pico (high range)"
		spec.EMin = -6.0
		spec.EMax = 6.0
		spec.IMin = 1e-7
		spec.IMax = 0.1
		spec.ComplianceVoltage = 8.0
	}
	return spec
}

// PgstatMode selects the pgstat operating mode in generated scripts.
type PgstatMode int

const (
	ModeLowSpeed  PgstatMode = 2
	ModeHighSpeed PgstatMode = 3
	ModeMaxRange  PgstatMode = 4
)

// RangeError reports a technique parameter outside the model's limits.
type RangeError struct {
	Param string
	Unit  string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s should be between %g %s and %g %s, received %g %s",
		e.Param, e.Min, e.Unit, e.Max, e.Unit, e.Value, e.Unit)
}

// CV holds cyclic voltammetry parameters, in SI units.
type CV struct {
	EIni    float64 // initial potential, V
	EV1     float64 // first vertex, V
	EV2     float64 // second vertex, V
	EFin    float64 // final potential, V
	SR      float64 // scan rate, V/s
	EStep   float64 // potential step, V
	NSweeps int
	Mode    PgstatMode // zero value selects max range
}

// LSV holds linear sweep voltammetry parameters, in SI units.
type LSV struct {
	EIni  float64
	EFin  float64
	SR    float64
	EStep float64
	Mode  PgstatMode
}

// CA holds chronoamperometry parameters, in SI units.
type CA struct {
	EStep float64 // applied potential, V
	Dt    float64 // sampling interval, s
	Ttot  float64 // total time, s
	Mode  PgstatMode
}

// OCP holds open-circuit potential parameters, in SI units.
type OCP struct {
	Dt   float64
	Ttot float64
}

// EIS holds impedance spectroscopy parameters. The generated script is the
// fixed per-channel program used by the reference tooling.
type EIS struct {
	EDC       float64 // DC potential, V
	Channel   int     // pgstat channel, 0 or 1
	FreqLow   float64 // Hz
	FreqHigh  float64 // Hz
	Amplitude float64 // Vrms
}
