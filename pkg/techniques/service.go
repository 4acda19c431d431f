// Package techniques assembles MethodSCRIPT programs for the standard
// electrochemical techniques. Builders are pure: a parameter record in,
// script text out. Range validation is a separate explicit step so callers
// can check parameters against a model's limits before touching the device.
package techniques

import (
	"fmt"
	"os"

	"github.com/open-electrochem/picostat/pkg/eunits"
)

func (m PgstatMode) orDefault() PgstatMode {
	if m == 0 {
		return ModeMaxRange
	}
	return m
}

func checkLimits(val, low, high float64, param, unit string) error {
	if val < low || val > high {
		return &RangeError{Param: param, Unit: unit, Value: val, Min: low, Max: high}
	}
	return nil
}

// Validate checks the sweep potentials against the model's window.
func (p CV) Validate(spec ModelSpec) error {
	for _, check := range []struct {
		val   float64
		param string
	}{
		{p.EIni, "Eini"}, {p.EV1, "Ev1"}, {p.EV2, "Ev2"}, {p.EFin, "Efin"},
	} {
		if err := checkLimits(check.val, spec.EMin, spec.EMax, check.param, "V"); err != nil {
			return err
		}
	}
	return nil
}

// Script builds the CV measurement program.
func (p CV) Script() string {
	eIni := eunits.VToMilliV(p.EIni)
	return "e\nvar c\nvar p\nvar a\n" +
		fmt.Sprintf("set_pgstat_mode %d", p.Mode.orDefault()) +
		"\nset_autoranging ba 100n 5m" +
		fmt.Sprintf("\nset_e %dm\ncell_on\nwait 2\ntimer_start", eIni) +
		fmt.Sprintf("\nmeas_loop_cv p c %dm %dm %dm %dm %dm nscans(%d)",
			eIni,
			eunits.VToMilliV(p.EV1),
			eunits.VToMilliV(p.EV2),
			eunits.VToMilliV(p.EStep),
			eunits.VPerSToMilli(p.SR),
			p.NSweeps-1) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_end\nendloop\n" +
		"on_finished:\ncell_off\n\n"
}

// BipotScript builds the CV program for bipotentiostat operation with the
// second working electrode held at e2 (V). Validate e2 with ValidateBipot.
func (p CV) BipotScript(e2 float64) string {
	eIni := eunits.VToMilliV(p.EIni)
	return "e\nvar c\nvar p\nvar a\n" +
		bipotPreBody(eunits.VToMilliV(e2), eIni) +
		fmt.Sprintf("\nmeas_loop_cv p c %dm %dm %dm %dm %dm nscans(%d) poly_we(1 b)",
			eIni,
			eunits.VToMilliV(p.EV1),
			eunits.VToMilliV(p.EV2),
			eunits.VToMilliV(p.EStep),
			eunits.VPerSToMilli(p.SR),
			p.NSweeps) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_add b\n\tpck_end\nendloop\n" +
		"on_finished:\ncell_off\n\n"
}

// bipotPreBody is the channel setup shared by all bipot variants: channel 1
// as the fixed second working electrode, channel 0 running the sweep.
func bipotPreBody(e2MilliV, eMilliV int) string {
	return "var b\nset_pgstat_chan 1" +
		"\nset_pgstat_mode 5" +
		"\nset_poly_we_mode 0" +
		fmt.Sprintf("\nset_e %dm", e2MilliV) +
		"\nset_autoranging ba 100n 5m" +
		"\nset_pgstat_chan 0\nset_pgstat_mode 2" +
		fmt.Sprintf("\nset_autoranging ba 100n 5m\nset_e %dm", eMilliV) +
		"\ntimer_start\ncell_on"
}

// ValidateBipot checks the second working electrode potential.
func ValidateBipot(spec ModelSpec, e2 float64) error {
	return checkLimits(e2, spec.EMin, spec.EMax, "E2", "V")
}

// Validate checks the sweep potentials, scan rate and potential step.
func (p LSV) Validate(spec ModelSpec) error {
	if err := checkLimits(p.EIni, spec.EMin, spec.EMax, "Eini", "V"); err != nil {
		return err
	}
	if err := checkLimits(p.EFin, spec.EMin, spec.EMax, "Efin", "V"); err != nil {
		return err
	}
	if err := checkLimits(p.SR, spec.ScanRateMin, spec.ScanRateMax, "sr", "V/s"); err != nil {
		return err
	}
	return checkLimits(p.EStep, spec.EStepMin, spec.EStepMax, "dE", "V")
}

// Script builds the LSV measurement program.
func (p LSV) Script() string {
	eIni := eunits.VToMilliV(p.EIni)
	return "e\nvar c\nvar p\nvar a\n" +
		fmt.Sprintf("set_pgstat_mode %d", p.Mode.orDefault()) +
		"\nset_autoranging ba 100n 5m" +
		fmt.Sprintf("\nset_e %dm\ncell_on\ntimer_start", eIni) +
		fmt.Sprintf("\nmeas_loop_lsv p c %dm %dm %dm %dm",
			eIni,
			eunits.VToMilliV(p.EFin),
			eunits.VToMilliV(p.EStep),
			eunits.VPerSToMilli(p.SR)) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_end\nendloop\n" +
		"on_finished:\ncell_off\n\n"
}

// BipotScript builds the LSV program for bipotentiostat operation.
func (p LSV) BipotScript(e2 float64) string {
	eIni := eunits.VToMilliV(p.EIni)
	return "e\nvar c\nvar p\nvar a\n" +
		bipotPreBody(eunits.VToMilliV(e2), eIni) +
		fmt.Sprintf("\nmeas_loop_lsv p c %dm %dm %dm %dm poly_we(1 b)",
			eIni,
			eunits.VToMilliV(p.EFin),
			eunits.VToMilliV(p.EStep),
			eunits.VPerSToMilli(p.SR)) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_add b\n\tpck_end\nendloop\n" +
		"on_finished:\ncell_off\n\n"
}

// Validate checks the applied potential and timing parameters.
func (p CA) Validate(spec ModelSpec) error {
	if err := checkLimits(p.EStep, spec.EMin, spec.EMax, "Estep", "V"); err != nil {
		return err
	}
	if err := checkLimits(p.Dt, spec.DtMin, spec.DtMax, "dt", "s"); err != nil {
		return err
	}
	return checkLimits(p.Ttot, spec.TtotMin, spec.TtotMax, "ttot", "s")
}

// Script builds the CA measurement program.
func (p CA) Script() string {
	eStep := eunits.VToMilliV(p.EStep)
	return "e\nvar p\nvar c\nvar a\n" +
		fmt.Sprintf("set_pgstat_mode %d", p.Mode.orDefault()) +
		"\nset_autoranging ba 100n 5m" +
		fmt.Sprintf("\nset_e %dm\ncell_on\ntimer_start", eStep) +
		fmt.Sprintf("\nmeas_loop_ca p c %dm %dm %dm",
			eStep,
			eunits.SToMilliS(p.Dt),
			eunits.SToMilliS(p.Ttot)) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_end\n\tendloop" +
		"\non_finished:\ncell_off\n\n"
}

// BipotScript builds the CA program for bipotentiostat operation.
func (p CA) BipotScript(e2 float64) string {
	eStep := eunits.VToMilliV(p.EStep)
	return "e\nvar p\nvar c\nvar a\n" +
		bipotPreBody(eunits.VToMilliV(e2), eStep) +
		fmt.Sprintf("\nmeas_loop_ca p c %dm %dm %dm poly_we(1 b)",
			eStep,
			eunits.SToMilliS(p.Dt),
			eunits.SToMilliS(p.Ttot)) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p\n\tpck_add c\n\tpck_add b\n\tpck_end\nendloop\n" +
		"on_finished:\ncell_off\n\n"
}

// Validate checks the timing parameters.
func (p OCP) Validate(spec ModelSpec) error {
	if err := checkLimits(p.Dt, spec.DtMin, spec.DtMax, "dt", "s"); err != nil {
		return err
	}
	return checkLimits(p.Ttot, spec.TtotMin, spec.TtotMax, "ttot", "s")
}

// Script builds the OCP measurement program. The cell stays off: OCP
// measures the rest potential.
func (p OCP) Script() string {
	return "e\nvar p\nvar a\n" +
		"set_pgstat_mode 4\ncell_off\ntimer_start\n" +
		fmt.Sprintf("meas_loop_ocp p %dm %dm ",
			eunits.SToMilliS(p.Dt),
			eunits.SToMilliS(p.Ttot)) +
		"\n\tpck_start\n\ttimer_get a\n\tpck_add a\n\tpck_add p" +
		"\n\tpck_end\nendloop\non_finished:\ncell_off\n\n"
}

// Validate checks the DC potential, frequency window and channel.
func (p EIS) Validate(spec ModelSpec) error {
	if err := checkLimits(p.EDC, spec.EMin, spec.EMax, "Edc", "V"); err != nil {
		return err
	}
	if err := checkLimits(p.FreqLow, spec.FreqMin, spec.FreqMax, "fstart", "Hz"); err != nil {
		return err
	}
	if err := checkLimits(p.FreqHigh, spec.FreqMin, spec.FreqMax, "fend", "Hz"); err != nil {
		return err
	}
	if p.Channel != 0 && p.Channel != 1 {
		return fmt.Errorf("channel must be 0 or 1, received %d", p.Channel)
	}
	return nil
}

// Script builds the EIS measurement program for the selected channel.
func (p EIS) Script() string {
	if p.Channel == 1 {
		return "e\nvar h\nvar r\nvar j\nset_pgstat_chan 0\nset_pgstat_mode 0\nset_pgstat_chan 1\nset_pgstat_mode 3\nset_max_bandwidth 200k\nset_range_minmax da 0 0\nset_range ba 2950u\nset_autoranging ba 2950n 2950u\nset_range ab 4200m\nset_autoranging ab 4200m 4200m\nset_e 0\ncell_on\nmeas_loop_eis h r j 100m 200k 100 34 0\n  pck_start\n    pck_add h\n    pck_add r\n    pck_add j\n  pck_end\nendloop\non_finished:\n  cell_off\n\n"
	}
	return "e\nvar h\nvar r\nvar j\nset_pgstat_chan 1\nset_pgstat_mode 0\nset_pgstat_chan 0\nset_pgstat_mode 3\nset_max_bandwidth 200k\nset_range_minmax da 0 0\nset_range ba 2950u\nset_autoranging ba 2950u 2950u\nset_range ab 4200m\nset_autoranging ab 4200m 4200m\nset_e 0\ncell_on\nmeas_loop_eis h r j 100m 200k 100 31 0\n  pck_start\n    pck_add h\n    pck_add r\n    pck_add j\n  pck_end\nendloop\non_finished:\n  cell_off\n\n"
}

// LoadScriptFile reads a user-authored MethodSCRIPT from disk.
func LoadScriptFile(path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load script %s: %w", path, err)
	}
	return string(text), nil
}
