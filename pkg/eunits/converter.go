// Package eunits converts between the SI units used in technique parameters
// and the milli-scaled integers MethodSCRIPT expects in command arguments.
package eunits

// The device rejects fractional arguments; conversion truncates toward zero
// to match the reference script generator exactly.

func VToMilliV(v float64) int {
	return int(v * 1000)
}

func MilliVToV(mv int) float64 {
	return float64(mv) / 1000
}

func SToMilliS(s float64) int {
	return int(s * 1000)
}

func MilliSToS(ms int) float64 {
	return float64(ms) / 1000
}

// VPerSToMilli converts a scan rate in V/s to the mV/s integer form.
func VPerSToMilli(sr float64) int {
	return int(sr * 1000)
}

func AToMicroA(a float64) float64 {
	return a * 1e6
}

func MicroAToA(ua float64) float64 {
	return ua / 1e6
}
