// Package diagnostics reports which CPU-level fast paths the host
// supports, via golang.org/x/sys/cpu. Nothing in this module
// dispatches on these flags — there are no assembly-backed scanning
// kernels here — so the package is detection-only, surfaced for
// whoever is tuning or reporting on a deployment.
package diagnostics

import "golang.org/x/sys/cpu"

// Report names the CPU features a SIMD-capable prefilter or scanner
// could exploit on this host.
type Report struct {
	AVX2    bool
	SSE42   bool
	BMI2    bool
	ARMNeon bool
}

// Detect reads the process-wide CPU feature flags golang.org/x/sys/cpu
// populates at init time.
func Detect() Report {
	return Report{
		AVX2:    cpu.X86.HasAVX2,
		SSE42:   cpu.X86.HasSSE42,
		BMI2:    cpu.X86.HasBMI2,
		ARMNeon: cpu.ARM64.HasASIMD,
	}
}

// String renders the report as a short human-readable line, the shape
// `cmd/corerex`'s `--features` flag prints.
func (r Report) String() string {
	flag := func(name string, on bool) string {
		if on {
			return name + "=yes"
		}
		return name + "=no"
	}
	return flag("avx2", r.AVX2) + " " + flag("sse4.2", r.SSE42) + " " +
		flag("bmi2", r.BMI2) + " " + flag("neon", r.ARMNeon)
}
