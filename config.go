package corerex

// Config is the plain record of compile-time feature flags and runtime
// toggles, threaded explicitly through Compile/CompileWithConfig
// rather than held in a package-level global. A flat struct of bools,
// no free-form maps.
type Config struct {
	// JITEnabled permits bytecode compilation. Default: true.
	JITEnabled bool
	// UnicodeEnabled enables \p{...} property tables. When false,
	// non-ASCII pattern text and input are still matched as UTF-8 bytes
	// exactly as when true, but patterns using \p or \P are rejected by
	// Compile with UnsupportedFeature. Default: true.
	UnicodeEnabled bool
	// StreamingEnabled permits constructing a streaming matcher via
	// Regex.Streaming. Default: true.
	StreamingEnabled bool
	// CaptureGroups permits group tracking. When false, Find/FindAll
	// still report the whole match but Match.Group always reports
	// unmatched, and the bytecode path's "groups required" selection
	// condition never blocks it. Default: true.
	CaptureGroups bool
	// Backtracking is reserved for a future backtracking engine and is
	// not read by anything in this module.
	Backtracking bool

	// PreferJIT requests the bytecode path when eligible (see
	// Regex.eligibleForBytecode). Default: true.
	PreferJIT bool
	// PreferStreaming routes Find/FindAll/IsMatch through the same
	// stream.Matcher used by Regex.Streaming, fed the whole input in a
	// single Feed+Finalize call, instead of nfa.Simulator directly. The
	// two agree exactly on every input, so this toggle exists to let a
	// caller exercise the streaming path without constructing a
	// matcher by hand. Default: false.
	PreferStreaming bool
	// ForceNFA disables the bytecode path regardless of eligibility or
	// PreferJIT. Default: false.
	ForceNFA bool
	// EnableDiagnostics permits Regex.Diagnostics to return a populated
	// report; when false it returns the zero Report. Default: false.
	EnableDiagnostics bool
	// DebugMode is carried but not read by anything in this module:
	// Regex.Diagnostics is gated by EnableDiagnostics alone, and the
	// cmd/corerex --features flag calls diagnostics.Detect directly
	// without consulting a Config. Default: false.
	DebugMode bool
}

// DefaultConfig returns sensible defaults: every feature enabled, the
// bytecode path preferred where eligible, diagnostics off.
func DefaultConfig() Config {
	return Config{
		JITEnabled:       true,
		UnicodeEnabled:   true,
		StreamingEnabled: true,
		CaptureGroups:    true,
		Backtracking:     false,

		PreferJIT:         true,
		PreferStreaming:   false,
		ForceNFA:          false,
		EnableDiagnostics: false,
		DebugMode:         false,
	}
}
