package core

// DebugWriter is a function type for writing diagnostic messages.
type DebugWriter func(string)

// debugPrintln is the global debug print function. No-op by default so
// hosts and tests stay silent; targets redirect it to UART or USB.
var debugPrintln DebugWriter = func(string) {}

// SetDebugWriter sets the platform-specific debug output function.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// DebugPrintln writes a diagnostic message using the configured writer.
func DebugPrintln(msg string) {
	if debugPrintln != nil {
		debugPrintln(msg)
	}
}
