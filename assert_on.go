//go:build rowcursor_debug

package rowcursor

// DebugAssertionsEnabled reports whether records are checked against the schema
// before they are loaded. Build with -tags rowcursor_debug to turn the checks on.
const DebugAssertionsEnabled = true
