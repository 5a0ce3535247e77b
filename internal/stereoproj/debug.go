//go:build debug
// +build debug

package stereoproj

// Building with -tags debug turns DebugLog on without the DEBUG env.
func init() { Debug = true }
