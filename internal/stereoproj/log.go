package stereoproj

import (
	"fmt"
	"sync"
)

// DebugLog prints only when Debug is set (DEBUG env in the CLI, or a build
// with -tags debug).
func DebugLog(format string, args ...interface{}) {
	if !Debug {
		return
	}
	fmt.Printf("[DEBUG] "+format+"\n", args...)
}

var once sync.Once

// DebugLogOnce logs the first message it is given and drops the rest.
func DebugLogOnce(format string, args ...interface{}) {
	if !Debug {
		return
	}
	once.Do(func() {
		DebugLog(format, args...)
	})
}
