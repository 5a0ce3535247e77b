package stereoproj

import "runtime"

var (
	Debug   = false            // set to true for verbose debug output
	Workers = runtime.NumCPU() // default number of row workers for Project
)
