package stereoproj

// Channel indices for readability.
const (
	ChR          = 0
	ChG          = 1
	ChB          = 2
	OutputSize   = 400
	SphereRadius = 1.0
	RadiusScale  = 0.5
	PreviewSize  = 300
	ProgressRows = 20  // rows between progress callbacks
	DiskFraction = 0.9 // share of the half-width covered by the unit disk at RadiusScale 1
	OutputPath   = "projected.png"
)
