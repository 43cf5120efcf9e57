package apis

const (
	// Self-defined query fields
	Filter   = "filter"
	Exploded = "exploded"
)
