package tmpl

// Plain is always compiled.
type Plain struct{}
