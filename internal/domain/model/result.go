package model

import "fmt"

// Result is the calculation outcome. Field order is part of the native
// layout: pp first, stars second.
type Result struct {
	PP    float64 `json:"pp" yaml:"pp"`
	Stars float64 `json:"stars" yaml:"stars"`
}

func (r Result) String() string {
	return fmt.Sprintf("CalculateResult { pp: %v, stars: %v }", r.PP, r.Stars)
}
