package demodata

import (
	"fmt"
	"math/rand/v2"

	"github.com/streamssr/streamssr/internal/section"
)

// Failing returns src with its generator replaced by one that always
// fails. The latency is kept so the failure arrives like a real one.
func Failing[T any](src section.Source[T]) section.Source[T] {
	name := src.Name
	src.Generate = func(*rand.Rand) ([]T, error) {
		return nil, fmt.Errorf("%s: simulated upstream failure", name)
	}
	return src
}
