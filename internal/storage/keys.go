package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// NewPrefix returns a collision-resistant scratch prefix that namespaces all
// images rendered from one source document.
func NewPrefix() string {
	return "wip/" + uuid.NewString()
}

// ImageKey builds the object key for one rendered page under a prefix.
func ImageKey(prefix string, pageIndex int) string {
	return fmt.Sprintf("%s/image_%d.png", prefix, pageIndex)
}
