package target

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/cratec/pkg/source"
)

// Metadata is a short fingerprint appended to artifact file names so that
// artifacts of the same name built for different purposes do not collide.
type Metadata struct {
	Metadata      string `json:"metadata"`
	ExtraFilename string `json:"extra_filename"`
}

// NewMetadata derives the fingerprint of a package from its name, version
// and source.
func NewMetadata(id source.PackageID) Metadata {
	version := ""
	if id.Version != nil {
		version = id.Version.String()
	}
	h := xxhash.New()
	_, _ = h.WriteString(id.Name)
	_, _ = h.WriteString("\x00" + version)
	_, _ = h.WriteString("\x00" + id.Source.String())
	return fromSum(h.Sum64())
}

// Mix returns a new fingerprint combining m with s. m is unchanged.
func (m Metadata) Mix(s string) Metadata {
	h := xxhash.New()
	_, _ = h.WriteString(m.Metadata)
	_, _ = h.WriteString("\x00" + s)
	return fromSum(h.Sum64())
}

func fromSum(sum uint64) Metadata {
	hex := fmt.Sprintf("%016x", sum)
	return Metadata{Metadata: hex, ExtraFilename: "-" + hex}
}
