package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/harrison/bfswalk/internal/walker"
)

// Fingerprint hashes the path and size of every row, independent of row
// order. Two listings of an unchanged tree have equal fingerprints.
func Fingerprint(files []walker.File) string {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b walker.File) int {
		return strings.Compare(a.Path, b.Path)
	})

	h := xxhash.New()
	var buf []byte
	for _, f := range sorted {
		buf = append(buf[:0], f.Path...)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, f.Size, 10)
		buf = append(buf, '\n')
		h.Write(buf)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
