package iso

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lovi-cloud/tanuki/types"
)

// Entry is a discovered boot image.
type Entry struct {
	// Name is the ISO file name, e.g. "ubuntu-24.04-live-server-amd64.iso".
	Name string
	// Base is Name without the .iso extension. Base names are unique because
	// file names within one directory are.
	Base string
	// Flavor is the classification tag assigned by the Classifier.
	Flavor types.Flavor
}

// Scan enumerates ISO files in dir, classifies each one and returns the
// entries in version-aware lexicographic order. The order defines menu item
// order. An empty result is not an error; the caller decides how to report it.
func Scan(dir string, c *Classifier) ([]Entry, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.iso"))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate ISO files in %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		base := filepath.Base(name)
		entries = append(entries, Entry{
			Name:   base,
			Base:   strings.TrimSuffix(base, filepath.Ext(base)),
			Flavor: c.Classify(base),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return naturalLess(entries[i].Name, entries[j].Name)
	})
	return entries, nil
}

// naturalLess compares file names treating runs of digits as numbers, so
// "a-2.iso" sorts before "a-10.iso".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			an, ar := splitNum(a)
			bn, br := splitNum(b)
			if c := compareNum(an, bn); c != 0 {
				return c < 0
			}
			a, b = ar, br
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func splitNum(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNum compares two digit strings numerically. Strings are compared by
// length after trimming leading zeros so multi-part version numbers never
// overflow an integer type.
func compareNum(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
