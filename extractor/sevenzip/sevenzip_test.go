package sevenzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingContains(t *testing.T) {
	listing := []byte(`2024-04-25 12:00:00 D....            0            0  casper
2024-04-25 12:00:00 ....A     14932321     14932321  casper/vmlinuz
2024-04-25 12:00:00 ....A     75692544     75692544  extra-casper/vmlinuz
`)

	assert.True(t, listingContains(listing, "casper/vmlinuz"))
	assert.True(t, listingContains(listing, "extra-casper/vmlinuz"))
	assert.False(t, listingContains(listing, "casper/initrd"))
	assert.False(t, listingContains(listing, "vmlinuz"))
}

func TestListingContainsNoFalsePositiveOnSuffix(t *testing.T) {
	// another member whose path merely ends with the probe string must not match
	listing := []byte(`2024-04-25 12:00:00 ....A     75692544     75692544  extra-casper/vmlinuz
`)
	assert.False(t, listingContains(listing, "casper/vmlinuz"))
}

func TestListingContainsEmpty(t *testing.T) {
	assert.False(t, listingContains(nil, "casper/vmlinuz"))
	assert.False(t, listingContains([]byte("\n\n"), "casper/vmlinuz"))
}
