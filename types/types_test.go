package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlavor(t *testing.T) {
	for _, s := range []string{"ubuntu-server", "ubuntu-desktop", "kali-installer", "generic"} {
		f, err := ParseFlavor(s)
		require.NoError(t, err)
		assert.Equal(t, s, f.String())
	}

	_, err := ParseFlavor("arch")
	assert.Error(t, err)
}

func TestFlavorScan(t *testing.T) {
	var f Flavor
	require.NoError(t, f.Scan("kali-installer"))
	assert.Equal(t, FlavorKaliInstaller, f)

	require.NoError(t, f.Scan([]uint8("generic")))
	assert.Equal(t, FlavorGeneric, f)

	assert.Error(t, f.Scan(42))
	assert.Error(t, f.Scan("arch"))
}

func TestFlavorValue(t *testing.T) {
	v, err := FlavorUbuntuServer.Value()
	require.NoError(t, err)
	assert.Equal(t, "ubuntu-server", v)
}
