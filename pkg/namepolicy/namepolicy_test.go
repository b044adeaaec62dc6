package namepolicy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/namepolicy"
)

func TestDenylist(t *testing.T) {
	t.Run("reserved names blocked case-insensitively", func(t *testing.T) {
		d, err := namepolicy.New(namepolicy.Config{Reserved: []string{"std", "Nest"}})
		require.NoError(t, err)

		assert.False(t, d.IsAllowed("std"))
		assert.False(t, d.IsAllowed("STD"))
		assert.False(t, d.IsAllowed("nest"))
		assert.True(t, d.IsAllowed("stdlib"))
		assert.True(t, d.IsAllowed("mypackage"))
	})

	t.Run("pattern match blocked", func(t *testing.T) {
		d, err := namepolicy.New(namepolicy.Config{Patterns: []string{`^deno-`, `official$`}})
		require.NoError(t, err)

		assert.False(t, d.IsAllowed("deno-http"))
		assert.False(t, d.IsAllowed("totally-official"))
		assert.True(t, d.IsAllowed("http-server"))
	})

	t.Run("invalid pattern fails construction", func(t *testing.T) {
		_, err := namepolicy.New(namepolicy.Config{Patterns: []string{`(`}})
		assert.Error(t, err)
	})

	t.Run("zero value allows everything", func(t *testing.T) {
		var d *namepolicy.Denylist
		assert.True(t, d.IsAllowed("anything"))
	})
}

func TestAllowAll(t *testing.T) {
	assert.True(t, namepolicy.AllowAll{}.IsAllowed("whatever"))
}
