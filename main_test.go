package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsSetupErrors(t *testing.T) {
	t.Run("bad config", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		err := run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load config")
	})

	t.Run("missing images file", func(t *testing.T) {
		t.Setenv("CARD_IMAGES_FILE", filepath.Join(t.TempDir(), "nope.txt"))
		err := run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load card images")
	})
}
