package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "", MaskSecret("   "))
	assert.Equal(t, "****", MaskSecret("4242"))
	assert.Equal(t, "****", MaskSecret("ab"))
	assert.Equal(t, "****4242", MaskSecret("4111111111114242"))
	assert.Equal(t, "****4242", MaskSecret("  4111111111114242  "))
}

func TestMaskMetadataRedactsSensitiveKeys(t *testing.T) {
	masked := MaskMetadata(map[string]any{
		"card_last_digits": "4242",
		"card_number":      "4111111111114242",
		"password":         "changeme",
		"order_number":     "ORD123",
		"amount":           int64(2750),
	})

	require.NotNil(t, masked)
	assert.Equal(t, "****", masked["card_last_digits"])
	assert.Equal(t, "****4242", masked["card_number"])
	assert.Equal(t, "****geme", masked["password"])
	assert.Equal(t, "ORD123", masked["order_number"])
	assert.Equal(t, int64(2750), masked["amount"])
}

func TestMaskMetadataEmptyInput(t *testing.T) {
	assert.Nil(t, MaskMetadata(nil))
	assert.Nil(t, MaskMetadata(map[string]any{}))
	assert.Nil(t, MaskMetadata(map[string]any{"  ": "x"}))
}
