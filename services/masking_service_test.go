package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskContacts(t *testing.T) {
	t.Run("masks email addresses", func(t *testing.T) {
		masked, wasMasked := MaskContacts("write to me at ravi.kumar@example.com please")
		assert.True(t, wasMasked)
		assert.NotContains(t, masked, "ravi.kumar@example.com")
		assert.Contains(t, masked, contactPlaceholder)
	})

	t.Run("masks phone numbers", func(t *testing.T) {
		for _, content := range []string{
			"call me on +91 98765 43210",
			"my number is 9876543210",
			"reach me at 98765-43210 tonight",
		} {
			masked, wasMasked := MaskContacts(content)
			assert.True(t, wasMasked, content)
			assert.Contains(t, masked, contactPlaceholder)
		}
	})

	t.Run("masks both in one message", func(t *testing.T) {
		masked, wasMasked := MaskContacts("email a@b.io or call 9876543210")
		assert.True(t, wasMasked)
		assert.NotContains(t, masked, "a@b.io")
		assert.NotContains(t, masked, "9876543210")
	})

	t.Run("leaves clean messages untouched", func(t *testing.T) {
		content := "Can we move tomorrow's algebra lesson to 5pm?"
		masked, wasMasked := MaskContacts(content)
		assert.False(t, wasMasked)
		assert.Equal(t, content, masked)
	})

	t.Run("short numbers are not phone numbers", func(t *testing.T) {
		masked, wasMasked := MaskContacts("chapter 12, problems 1 to 45")
		assert.False(t, wasMasked)
		assert.Equal(t, "chapter 12, problems 1 to 45", masked)
	})
}
