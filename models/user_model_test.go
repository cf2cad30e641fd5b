package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	t.Run("students and parents book lessons", func(t *testing.T) {
		assert.True(t, RoleStudent.Can(CapBookLessons))
		assert.True(t, RoleParent.Can(CapBookLessons))
		assert.False(t, RoleTutor.Can(CapBookLessons))
	})

	t.Run("only tutors teach", func(t *testing.T) {
		assert.True(t, RoleTutor.Can(CapTeachLessons))
		assert.False(t, RoleStudent.Can(CapTeachLessons))
		assert.False(t, RoleGlobalAdmin.Can(CapTeachLessons))
	})

	t.Run("admins moderate", func(t *testing.T) {
		assert.True(t, RoleCityAdmin.Can(CapModerateContent))
		assert.True(t, RoleGlobalAdmin.Can(CapModerateContent))
		assert.False(t, RoleTutor.Can(CapModerateContent))
	})

	t.Run("only global admins manage the platform", func(t *testing.T) {
		assert.True(t, RoleGlobalAdmin.Can(CapManagePlatform))
		assert.False(t, RoleCityAdmin.Can(CapManagePlatform))
	})

	t.Run("unknown role has no capabilities", func(t *testing.T) {
		assert.False(t, Role("intruder").Can(CapBookLessons))
	})
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"student", "parent", "tutor", "city_admin", "global_admin"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Role(valid), role)
	}

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
}
