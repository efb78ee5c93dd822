package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, RolePrincipal.Outranks(RoleHOD))
	assert.True(t, RoleHOD.Outranks(RoleIncharge))
	assert.True(t, RoleIncharge.Outranks(RoleTeacher))
	assert.False(t, RoleTeacher.Outranks(RoleTeacher))
	assert.False(t, RoleTeacher.Outranks(RolePrincipal))

	assert.True(t, RoleHOD.AtLeast(RoleHOD))
	assert.False(t, Role("janitor").AtLeast(RoleTeacher))
	assert.False(t, Role("janitor").Outranks(Role("")))

	assert.True(t, RoleIncharge.Valid())
	assert.False(t, Role("janitor").Valid())
}

func TestIssueAndParse(t *testing.T) {
	tokens, err := Issue("H1", RoleHOD, "campus-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := Parse(tokens.AccessToken, "secret", "campus-test")
	require.NoError(t, err)
	assert.Equal(t, "H1", claims.StaffID)
	assert.Equal(t, RoleHOD, claims.Role)
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	tokens, err := Issue("H1", RoleHOD, "campus-test", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokens.AccessToken, "other-secret", "campus-test")
	assert.Error(t, err)

	_, err = Parse(tokens.AccessToken, "secret", "someone-else")
	assert.Error(t, err)
}
