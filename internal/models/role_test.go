package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, bad := range []string{"", "Admin", "root", "superuser"} {
		_, err := ParseRole(bad)
		assert.ErrorIs(t, err, ErrUnknownRole, bad)
	}
}

func TestRole_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(User{ID: 1, Username: "alice", PasswordHash: "h", Role: RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"username":"alice","role":"admin"}`, string(b))

	var req struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &req))
	assert.Equal(t, RoleUser, req.Role)

	require.Error(t, json.Unmarshal([]byte(`{"role":"owner"}`), &req))
	require.Error(t, json.Unmarshal([]byte(`{"role":3}`), &req))
}

func TestRole_ZeroValueIsInvalid(t *testing.T) {
	t.Parallel()

	var r Role
	assert.False(t, r.Valid())
	_, err := r.Value()
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = json.Marshal(r)
	assert.Error(t, err)
}

func TestRole_Scan(t *testing.T) {
	t.Parallel()

	var r Role
	require.NoError(t, r.Scan("admin"))
	assert.True(t, r.IsAdmin())
	require.NoError(t, r.Scan([]byte("user")))
	assert.Equal(t, RoleUser, r)
	assert.ErrorIs(t, r.Scan("wizard"), ErrUnknownRole)
	assert.ErrorIs(t, r.Scan(42), ErrUnknownRole)
}
