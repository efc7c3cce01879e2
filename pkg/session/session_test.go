package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Target(t *testing.T) {
	s := New()

	namespace, database := s.Target()
	assert.Empty(t, namespace)
	assert.Empty(t, database)

	s.SetTarget("app", "main")
	namespace, database = s.Target()
	assert.Equal(t, "app", namespace)
	assert.Equal(t, "main", database)
}

func TestState_Auth(t *testing.T) {
	s := New()
	assert.False(t, s.IsAuthenticated())

	s.SetToken("tok")
	s.SetScope("user")
	s.SetAccess("account")
	assert.True(t, s.IsAuthenticated())

	s.ClearAuth()
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Scope())
	assert.Empty(t, s.Access())
}

func TestState_ClearAuthKeepsTargetAndParams(t *testing.T) {
	s := New()
	s.SetTarget("app", "main")
	s.SetParam("limit", 10)
	s.SetToken("tok")

	s.ClearAuth()

	namespace, _ := s.Target()
	assert.Equal(t, "app", namespace)
	_, ok := s.Param("limit")
	assert.True(t, ok)
}

func TestState_Params(t *testing.T) {
	s := New()

	s.SetParam("limit", 10)
	s.SetParam("name", "doc")

	v, ok := s.Param("limit")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	s.UnsetParam("limit")
	_, ok = s.Param("limit")
	assert.False(t, ok)

	// Params returns a copy: mutating it must not affect the state.
	params := s.Params()
	params["name"] = "changed"
	v, _ = s.Param("name")
	assert.Equal(t, "doc", v)
}

func TestState_Reset(t *testing.T) {
	s := New()
	s.SetTarget("app", "main")
	s.SetToken("tok")
	s.SetParam("k", "v")

	s.Reset()

	namespace, database := s.Target()
	assert.Empty(t, namespace)
	assert.Empty(t, database)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Params())
}
