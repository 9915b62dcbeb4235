package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func parseSchema(t *testing.T, model interface{}) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

// A bearer-token id must be usable before any profile row exists, so neither
// carts nor orders may declare a relation (and thus a migrated foreign key)
// to the users table.
func TestCartsAndOrdersCarryOpaqueUserID(t *testing.T) {
	for _, model := range []interface{}{&Cart{}, &Order{}} {
		s := parseSchema(t, model)
		_, ok := s.Relationships.Relations["User"]
		assert.False(t, ok, "%s must not reference the users table", s.Name)

		f := s.LookUpField("UserID")
		require.NotNil(t, f, "%s must keep the opaque user id column", s.Name)
		assert.Equal(t, "string", f.FieldType.Name())
	}
}

func TestUserDeclaresNoAssociations(t *testing.T) {
	s := parseSchema(t, &User{})
	assert.Empty(t, s.Relationships.Relations)
}
