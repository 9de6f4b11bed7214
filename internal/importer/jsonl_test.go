package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	in := `{"customer_id":"c-1","email":"a@test.com","password":"pw","country":"DE"}

{"customer_id":"c-2","email":"b@test.com","hashed_password":"h","salt":"s","country":"AT","language":"de","is_active":false}
`
	users, err := ReadJSONL(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "c-1", users[0].CustomerID)
	assert.Equal(t, "pw", users[0].Password)
	assert.Nil(t, users[0].IsActive)

	assert.Equal(t, "de", users[1].Language)
	assert.Equal(t, "h", users[1].HashedPassword)
	require.NotNil(t, users[1].IsActive)
	assert.False(t, *users[1].IsActive)
}

func TestReadJSONL_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":     "{\"customer_id\":\"c-1\"}\n{",
		"unknown field": `{"customer_id":"c-1","nickname":"x"}`,
		"two values":    `{"customer_id":"c-1"} {"customer_id":"c-2"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSONL(strings.NewReader(in))
			assert.Error(t, err)
		})
	}

	_, err := ReadJSONL(strings.NewReader("{\"customer_id\":\"c-1\"}\n{"))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadJSONL_Empty(t *testing.T) {
	users, err := ReadJSONL(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, users)
}
