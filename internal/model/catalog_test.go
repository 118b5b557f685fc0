package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCatalog() Catalog {
	return Catalog{
		{Code: 1, Name: "Water", Color: "#419BDF"},
		{Code: 2, Name: "Trees", Color: "#397D49"},
		{Code: 4, Name: "Flooded Vegetation", Color: "#7A87C6"},
		{Code: 5, Name: "Crops", Color: "#E49635"},
	}
}

func TestCatalogValidate(t *testing.T) {
	require.NoError(t, validCatalog().Validate())

	tests := []struct {
		name    string
		mutate  func(Catalog) Catalog
		wantErr string
	}{
		{
			name:    "empty",
			mutate:  func(Catalog) Catalog { return nil },
			wantErr: "empty",
		},
		{
			name: "non-positive code",
			mutate: func(c Catalog) Catalog {
				c[0].Code = 0
				return c
			},
			wantErr: "not positive",
		},
		{
			name: "code beyond encoding limit",
			mutate: func(c Catalog) Catalog {
				c[0].Code = 100
				return c
			},
			wantErr: "collide",
		},
		{
			name: "duplicate code",
			mutate: func(c Catalog) Catalog {
				c[1].Code = c[0].Code
				return c
			},
			wantErr: "duplicate",
		},
		{
			name: "empty name",
			mutate: func(c Catalog) Catalog {
				c[2].Name = ""
				return c
			},
			wantErr: "empty name",
		},
		{
			name: "malformed color",
			mutate: func(c Catalog) Catalog {
				c[3].Color = "blue"
				return c
			},
			wantErr: "malformed color",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(validCatalog()).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogValidate_ColorOptional(t *testing.T) {
	c := Catalog{{Code: 1, Name: "Water"}}
	assert.NoError(t, c.Validate())
}

func TestCatalogLookups(t *testing.T) {
	c := validCatalog()

	name, ok := c.Name(4)
	assert.True(t, ok)
	assert.Equal(t, "Flooded Vegetation", name)

	_, ok = c.Name(42)
	assert.False(t, ok)

	assert.Equal(t, []int{1, 2, 4, 5}, c.Codes())
	assert.Equal(t, "Crops", c.Names()[5])
	assert.Equal(t, "#419BDF", c.Colors()[1])
}
