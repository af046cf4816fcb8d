package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
)

func TestArmyCapacityError(t *testing.T) {
	cases := []struct {
		name     string
		armySize int
		wantFull bool
	}{
		{"empty", 0, false},
		{"one below cap", config.MaxArmySize - 1, false},
		{"at cap", config.MaxArmySize, true},
		{"over cap", config.MaxArmySize + 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := armyCapacityError(tc.armySize)
			if !tc.wantFull {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsUserFacing(err))
		})
	}
}
