package utils

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
)

func TestApplyXP(t *testing.T) {
	cases := []struct {
		name              string
		level, xp, delta  int
		wantLevel, wantXP int
		wantLeveledUp     bool
	}{
		{"below threshold", 1, 20, 50, 1, 70, false},
		{"exact threshold", 1, 90, 10, 2, 0, true},
		{"one level with rest", 2, 150, 60, 3, 10, true},
		{"threshold grows per level", 1, 0, 250, 2, 150, true},
		{"several levels", 1, 0, 650, 4, 50, true},
		{"negative delta floors at zero", 3, 20, -50, 3, 0, false},
		{"invalid level treated as one", 0, 0, 100, 2, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, xp, up := ApplyXP(tc.level, tc.xp, tc.delta)
			assert.Equal(t, tc.wantLevel, level)
			assert.Equal(t, tc.wantXP, xp)
			assert.Equal(t, tc.wantLeveledUp, up)
		})
	}
}

func TestApplyXPRemainderBelowThreshold(t *testing.T) {
	for delta := 0; delta < 2000; delta += 37 {
		level, xp, _ := ApplyXP(1, 0, delta)
		assert.T(t, xp < XPForNextLevel(level))
	}
}

func TestGenerateTowerCode(t *testing.T) {
	code, err := GenerateTowerCode()
	assert.Equal(t, nil, err)
	assert.Equal(t, TowerCodeLength, len(code))
	for _, r := range code {
		assert.T(t, strings.ContainsRune(towerCodeAlphabet, r))
	}
}
