package utils

const (
	XPPerLevel    = 100 // threshold multiplier, level N needs N*100 XP
	XPMatchPlayed = 10
	XPMatchWon    = 25
)

// XPForNextLevel returns the XP needed to leave the given level.
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return level * XPPerLevel
}

// ApplyXP adds delta to the current progression and returns the new level
// and remaining XP. The threshold is recomputed for every level gained, so
// a large grant can cross several levels at once.
// XP never goes below zero and levels are never lost.
func ApplyXP(level, xp, delta int) (newLevel, newXP int, leveledUp bool) {
	if level < 1 {
		level = 1
	}
	newLevel = level
	newXP = xp + delta
	if newXP < 0 {
		newXP = 0
	}

	for newXP >= XPForNextLevel(newLevel) {
		newXP -= XPForNextLevel(newLevel)
		newLevel++
	}

	return newLevel, newXP, newLevel > level
}
