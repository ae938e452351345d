package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	TowerCodeLength = 6
	// no 0/O or 1/I, codes get typed by hand
	towerCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateTowerCode returns a random invite code. Uniqueness is checked by
// the caller against the towers table.
func GenerateTowerCode() (string, error) {
	return gonanoid.Generate(towerCodeAlphabet, TowerCodeLength)
}
