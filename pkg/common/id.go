package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomID generates a random hex ID of the specified length
func GenerateRandomID(length int) string {
	bytes := make([]byte, length/2+1)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}

// GenerateStateToken generates a random value for the OAuth state parameter
func GenerateStateToken() string {
	return GenerateRandomID(32)
}
