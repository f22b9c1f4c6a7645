package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	roomAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func GenerateID() string {
	id, err := gonanoid.Generate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateBookingReference returns a short code users can read out over the
// phone. Ambiguous characters (0/O, 1/I) are excluded.
func GenerateBookingReference() (string, error) {
	return gonanoid.Generate(referenceAlphabet, 8)
}

func GenerateRoomSuffix() string {
	id, err := gonanoid.Generate(roomAlphabet, 10)
	if err != nil {
		return GenerateID()
	}
	return id
}
