package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ToUUID parses s and returns uuid.Nil when it is not a valid UUID.
func ToUUID(s string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
