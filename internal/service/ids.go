package service

import (
	"strings"

	"github.com/google/uuid"
)

func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
