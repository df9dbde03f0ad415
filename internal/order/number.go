package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"
)

const (
	numberPrefix   = "ZS"
	numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// go-nanoid's custom generators need at least 5 characters.
	suffixLength = 6
)

// numberGenerator builds order numbers such as ZS-LX3K9Q2A-7F3B2C.
type numberGenerator struct {
	suffix func() string
}

func newNumberGenerator() (*numberGenerator, error) {
	suffix, err := gonanoid.CustomASCII(numberAlphabet, suffixLength)
	if err != nil {
		return nil, fmt.Errorf("failed to build order number generator: %w", err)
	}
	return &numberGenerator{suffix: suffix}, nil
}

func (g *numberGenerator) Next(at time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	return numberPrefix + "-" + stamp + "-" + g.suffix()
}
