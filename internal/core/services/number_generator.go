package services

import (
	"math/rand/v2"

	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// TicketNumberUpperBound is the exclusive upper bound of generated numbers.
const TicketNumberUpperBound = 9999

// RandomNumberGenerator draws ticket numbers uniformly from [0, 9999).
// Numbers are not checked for uniqueness.
type RandomNumberGenerator struct{}

var _ ports.NumberGenerator = RandomNumberGenerator{}

func NewNumberGenerator() ports.NumberGenerator {
	return RandomNumberGenerator{}
}

func (RandomNumberGenerator) Generate() int {
	return rand.IntN(TicketNumberUpperBound)
}
