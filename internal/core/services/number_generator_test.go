package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/helpdesk-backend/internal/core/services"
)

func TestRandomNumberGenerator_Range(t *testing.T) {
	gen := services.NewNumberGenerator()
	seen := make(map[int]struct{})

	for i := 0; i < 5000; i++ {
		n := gen.Generate()
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, services.TicketNumberUpperBound)
		seen[n] = struct{}{}
	}

	// 5000 draws from ~10k values should not all collapse onto a few numbers.
	assert.Greater(t, len(seen), 1000)
}
