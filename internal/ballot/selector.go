package ballot

import (
	"math/rand"

	"wallet_vote/internal/logger"
	"wallet_vote/internal/types"
)

// Select returns the planned votes for one wallet: in file order, or shuffled
// when the plan order is random. The plan itself is never reordered.
func (p *Plan) Select(log logger.Logger) []Entry {
	selected := make([]Entry, len(p.Votes))
	copy(selected, p.Votes)

	if p.Order == types.OrderRandom && len(selected) > 1 {
		log.Debug("Shuffling planned votes", "module", "ballot", "count", len(selected))
		rand.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	return selected
}
