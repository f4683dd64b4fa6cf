package game

// RoundResult is one player's scoring breakdown for a finished round
type RoundResult struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Bid       int    `json:"bid"`
	TricksWon int    `json:"tricksWon"`
	Delta     int    `json:"delta"`
	Total     int    `json:"total"`
}

// Score returns the points earned for a round.
// An exact bid of zero earns 1, any other exact bid earns 2 per trick, and a
// missed bid costs 1 per trick of difference.
func Score(bid, tricksWon int) int {
	switch {
	case bid == 0 && tricksWon == 0:
		return 1
	case bid == tricksWon:
		return 2 * tricksWon
	case bid > tricksWon:
		return tricksWon - bid
	default:
		return bid - tricksWon
	}
}

// ScoreRound applies Score to every player, then clears bids and trick
// counts for the next round. A player without a recorded bid is scored as
// having bid zero.
func ScoreRound(players []*Player) []RoundResult {
	results := make([]RoundResult, 0, len(players))
	for _, p := range players {
		bid := 0
		if p.Bid != nil {
			bid = *p.Bid
		}
		delta := Score(bid, p.TricksWon)
		p.Score += delta
		p.LastDelta = delta

		results = append(results, RoundResult{
			PlayerID:  p.ID,
			Name:      p.Name,
			Bid:       bid,
			TricksWon: p.TricksWon,
			Delta:     delta,
			Total:     p.Score,
		})

		p.Bid = nil
		p.TricksWon = 0
	}
	return results
}
