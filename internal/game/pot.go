package game

import "sort"

// Pot is a main or side pot: an amount and the seats eligible to win it.
// The first pot is the main pot; later pots isolate chips contested only
// among players who matched the corresponding all-in level.
type Pot struct {
	Amount   int
	Eligible []int
}

// buildPots layers the hand's contributions into a main pot and one side
// pot per distinct all-in level. potTotal is the table's swept pot plus
// any bets not yet collected; chips contributed by players who have since
// left the table are folded into the main pot as dead money so that the
// pots always sum to potTotal.
func buildPots(players []*Player, potTotal int) []Pot {
	levels := make(map[int]bool)
	for _, p := range players {
		if p.Status == StatusAllIn && p.TotalBet > 0 {
			levels[p.TotalBet] = true
		}
	}

	if len(levels) == 0 {
		eligible := make([]int, 0, len(players))
		for _, p := range players {
			if p.InHand() {
				eligible = append(eligible, p.Seat)
			}
		}
		return []Pot{{Amount: potTotal, Eligible: eligible}}
	}

	amounts := make([]int, 0, len(levels))
	for amount := range levels {
		amounts = append(amounts, amount)
	}
	sort.Ints(amounts)

	var pots []Pot
	previous := 0
	for _, level := range amounts {
		pot := Pot{}
		for _, p := range players {
			if p.InHand() && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
			contribution := min(p.TotalBet, level) - previous
			if contribution > 0 {
				pot.Amount += contribution
			}
		}
		if pot.Amount > 0 && len(pot.Eligible) > 0 {
			pots = append(pots, pot)
		}
		previous = level
	}

	// Chips above the highest all-in level.
	overflow := Pot{}
	for _, p := range players {
		if p.TotalBet > previous {
			overflow.Amount += p.TotalBet - previous
			if p.InHand() {
				overflow.Eligible = append(overflow.Eligible, p.Seat)
			}
		}
	}
	if overflow.Amount > 0 && len(overflow.Eligible) > 0 {
		pots = append(pots, overflow)
	}

	if len(pots) == 0 {
		return nil
	}

	// Uncalled overflow with a single eligible player is returned to them
	// via the award path; dead money from departed players lands in the
	// main pot.
	tracked := 0
	for _, pot := range pots {
		tracked += pot.Amount
	}
	if diff := potTotal - tracked; diff > 0 {
		pots[0].Amount += diff
	}

	return pots
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
