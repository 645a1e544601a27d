package game

import "github.com/cardroomlabs/holdem/internal/deck"

// HandRank represents the strength of a poker hand as a single comparable
// integer. The high 4 bits hold the hand category; the remaining bits hold
// the deciding card values in descending significance, so plain integer
// comparison is exact hand comparison including kickers. Equal ranks are
// exact ties and split the pot.
type HandRank uint32

const (
	HighCard HandRank = iota << 28
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Category returns the hand category (pair, flush, etc.)
func (hr HandRank) Category() HandRank {
	return hr & 0xF0000000
}

// String returns a human-readable hand label
func (hr HandRank) String() string {
	switch hr.Category() {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Evaluate scores the best 5-card hand available from the hole and
// community cards. It tolerates fewer than 7 cards; at showdown it is
// always called with exactly 2 hole and 5 community cards.
func Evaluate(hole, community []deck.Card) HandRank {
	cards := make([]deck.Card, 0, len(hole)+len(community))
	cards = append(cards, hole...)
	cards = append(cards, community...)

	var counts [15]int
	suits := make(map[deck.Suit][]int, 4)
	for _, c := range cards {
		counts[c.Value()]++
		suits[c.Suit] = append(suits[c.Suit], c.Value())
	}

	// Flush first: at most one suit can hold five of seven cards.
	for _, values := range suits {
		if len(values) < 5 {
			continue
		}
		var suited [15]int
		for _, v := range values {
			suited[v] = 1
		}
		if high := straightHigh(suited); high > 0 {
			return StraightFlush | HandRank(high)
		}
		return Flush | packValues(topValues(suited, nil, 5))
	}

	if quad := highestWithCount(counts, 4); quad > 0 {
		kickers := topValues(counts, []int{quad}, 1)
		return FourOfAKind | HandRank(quad)<<4 | packValues(kickers)
	}

	trips := highestWithCount(counts, 3)
	if trips > 0 {
		if pair := highestWithCountExcept(counts, 2, trips); pair > 0 {
			return FullHouse | HandRank(trips)<<4 | HandRank(pair)
		}
	}

	if high := straightHigh(counts); high > 0 {
		return Straight | HandRank(high)
	}

	if trips > 0 {
		kickers := topValues(counts, []int{trips}, 2)
		return ThreeOfAKind | HandRank(trips)<<8 | packValues(kickers)
	}

	pair1 := highestWithCount(counts, 2)
	if pair1 > 0 {
		if pair2 := highestWithCountExcept(counts, 2, pair1); pair2 > 0 {
			kickers := topValues(counts, []int{pair1, pair2}, 1)
			return TwoPair | HandRank(pair1)<<8 | HandRank(pair2)<<4 | packValues(kickers)
		}
		kickers := topValues(counts, []int{pair1}, 3)
		return Pair | HandRank(pair1)<<12 | packValues(kickers)
	}

	return HighCard | packValues(topValues(counts, nil, 5))
}

// straightHigh returns the high card value of the best straight in a
// value-count set, counting the Ace as 1 as well for the wheel, or 0.
func straightHigh(counts [15]int) int {
	present := counts
	if counts[14] > 0 {
		present[1] = counts[14]
	}
	for high := 14; high >= 5; high-- {
		run := true
		for v := high; v > high-5; v-- {
			if present[v] == 0 {
				run = false
				break
			}
		}
		if run {
			return high
		}
	}
	return 0
}

// highestWithCount returns the highest value present at least n times, or 0.
func highestWithCount(counts [15]int, n int) int {
	for v := 14; v >= 2; v-- {
		if counts[v] >= n {
			return v
		}
	}
	return 0
}

func highestWithCountExcept(counts [15]int, n, except int) int {
	for v := 14; v >= 2; v-- {
		if v != except && counts[v] >= n {
			return v
		}
	}
	return 0
}

// topValues returns up to n distinct card values in descending order,
// skipping the used values.
func topValues(counts [15]int, used []int, n int) []int {
	isUsed := make(map[int]bool, len(used))
	for _, v := range used {
		isUsed[v] = true
	}

	values := make([]int, 0, n)
	for v := 14; v >= 2 && len(values) < n; v-- {
		if counts[v] > 0 && !isUsed[v] {
			values = append(values, v)
		}
	}
	return values
}

// packValues packs card values as 4-bit nibbles, most significant first.
func packValues(values []int) HandRank {
	packed := HandRank(0)
	for _, v := range values {
		packed = packed<<4 | HandRank(v)
	}
	return packed
}
