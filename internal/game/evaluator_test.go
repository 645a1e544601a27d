package game

import (
	"math/rand"
	"testing"

	poker "github.com/paulhankin/poker"

	"github.com/cardroomlabs/holdem/internal/deck"
)

func evalCards(t *testing.T, hole, community string) HandRank {
	t.Helper()
	return Evaluate(deck.MustParseCards(hole), deck.MustParseCards(community))
}

func TestEvaluateCategories(t *testing.T) {
	cases := []struct {
		name      string
		hole      string
		community string
		want      HandRank
	}{
		{"high card", "AsKh", "Qd9c7s5h2d", HighCard},
		{"pair", "AsAh", "Kd9c7s5h2d", Pair},
		{"two pair", "AsAh", "KdKc7s5h2d", TwoPair},
		{"three of a kind", "AsAh", "Ad9c7s5h2d", ThreeOfAKind},
		{"straight", "9s8h", "7d6c5s2h2d", Straight},
		{"flush", "AsKs", "9s7s2sQhJd", Flush},
		{"full house", "AsAh", "AdKcKs5h2d", FullHouse},
		{"four of a kind", "AsAh", "AdAc7s5h2d", FourOfAKind},
		{"straight flush", "9s8s", "7s6s5sQhJd", StraightFlush},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rank := evalCards(t, tc.hole, tc.community)
			if rank.Category() != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, rank.Category())
			}
		})
	}
}

func TestEvaluateWheelStraight(t *testing.T) {
	rank := evalCards(t, "As2d", "3c4h5s9dKc")
	if rank.Category() != Straight {
		t.Fatalf("Expected Straight, got %s", rank.Category())
	}

	// The wheel is the lowest straight; a six-high straight beats it.
	sixHigh := evalCards(t, "6s2d", "3c4h5s9dKc")
	if sixHigh <= rank {
		t.Errorf("Six-high straight should outrank the wheel")
	}
}

func TestEvaluateKickerOrdering(t *testing.T) {
	// Same pair of aces, different kicker.
	kingKicker := evalCards(t, "AsAh", "Kd9c7s5h2d")
	queenKicker := evalCards(t, "AdAc", "Qd9c7s5h2d")
	if kingKicker <= queenKicker {
		t.Errorf("Ace pair with king kicker should outrank queen kicker")
	}
}

func TestEvaluateTwoPairUsesBestTwo(t *testing.T) {
	// Three pairs on board plus hole: only the top two count.
	rank := evalCards(t, "AsAh", "KdKc5s5h2d")
	expected := evalCards(t, "AdAc", "KhKs9s8h2c")
	if rank.Category() != TwoPair || expected.Category() != TwoPair {
		t.Fatalf("Expected two pair in both hands")
	}
	// Aces and kings with a 5 kicker vs a 9 kicker.
	if rank >= expected {
		t.Errorf("Nine kicker should outrank five kicker in aces and kings")
	}
}

func TestEvaluateSplitBoard(t *testing.T) {
	// Board plays for both; hole cards cannot improve.
	community := "AsKsQdJcTh"
	a := evalCards(t, "2d3c", community)
	b := evalCards(t, "4h5s", community)
	if a != b {
		t.Errorf("Identical board straights should tie: %v vs %v", a, b)
	}
}

func TestEvaluateTwoTripsIsFullHouse(t *testing.T) {
	rank := evalCards(t, "AsAh", "AdKcKsKh2d")
	if rank.Category() != FullHouse {
		t.Errorf("Expected FullHouse from two trips, got %s", rank.Category())
	}
	// Aces full of kings, not kings full of aces.
	acesFull := evalCards(t, "AsAh", "AdKcKs9h2d")
	if rank != acesFull {
		t.Errorf("Two trips should resolve to the higher full house")
	}
}

func TestEvaluateCategoryProgression(t *testing.T) {
	order := []HandRank{
		evalCards(t, "AsKh", "Qd9c7s5h2d"), // high card
		evalCards(t, "AsAh", "Kd9c7s5h2d"), // pair
		evalCards(t, "AsAh", "KdKc7s5h2d"), // two pair
		evalCards(t, "AsAh", "Ad9c7s5h2d"), // trips
		evalCards(t, "9s8h", "7d6c5s2h2d"), // straight
		evalCards(t, "AsKs", "9s7s2sQhJd"), // flush
		evalCards(t, "AsAh", "AdKcKs5h2d"), // full house
		evalCards(t, "AsAh", "AdAc7s5h2d"), // quads
		evalCards(t, "9s8s", "7s6s5sQhJd"), // straight flush
	}

	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Errorf("Rank %d (%s) should outrank rank %d (%s)",
				i, order[i].Category(), i-1, order[i-1].Category())
		}
	}
}

func toOracle(c deck.Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case deck.Clubs:
		s = poker.Club
	case deck.Diamonds:
		s = poker.Diamond
	case deck.Hearts:
		s = poker.Heart
	case deck.Spades:
		s = poker.Spade
	}
	r := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		r = poker.Rank(1)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

// TestEvaluateAgainstOracle deals random 7-card boards to two players and
// checks that our ordering of the two hands agrees with the reference
// evaluator.
func TestEvaluateAgainstOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		d := deck.New(rng)
		holeA := d.DealN(2)
		holeB := d.DealN(2)
		community := d.DealN(5)

		rankA := Evaluate(holeA, community)
		rankB := Evaluate(holeB, community)

		var sevenA, sevenB [7]poker.Card
		for j, c := range append(append([]deck.Card{}, holeA...), community...) {
			sevenA[j] = toOracle(c)
		}
		for j, c := range append(append([]deck.Card{}, holeB...), community...) {
			sevenB[j] = toOracle(c)
		}
		oracleA := poker.Eval7(&sevenA)
		oracleB := poker.Eval7(&sevenB)

		switch {
		case oracleA > oracleB && rankA <= rankB:
			t.Fatalf("Board %d: oracle says A wins, we say not (A=%v B=%v)", i, rankA, rankB)
		case oracleA < oracleB && rankA >= rankB:
			t.Fatalf("Board %d: oracle says B wins, we say not (A=%v B=%v)", i, rankA, rankB)
		case oracleA == oracleB && rankA != rankB:
			t.Fatalf("Board %d: oracle says tie, we say not (A=%v B=%v)", i, rankA, rankB)
		}
	}
}
