package deck

import "math/rand"

// Deck represents a shuffled deck of playing cards. The RNG is injected
// so hands can be replayed deterministically in tests.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a new 52-card deck, shuffled with the given RNG.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	d.fill()
	d.shuffle()
	return d
}

// NewStacked creates a deck that deals the given cards in order, followed
// by the remainder of the pack in an arbitrary but fixed order. For tests.
func NewStacked(top []Card) *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	seen := make(map[Card]bool, len(top))
	for _, c := range top {
		seen[c] = true
	}
	d.cards = append(d.cards, top...)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(suit, rank)
			if !seen[c] {
				d.cards = append(d.cards, c)
			}
		}
	}
	return d
}

func (d *Deck) fill() {
	d.cards = d.cards[:0]
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card. The second return value is false
// when the deck is exhausted; with at most 5 community and 2×9 hole cards
// per hand that is an upstream invariant violation, not a normal outcome.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals up to n cards from the deck.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Deal()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
