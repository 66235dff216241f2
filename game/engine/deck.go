package engine

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck is the ordered source of future cards. Cards are drawn from the front.
type Deck struct {
	cards []CardValue
}

// NewDeck builds ranks*multiplicity cards in rank order, each rank repeated
// multiplicity times
func NewDeck(ranks, multiplicity int) (*Deck, error) {
	if ranks < MinRanks || ranks > MaxRanks {
		return nil, fmt.Errorf("%w: ranks must be between %d and %d, got %d", ErrInvalidConfig, MinRanks, MaxRanks, ranks)
	}
	if multiplicity < MinMultiplicity || multiplicity > MaxMultiplicity {
		return nil, fmt.Errorf("%w: multiplicity must be between %d and %d, got %d", ErrInvalidConfig, MinMultiplicity, MaxMultiplicity, multiplicity)
	}

	cards := make([]CardValue, 0, ranks*multiplicity)
	for rank := 1; rank <= ranks; rank++ {
		for range multiplicity {
			cards = append(cards, CardValue(rank))
		}
	}
	return &Deck{cards: cards}, nil
}

// NewDeckFromCards builds a scripted deck that draws cards in the given order
func NewDeckFromCards(cards []CardValue) *Deck {
	d := &Deck{cards: make([]CardValue, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle permutes the remaining cards in place (Fisher-Yates)
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card, or ErrDeckEmpty
func (d *Deck) Draw() (CardValue, error) {
	if len(d.cards) == 0 {
		return 0, ErrDeckEmpty
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of undrawn cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Peek returns a copy of the remaining cards in draw order
func (d *Deck) Peek() []CardValue {
	out := make([]CardValue, len(d.cards))
	copy(out, d.cards)
	return out
}
