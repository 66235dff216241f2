package engine

import "fmt"

// PairRule maps a card value to its unique matching partner
type PairRule interface {
	// PartnerOf returns the partner of v, or false when v never pairs
	PartnerOf(v CardValue) (CardValue, bool)
}

// PairTable pairs the pairing ranks consecutively in ascending order:
// with 13 ranks and 13 excluded that is 1-2, 3-4, ... 11-12.
type PairTable struct {
	ranks          int
	nonPairingRank int
	partners       map[CardValue]CardValue
}

// NewPairTable builds the table for ranks 1..ranks. nonPairingRank is excluded
// from pairing; NoNonPairingRank means every rank pairs.
func NewPairTable(ranks, nonPairingRank int) (*PairTable, error) {
	if ranks < MinRanks || ranks > MaxRanks {
		return nil, fmt.Errorf("%w: ranks must be between %d and %d, got %d", ErrInvalidConfig, MinRanks, MaxRanks, ranks)
	}
	if nonPairingRank != NoNonPairingRank && (nonPairingRank < 1 || nonPairingRank > ranks) {
		return nil, fmt.Errorf("%w: non_pairing_rank must be between 1 and %d or %d, got %d", ErrInvalidConfig, ranks, NoNonPairingRank, nonPairingRank)
	}

	pairing := make([]CardValue, 0, ranks)
	for rank := 1; rank <= ranks; rank++ {
		if rank != nonPairingRank {
			pairing = append(pairing, CardValue(rank))
		}
	}
	if len(pairing)%2 != 0 {
		return nil, fmt.Errorf("%w: %d pairing ranks cannot be split into pairs", ErrInvalidConfig, len(pairing))
	}

	partners := make(map[CardValue]CardValue, len(pairing))
	for i := 0; i < len(pairing); i += 2 {
		a, b := pairing[i], pairing[i+1]
		partners[a] = b
		partners[b] = a
	}

	return &PairTable{
		ranks:          ranks,
		nonPairingRank: nonPairingRank,
		partners:       partners,
	}, nil
}

// PartnerOf implements PairRule
func (t *PairTable) PartnerOf(v CardValue) (CardValue, bool) {
	p, ok := t.partners[v]
	return p, ok
}

// NonPairingRank returns the excluded rank, or NoNonPairingRank
func (t *PairTable) NonPairingRank() int {
	return t.nonPairingRank
}

// Pairs lists each pair once, lower rank first, in ascending order
func (t *PairTable) Pairs() [][2]CardValue {
	var pairs [][2]CardValue
	for rank := 1; rank <= t.ranks; rank++ {
		v := CardValue(rank)
		if p, ok := t.partners[v]; ok && v < p {
			pairs = append(pairs, [2]CardValue{v, p})
		}
	}
	return pairs
}
