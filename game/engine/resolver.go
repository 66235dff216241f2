package engine

// ResolveMatches computes the clear set for the card just placed at pos.
// It does not mutate the board. Resolution is single pass: only direct
// neighbors of the placed card are considered.
//
// The placed cell comes first, followed by matching neighbors in
// NeighborsOf order. An empty result means nothing clears.
func ResolveMatches(board *Board, pos Position, rule PairRule) []ClearedCell {
	placed, ok := board.Value(pos.Row, pos.Col)
	if !ok {
		return nil
	}
	partner, ok := rule.PartnerOf(placed)
	if !ok {
		return nil
	}

	var matches []ClearedCell
	seen := map[Position]bool{pos: true}
	for _, n := range board.NeighborsOf(pos.Row, pos.Col) {
		if seen[n] {
			continue
		}
		v, occupied := board.Value(n.Row, n.Col)
		if !occupied || v != partner {
			continue
		}
		seen[n] = true
		matches = append(matches, ClearedCell{Row: n.Row, Col: n.Col, Value: v})
	}

	if len(matches) == 0 {
		return nil
	}

	clears := make([]ClearedCell, 0, len(matches)+1)
	clears = append(clears, ClearedCell{Row: pos.Row, Col: pos.Col, Value: placed})
	return append(clears, matches...)
}
