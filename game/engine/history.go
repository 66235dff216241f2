package engine

var _ Engine = (*GameEngine)(nil)

// addPlacementToHistory records a placement attempt in both the cumulative
// history and the current segment
func (e *GameEngine) addPlacementToHistory(out *PlacementOutcome) {
	entry := PlacementHistoryEntry{
		Position:        out.Position,
		Value:           out.Value,
		Accepted:        out.Accepted,
		RejectReason:    out.RejectReason,
		Remaining:       out.Remaining,
		Timestamp:       e.clock.Now().Unix(),
		PlacementNumber: len(e.history) + 1,
	}
	if len(out.Cleared) > 0 {
		entry.Cleared = append([]ClearedCell(nil), out.Cleared...)
	}

	e.history = append(e.history, entry)
	e.currentHistory = append(e.currentHistory, entry)
}
