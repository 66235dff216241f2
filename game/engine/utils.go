package engine

import (
	"strconv"
	"strings"
)

// MatchingPlacements returns the empty cells where value would clear at least
// one pair, in row-major order
func MatchingPlacements(board *Board, value CardValue, rule PairRule) []Position {
	partner, ok := rule.PartnerOf(value)
	if !ok {
		return nil
	}

	var cells []Position
	for _, pos := range board.EmptyCells() {
		for _, n := range board.NeighborsOf(pos.Row, pos.Col) {
			if v, occupied := board.Value(n.Row, n.Col); occupied && v == partner {
				cells = append(cells, pos)
				break
			}
		}
	}
	return cells
}

// HintCells returns the matching placements for the pending card of e
func HintCells(e *GameEngine) []Position {
	pending, ok := e.GetPending()
	if !ok || e.GetStatus() != StatusActive {
		return nil
	}
	return MatchingPlacements(e.board, pending, e.rule)
}

// CountRank counts the cards of a rank on the board
func CountRank(board *Board, value CardValue) int {
	count := 0
	for _, row := range board.Snapshot() {
		for _, v := range row {
			if v == value {
				count++
			}
		}
	}
	return count
}

// RenderBoard draws the board as text rows. Empty cells are ".", other cells
// are their rank padded to the widest rank.
func RenderBoard(board [][]CardValue, ranks int) []string {
	width := len(strconv.Itoa(ranks))
	lines := make([]string, 0, len(board))
	for _, row := range board {
		cells := make([]string, len(row))
		for c, v := range row {
			label := "."
			if v != 0 {
				label = strconv.Itoa(int(v))
			}
			cells[c] = strings.Repeat(" ", width-len(label)) + label
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}
