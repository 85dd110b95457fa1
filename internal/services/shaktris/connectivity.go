package shaktris

import (
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// belongsToPlayer reports whether the items at c include anything owned by
// playerID: a tetromino item, a chess item, or a home item. The BFS in this
// file walks only through such cells, per section 4.D.
func belongsToPlayer(board *models.Board, c models.Coord, playerID string) bool {
	items, ok := board.Get(c)
	if !ok {
		return false
	}
	for _, it := range items {
		switch it.Kind {
		case models.ItemTetromino:
			if it.Tetromino.PlayerID == playerID {
				return true
			}
		case models.ItemChess:
			if it.Chess.PlayerID == playerID {
				return true
			}
		case models.ItemHome:
			if it.Home.PlayerID == playerID {
				return true
			}
		}
	}
	return false
}

// HasPathToKing performs an eight-neighbourhood breadth-first search from
// start over cells belonging to playerID, returning the shortest path to
// that player's king cell if one exists. Direction iteration is in the
// fixed lexicographic order Coord.Neighbours() produces, keeping ties
// between equally short paths deterministic (section 4.D).
func HasPathToKing(board *models.Board, start models.Coord, kingCell models.Coord, playerID string) ([]models.Coord, bool) {
	if !belongsToPlayer(board, start, playerID) {
		return nil, false
	}
	if start == kingCell {
		return []models.Coord{start}, true
	}

	visited := map[models.Coord]bool{start: true}
	prev := map[models.Coord]models.Coord{}
	queue := []models.Coord{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, n := range cur.Neighbours() {
			if visited[n] || !belongsToPlayer(board, n, playerID) {
				continue
			}
			visited[n] = true
			prev[n] = cur
			if n == kingCell {
				return reconstructPath(prev, start, kingCell), true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

func reconstructPath(prev map[models.Coord]models.Coord, start, end models.Coord) []models.Coord {
	path := []models.Coord{end}
	cur := end
	for cur != start {
		cur = prev[cur]
		path = append(path, cur)
	}
	// reverse into start->end order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindIslands partitions every cell belonging to playerID into maximal
// eight-connected components ("islands"). Used after destructive events
// (row clear, capture) to find components no longer connected to the king
// (section 4.D).
func FindIslands(board *models.Board, playerID string) [][]models.Coord {
	visited := map[models.Coord]bool{}
	var islands [][]models.Coord

	board.IterateOccupied(func(c models.Coord, items []models.Item) {
		if visited[c] || !belongsToPlayer(board, c, playerID) {
			return
		}
		var island []models.Coord
		queue := []models.Coord{c}
		visited[c] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			island = append(island, cur)
			for _, n := range cur.Neighbours() {
				if visited[n] || !belongsToPlayer(board, n, playerID) {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}
		islands = append(islands, island)
	})
	return islands
}
