package shaktris

import (
	"fmt"

	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// homeZoneRadiusStep and homeZoneFileHalfWidth size the ring-expansion
// layout used by allocateHomeZone: each successive ring of four zones sits
// this many cells further from the origin, and each zone's back rank spans
// 8 files centered on its axis, matching 4.F's "grid-layout expansion
// outward from origin" requirement.
const (
	homeZoneRadiusStep    = 20
	homeZoneFileHalfWidth = 4
)

var backRankOrder = []models.ChessPieceKnd{
	models.Rook, models.Knight, models.Bishop, models.Queen,
	models.King, models.Bishop, models.Knight, models.Rook,
}

// allocateHomeZone deterministically places the index'th player's home
// zone on an outward-expanding four-slot ring, one slot per cardinal
// direction facing the origin, so zones never overlap and new players
// always land further out (section 4.F step 1).
func allocateHomeZone(playerID string, index int) models.HomeZone {
	ring := index/4 + 1
	slot := index % 4
	radius := ring * homeZoneRadiusStep
	lo := -homeZoneFileHalfWidth
	hi := homeZoneFileHalfWidth - 1

	zone := models.HomeZone{PlayerID: playerID}
	switch slot {
	case 0: // faces +z, sits on the -z side
		zone.MinX, zone.MaxX = lo, hi
		zone.MinZ, zone.MaxZ = -radius, -radius+1
		zone.Orientation = 0
	case 1: // faces -x, sits on the +x side
		zone.MinX, zone.MaxX = radius, radius+1
		zone.MinZ, zone.MaxZ = lo, hi
		zone.Orientation = 1
	case 2: // faces -z, sits on the +z side
		zone.MinX, zone.MaxX = lo, hi
		zone.MinZ, zone.MaxZ = radius, radius+1
		zone.Orientation = 2
	default: // faces +x, sits on the -x side
		zone.MinX, zone.MaxX = -radius-1, -radius
		zone.MinZ, zone.MaxZ = lo, hi
		zone.Orientation = 3
	}
	return zone
}

// markHomeZone paints every cell of zone with a home item for playerID.
func markHomeZone(board *models.Board, zone models.HomeZone) {
	for x := zone.MinX; x <= zone.MaxX; x++ {
		for z := zone.MinZ; z <= zone.MaxZ; z++ {
			board.Append(models.Coord{X: x, Z: z}, models.Item{Kind: models.ItemHome, Home: &models.HomeItem{PlayerID: zone.PlayerID}})
		}
	}
}

// spawnInitialPieces creates the standard back-rank-plus-pawns chess set
// inside zone and writes both the ChessPiece records and their board items,
// satisfying invariant 1 (board/piece sync) from the moment of creation.
func spawnInitialPieces(board *models.Board, zone models.HomeZone) []*models.ChessPiece {
	pieces := make([]*models.ChessPiece, 0, 16)
	add := func(kind models.ChessPieceKnd, pos models.Coord) {
		piece := &models.ChessPiece{
			ID:          fmt.Sprintf("%s-%s-%d-%d", zone.PlayerID, kind, pos.X, pos.Z),
			Type:        kind,
			PlayerID:    zone.PlayerID,
			Position:    pos,
			Orientation: zone.Orientation,
		}
		pieces = append(pieces, piece)
		board.Append(pos, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{
			PieceID: piece.ID, Type: piece.Type, PlayerID: piece.PlayerID,
		}})
	}

	switch zone.Orientation {
	case 0:
		backZ := zone.MinZ
		for i, kind := range backRankOrder {
			file := zone.MinX + i
			add(kind, models.Coord{X: file, Z: backZ})
			add(models.Pawn, models.Coord{X: file, Z: backZ + 1})
		}
	case 1:
		backX := zone.MaxX
		for i, kind := range backRankOrder {
			file := zone.MinZ + i
			add(kind, models.Coord{X: backX, Z: file})
			add(models.Pawn, models.Coord{X: backX - 1, Z: file})
		}
	case 2:
		backZ := zone.MaxZ
		for i, kind := range backRankOrder {
			file := zone.MinX + i
			add(kind, models.Coord{X: file, Z: backZ})
			add(models.Pawn, models.Coord{X: file, Z: backZ - 1})
		}
	default:
		backX := zone.MinX
		for i, kind := range backRankOrder {
			file := zone.MinZ + i
			add(kind, models.Coord{X: backX, Z: file})
			add(models.Pawn, models.Coord{X: backX + 1, Z: file})
		}
	}
	return pieces
}
