package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models"
	shaktrismodels "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/services/shaktris"
)

// WriteErrorResponse writes a JSON error body, grounded on the teacher's
// game_handler.go helper of the same name.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteJSONResponse writes a JSON success body.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// gameErrStatus maps a gameerr.Kind to the HTTP status the external AI
// surface reports it under.
func gameErrStatus(err error) int {
	var ge *gameerr.Error
	if !errors.As(err, &ge) {
		return http.StatusInternalServerError
	}
	switch ge.Kind() {
	case gameerr.KindValidation, gameerr.KindProtocol:
		return http.StatusBadRequest
	case gameerr.KindAuthorisation:
		return http.StatusUnauthorized
	case gameerr.KindTransient:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ComputerPlayerHandler serves the external AI HTTP surface of section 6:
// registration, attaching a registered AI to a game, submitting its moves,
// and the read-only piece/tetromino-preview endpoints it polls before
// deciding a move. Grounded on the teacher's GameHandler (one struct per
// handler group, holding the services it needs) but routed through
// gorilla/mux instead of chi, per the main.go standardization noted in
// SPEC_FULL.md.
type ComputerPlayerHandler struct {
	coordinator      *shaktris.Coordinator
	scheduler        *shaktris.AIScheduler
	registrationRepo database.AIRegistrationRepository
}

// NewComputerPlayerHandler builds a handler bound to coordinator/scheduler.
// registrationRepo may be nil, in which case registrations are not recorded;
// capability tokens are verified from their signature either way and never
// looked up in the repository (see section 6's Persistence note).
func NewComputerPlayerHandler(coordinator *shaktris.Coordinator, scheduler *shaktris.AIScheduler, registrationRepo database.AIRegistrationRepository) *ComputerPlayerHandler {
	return &ComputerPlayerHandler{coordinator: coordinator, scheduler: scheduler, registrationRepo: registrationRepo}
}

// Register handles POST /computer-players/register: it mints a fresh
// playerId and issues a capability token for it, without yet binding the AI
// to any game (AddToGame does that next).
func (h *ComputerPlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = "external-ai"
	}

	playerID := uuid.New().String()
	token, err := h.scheduler.IssueCapabilityToken(playerID)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("could not issue token: %v", err))
		return
	}
	if h.registrationRepo != nil {
		reg := models.AIRegistration{PlayerID: playerID, Name: req.Name, CreatedAt: time.Now()}
		if err := h.registrationRepo.Create(reg); err != nil {
			fmt.Printf("warning: failed to persist ai registration for %s: %v\n", playerID, err)
		}
	}

	WriteJSONResponse(w, http.StatusCreated, map[string]string{"playerId": playerID, "apiToken": token})
}

// AddToGame handles POST /games/:gameId/add-computer-player: it joins the
// already-registered external AI (identified by its verified bearer token)
// to gameId.
func (h *ComputerPlayerHandler) AddToGame(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "missing verified player id")
		return
	}
	gameID := mux.Vars(r)["gameId"]

	var req struct {
		DisplayName string `json:"displayName"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.DisplayName == "" {
		req.DisplayName = playerID
	}

	ctx := r.Context()
	_, player, err := h.coordinator.JoinGame(ctx, gameID, playerID, req.DisplayName, false, true, nil)
	if err != nil {
		WriteErrorResponse(w, gameErrStatus(err), err.Error())
		return
	}
	WriteJSONResponse(w, http.StatusOK, player)
}

// computerMoveRequest is the body of POST /games/:gameId/computer-move,
// per section 6: moveType selects which of the two move shapes moveData
// holds.
type computerMoveRequest struct {
	MoveType string          `json:"moveType"`
	MoveData json.RawMessage `json:"moveData"`
}

type tetrominoMoveData struct {
	Type     shaktrismodels.PieceType `json:"type"`
	Rotation shaktrismodels.Rotation  `json:"rotation"`
	Position wirePosition             `json:"position"`
}

type chessMoveData struct {
	PieceID        string       `json:"pieceId"`
	TargetPosition wirePosition `json:"targetPosition"`
}

// ComputerMove handles POST /games/:gameId/computer-move: the external AI
// submits one tetromino placement or chess move, funnelled through the
// same Coordinator.SubmitMove path as a human or built-in AI (Design Note
// open question 4), so it is subject to the identical minDurationMs
// rate limit (section 4.H, scenario S6).
func (h *ComputerPlayerHandler) ComputerMove(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "missing verified player id")
		return
	}

	var req computerMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var moveReq shaktris.MoveRequest
	switch req.MoveType {
	case "tetromino":
		var d tetrominoMoveData
		if err := json.Unmarshal(req.MoveData, &d); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "invalid moveData for tetromino")
			return
		}
		moveReq = shaktris.MoveRequest{
			Kind: shaktris.MoveTetromino, PieceType: d.Type, Rotation: d.Rotation,
			Position: shaktrismodels.Coord{X: d.Position.X, Z: d.Position.Z},
		}
	case "chess":
		var d chessMoveData
		if err := json.Unmarshal(req.MoveData, &d); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "invalid moveData for chess")
			return
		}
		moveReq = shaktris.MoveRequest{
			Kind: shaktris.MoveChess, PieceID: d.PieceID,
			Target: shaktrismodels.Coord{X: d.TargetPosition.X, Z: d.TargetPosition.Z},
		}
	default:
		WriteErrorResponse(w, http.StatusBadRequest, "moveType must be tetromino or chess")
		return
	}

	result, err := h.coordinator.SubmitMove(r.Context(), playerID, moveReq)
	if err != nil {
		WriteErrorResponse(w, gameErrStatus(err), err.Error())
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// AvailableTetrominos handles GET /games/:gameId/available-tetrominos: the
// caller's currently dealt piece plus the game-wide upcoming preview.
func (h *ComputerPlayerHandler) AvailableTetrominos(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "missing verified player id")
		return
	}
	preview, err := h.coordinator.RequestTetromino(r.Context(), playerID)
	if err != nil {
		WriteErrorResponse(w, gameErrStatus(err), err.Error())
		return
	}
	WriteJSONResponse(w, http.StatusOK, preview)
}

// ChessPieces handles GET /games/:gameId/chess-pieces: the caller's own
// live chess pieces, read out of a full snapshot since the Instance has no
// narrower single-player query.
func (h *ComputerPlayerHandler) ChessPieces(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "missing verified player id")
		return
	}
	gameID := mux.Vars(r)["gameId"]
	snap, err := h.coordinator.GetGameState(r.Context(), gameID)
	if err != nil {
		WriteErrorResponse(w, gameErrStatus(err), err.Error())
		return
	}

	var mine []shaktrismodels.Item
	for _, cell := range snap.Cells {
		for _, item := range cell.Items {
			if item.Kind == shaktrismodels.ItemChess && item.Chess.PlayerID == playerID {
				mine = append(mine, item)
			}
		}
	}
	WriteJSONResponse(w, http.StatusOK, mine)
}
