package models

// MoveRequest is the body of POST /api/sessions/:id/moves. Range checks happen in
// the session so out-of-range cells get the same answer as any other illegal move.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required"`
}
