package domain

// RoomInfo is a read-only view of one live room.
type RoomInfo struct {
	ID           string `json:"id"`
	Members      int    `json:"members"`
	Broadcasters int    `json:"broadcasters"`
	Viewers      int    `json:"viewers"`
}
