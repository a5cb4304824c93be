package transport

// StreamURI identifies a room's composition stream in the URL path.
type StreamURI struct {
	// RoomName: 1-64 characters (letters, numbers, hyphens, underscores)
	RoomName string `uri:"roomName" binding:"required,roomid"`
}

// HLSFileURI identifies a playlist or segment under a room's output
// directory.
type HLSFileURI struct {
	RoomName string `uri:"roomName" binding:"required,roomid"`
	File     string `uri:"file" binding:"required"`
}
