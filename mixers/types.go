package mixers

const (
	FrameWidth  = 1280
	FrameHeight = 720
)

// Layout places n video tiles on the output frame.
type Layout struct {
	Cols       int
	Rows       int
	TileWidth  int
	TileHeight int
}

// Tiles is the number of cells the grid can hold.
func (l Layout) Tiles() int {
	return l.Cols * l.Rows
}
