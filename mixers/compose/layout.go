package compose

import (
	"math"

	"github.com/prik73/mediasoup-concept-2/mixers"
)

// PlanLayout picks the tile grid for n video streams. One stream fills
// the frame, two split it into columns, up to four share a 2x2 grid,
// and larger counts get a near-square grid. Unused cells are omitted,
// not blanked.
func PlanLayout(n int) mixers.Layout {
	switch {
	case n <= 1:
		return mixers.Layout{
			Cols:       1,
			Rows:       1,
			TileWidth:  mixers.FrameWidth,
			TileHeight: mixers.FrameHeight,
		}
	case n == 2:
		return mixers.Layout{
			Cols:       2,
			Rows:       1,
			TileWidth:  mixers.FrameWidth / 2,
			TileHeight: mixers.FrameHeight,
		}
	case n <= 4:
		return mixers.Layout{
			Cols:       2,
			Rows:       2,
			TileWidth:  mixers.FrameWidth / 2,
			TileHeight: mixers.FrameHeight / 2,
		}
	default:
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		rows := int(math.Ceil(float64(n) / float64(cols)))
		return mixers.Layout{
			Cols:       cols,
			Rows:       rows,
			TileWidth:  mixers.FrameWidth / cols,
			TileHeight: mixers.FrameHeight / rows,
		}
	}
}
