package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prik73/mediasoup-concept-2/mixers"
)

// Input is one session description feeding the encoder. Each carries a
// video stream and optionally a paired audio stream.
type Input struct {
	SDPPath  string
	HasAudio bool
}

// BuildArgs constructs the full encoder argument list for composing the
// inputs onto one segmented output. It is a pure function so layouts
// and filter graphs can be tested without spawning anything.
func BuildArgs(inputs []Input, layout mixers.Layout, outDir string) []string {
	args := []string{
		"-y",
		"-protocol_whitelist", "file,rtp,udp",
		"-loglevel", "error",
	}

	for _, in := range inputs {
		args = append(args, "-i", in.SDPPath)
	}

	videoFilter := buildVideoFilter(len(inputs), layout)
	audioFilter := buildAudioFilter(inputs)

	hasAudio := audioFilter != ""
	if hasAudio {
		args = append(args, "-filter_complex", videoFilter+";"+audioFilter)
		args = append(args, "-map", "[v]", "-map", "[a]")
	} else {
		args = append(args, "-filter_complex", videoFilter)
		args = append(args, "-map", "[v]")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-tune", "zerolatency",
		"-profile:v", "high",
		"-level", "4.0",
		"-b:v", "2000k",
		"-maxrate", "2500k",
		"-bufsize", "5000k",
		"-pix_fmt", "yuv420p",
		"-g", "15",
		"-keyint_min", "15",
		"-sc_threshold", "0",
		"-avoid_negative_ts", "make_zero",
		"-r", "30",
	)

	if hasAudio {
		args = append(args,
			"-c:a", "aac",
			"-b:a", "128k",
			"-ar", "48000",
			"-ac", "2",
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-f", "hls",
		"-hls_time", "1",
		"-hls_list_size", "6",
		"-hls_flags", "delete_segments+independent_segments",
		"-hls_segment_type", "mpegts",
		"-hls_delete_threshold", "3",
		"-hls_segment_filename", filepath.Join(outDir, "segment_%03d.ts"),
		filepath.Join(outDir, "index.m3u8"),
	)

	return args
}

// buildVideoFilter scales every video stream to its tile and stacks
// tiles row by row. A partial last row is stretched to the full frame
// width so the row stack stays rectangular.
func buildVideoFilter(n int, layout mixers.Layout) string {
	if n == 1 {
		return fmt.Sprintf("[0:v]scale=%d:%d[v]", mixers.FrameWidth, mixers.FrameHeight)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:v]scale=%d:%d[v%d];", i, layout.TileWidth, layout.TileHeight, i)
	}

	rowLabels := make([]string, 0, layout.Rows)
	for row := 0; row < layout.Rows; row++ {
		start := row * layout.Cols
		if start >= n {
			break
		}
		end := start + layout.Cols
		if end > n {
			end = n
		}
		k := end - start

		label := fmt.Sprintf("row%d", row)
		switch {
		case k == 1:
			fmt.Fprintf(&b, "[v%d]scale=%d:%d[%s];", start, mixers.FrameWidth, layout.TileHeight, label)
		case k < layout.Cols:
			for i := start; i < end; i++ {
				fmt.Fprintf(&b, "[v%d]", i)
			}
			fmt.Fprintf(&b, "hstack=inputs=%d[raw%d];", k, row)
			fmt.Fprintf(&b, "[raw%d]scale=%d:%d[%s];", row, mixers.FrameWidth, layout.TileHeight, label)
		default:
			for i := start; i < end; i++ {
				fmt.Fprintf(&b, "[v%d]", i)
			}
			fmt.Fprintf(&b, "hstack=inputs=%d[%s];", k, label)
		}
		rowLabels = append(rowLabels, label)
	}

	if len(rowLabels) == 1 {
		out := b.String()
		// rename the single row straight to the output pad
		return strings.TrimSuffix(strings.Replace(out, "["+rowLabels[0]+"]", "[v]", 1), ";")
	}

	for _, label := range rowLabels {
		fmt.Fprintf(&b, "[%s]", label)
	}
	fmt.Fprintf(&b, "vstack=inputs=%d[v]", len(rowLabels))
	return b.String()
}

func buildAudioFilter(inputs []Input) string {
	audio := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if in.HasAudio {
			audio = append(audio, i)
		}
	}

	switch len(audio) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("[%d:a]volume=1.0[a]", audio[0])
	default:
		var b strings.Builder
		for _, i := range audio {
			fmt.Fprintf(&b, "[%d:a]", i)
		}
		fmt.Fprintf(&b, "amix=inputs=%d:duration=longest[a]", len(audio))
		return b.String()
	}
}
