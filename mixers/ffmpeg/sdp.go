package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
)

// SDPGenerator writes session description files describing the relay
// streams the encoder reads from.
type SDPGenerator struct {
	sdpDir string
}

// NewSDPGenerator creates a new SDPGenerator
func NewSDPGenerator(sdpDir string) *SDPGenerator {
	if sdpDir == "" {
		sdpDir = "/tmp/sdp"
	}
	return &SDPGenerator{
		sdpDir: sdpDir,
	}
}

// Generate writes the description for one stream pair: a video relay
// and, when audio is non-nil, its paired audio relay. Ports are the
// destination ports the encoder binds.
func (sg *SDPGenerator) Generate(
	roomName string,
	streamIdx int,
	video mediasoup.RtpParameters,
	videoPort int,
	audio *mediasoup.RtpParameters,
	audioPort int,
) (string, error) {
	if len(video.Codecs) == 0 {
		return "", fmt.Errorf("video rtp parameters have no codecs")
	}

	var b strings.Builder
	b.WriteString("v=0\r\n")
	b.WriteString("o=- 0 0 IN IP4 127.0.0.1\r\n")
	b.WriteString("s=FFmpeg\r\n")
	b.WriteString("c=IN IP4 127.0.0.1\r\n")
	b.WriteString("t=0 0\r\n")

	videoCodec := video.Codecs[0]
	writeMedia(&b, "video", videoPort, videoCodec, videoCodec.ClockRate)

	if audio != nil && len(audio.Codecs) > 0 {
		codec := audio.Codecs[0]
		writeMedia(&b, "audio", audioPort, codec, codec.ClockRate)
	}

	if err := os.MkdirAll(sg.sdpDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create SDP directory: %w", err)
	}

	sdpPath := filepath.Join(sg.sdpDir, fmt.Sprintf("%s_stream%d.sdp", roomName, streamIdx))
	if err := os.WriteFile(sdpPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write SDP file: %w", err)
	}

	return sdpPath, nil
}

func writeMedia(b *strings.Builder, kind string, port int, codec mediasoup.RtpCodec, clockRate int) {
	pt := codec.PayloadType
	codecName := strings.ToUpper(subtype(codec.MimeType))

	fmt.Fprintf(b, "m=%s %d RTP/AVP %d\r\n", kind, port, pt)
	fmt.Fprintf(b, "a=rtpmap:%d %s/%d", pt, codecName, clockRate)
	if kind == "audio" && codec.Channels > 1 {
		fmt.Fprintf(b, "/%d", codec.Channels)
	}
	b.WriteString("\r\n")

	if fmtp := fmtpLine(codec.Parameters); fmtp != "" {
		fmt.Fprintf(b, "a=fmtp:%d %s\r\n", pt, fmtp)
	}

	b.WriteString("a=sendonly\r\n")
}

func subtype(mimeType string) string {
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		return mimeType[idx+1:]
	}
	return mimeType
}

// fmtpLine renders codec parameters sorted by key so output is stable.
func fmtpLine(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, ";")
}

// Delete removes a previously generated description file.
func (sg *SDPGenerator) Delete(sdpPath string) error {
	err := os.Remove(sdpPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete SDP file: %w", err)
	}
	return nil
}
