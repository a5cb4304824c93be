package ffmpeg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
)

func videoParams() mediasoup.RtpParameters {
	return mediasoup.RtpParameters{
		Codecs: []mediasoup.RtpCodec{{
			MimeType:    "video/VP8",
			PayloadType: 101,
			ClockRate:   90000,
		}},
	}
}

func audioParams() mediasoup.RtpParameters {
	return mediasoup.RtpParameters{
		Codecs: []mediasoup.RtpCodec{{
			MimeType:    "audio/opus",
			PayloadType: 100,
			ClockRate:   48000,
			Channels:    2,
			Parameters: map[string]any{
				"useinbandfec": 1,
				"minptime":     10,
			},
		}},
	}
}

func TestSDPGenerateVideoOnly(t *testing.T) {
	tmpDir := t.TempDir()
	sg := NewSDPGenerator(tmpDir)

	sdpPath, err := sg.Generate("r1", 0, videoParams(), 6004, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "r1_stream0.sdp"), sdpPath)

	content, err := os.ReadFile(sdpPath)
	require.NoError(t, err)

	sdp := string(content)
	assert.Contains(t, sdp, "v=0")
	assert.Contains(t, sdp, "m=video 6004 RTP/AVP 101")
	assert.Contains(t, sdp, "a=rtpmap:101 VP8/90000")
	assert.Contains(t, sdp, "a=sendonly")
	assert.NotContains(t, sdp, "m=audio")
}

func TestSDPVideoClockRateFromCodec(t *testing.T) {
	sg := NewSDPGenerator(t.TempDir())

	video := mediasoup.RtpParameters{
		Codecs: []mediasoup.RtpCodec{{
			MimeType:    "video/H264",
			PayloadType: 102,
			ClockRate:   77000,
		}},
	}
	sdpPath, err := sg.Generate("r1", 0, video, 6004, nil, 0)
	require.NoError(t, err)

	content, err := os.ReadFile(sdpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "a=rtpmap:102 H264/77000")
}

func TestSDPGenerateWithAudio(t *testing.T) {
	tmpDir := t.TempDir()
	sg := NewSDPGenerator(tmpDir)

	audio := audioParams()
	sdpPath, err := sg.Generate("r1", 1, videoParams(), 6004, &audio, 6006)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "r1_stream1.sdp"), sdpPath)

	content, err := os.ReadFile(sdpPath)
	require.NoError(t, err)

	sdp := string(content)
	assert.Contains(t, sdp, "m=audio 6006 RTP/AVP 100")
	assert.Contains(t, sdp, "a=rtpmap:100 OPUS/48000/2")
	// fmtp keys are sorted
	assert.Contains(t, sdp, "a=fmtp:100 minptime=10;useinbandfec=1")
}

func TestSDPGenerateNoCodecsFails(t *testing.T) {
	sg := NewSDPGenerator(t.TempDir())

	_, err := sg.Generate("r1", 0, mediasoup.RtpParameters{}, 6004, nil, 0)
	assert.Error(t, err)
}

func TestSDPDelete(t *testing.T) {
	tmpDir := t.TempDir()
	sg := NewSDPGenerator(tmpDir)

	sdpPath, err := sg.Generate("r1", 0, videoParams(), 6004, nil, 0)
	require.NoError(t, err)
	assert.FileExists(t, sdpPath)

	assert.NoError(t, sg.Delete(sdpPath))
	assert.NoFileExists(t, sdpPath)

	// deleting twice is fine
	assert.NoError(t, sg.Delete(sdpPath))
}
