package mediasoup

import "encoding/json"

// MediaKind is "audio" or "video".
type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

// RtpCapabilities is passed between the worker and clients verbatim.
// The signaling layer never interprets it.
type RtpCapabilities = json.RawMessage

// RtpCodec is the subset of codec fields the composer needs to build
// SDP descriptions. Everything else rides along in RtpParameters raw fields.
type RtpCodec struct {
	MimeType    string         `json:"mimeType"`
	PayloadType int            `json:"payloadType"`
	ClockRate   int            `json:"clockRate"`
	Channels    int            `json:"channels,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// RtpParameters carries producer/consumer RTP parameters. Codecs are
// typed; the remaining sections pass through untouched.
type RtpParameters struct {
	Mid              string          `json:"mid,omitempty"`
	Codecs           []RtpCodec      `json:"codecs"`
	HeaderExtensions json.RawMessage `json:"headerExtensions,omitempty"`
	Encodings        json.RawMessage `json:"encodings,omitempty"`
	Rtcp             json.RawMessage `json:"rtcp,omitempty"`
}

// RouterInfo describes a per-room router on the worker.
type RouterInfo struct {
	ID              string          `json:"id"`
	RtpCapabilities RtpCapabilities `json:"rtpCapabilities"`
}

// WebRtcTransportInfo is what a client needs to establish its side of the
// transport. ICE/DTLS blobs are opaque to us.
type WebRtcTransportInfo struct {
	ID             string          `json:"id"`
	IceParameters  json.RawMessage `json:"iceParameters"`
	IceCandidates  json.RawMessage `json:"iceCandidates"`
	DtlsParameters json.RawMessage `json:"dtlsParameters"`
}

// PlainTransportInfo describes an RTP-over-UDP transport used by the composer.
type PlainTransportInfo struct {
	ID       string `json:"id"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	RtcpPort int    `json:"rtcpPort,omitempty"`
}

// PlainTransportOptions requests a plain transport bound to specific ports.
type PlainTransportOptions struct {
	ListenIP string `json:"listenIp"`
	RtcpMux  bool   `json:"rtcpMux"`
	Comedia  bool   `json:"comedia"`
}

// ConnectPlainOptions tells the worker where to send RTP for a plain transport.
type ConnectPlainOptions struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	RtcpPort int    `json:"rtcpPort,omitempty"`
}

// ConsumerInfo is the worker's view of a created consumer.
type ConsumerInfo struct {
	ID            string        `json:"id"`
	ProducerID    string        `json:"producerId"`
	Kind          MediaKind     `json:"kind"`
	RtpParameters RtpParameters `json:"rtpParameters"`
}

// apiResponse is the worker's envelope: the resource fields inline plus
// an optional error string.
type apiResponse struct {
	Error string `json:"error,omitempty"`
}
