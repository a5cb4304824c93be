package compose

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prik73/mediasoup-concept-2/internal/errors"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
	"github.com/prik73/mediasoup-concept-2/internal/scheduler"
	"github.com/prik73/mediasoup-concept-2/mixers/ffmpeg"
	"github.com/prik73/mediasoup-concept-2/sessions"
)

const relayListenIP = "127.0.0.1"

// relay is one producer's raw transport plus the paused consumer piping
// its media toward the encoder.
type relay struct {
	transportID string
	consumerID  string
	dstPort     int
	rtpParams   mediasoup.RtpParameters
}

type session struct {
	roomName string
	proc     *ffmpeg.Process
	relays   []relay
	sdpPaths []string
	outDir   string
	started  atomic.Bool
	live     atomic.Bool
	stopped  atomic.Bool
}

// Coordinator owns the per-room composition sessions: relay allocation,
// description generation, encoder supervision, and full teardown. It
// implements wsgateway.Composer.
type Coordinator struct {
	engine   mediasoup.Client
	registry sessions.Registry
	sdpGen   *ffmpeg.SDPGenerator
	sched    *scheduler.KeyedScheduler

	hlsDir           string
	resumeDelay      time.Duration
	forceKillTimeout time.Duration

	// serializes start/stop sequences so a superseding start never
	// races a half-built session
	opMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*session

	// called after a room's output directory is removed
	onTeardown func(roomName string)

	// replaceable for testing
	spawnCmd func(args []string) *exec.Cmd

	logger *log.Logger
}

func NewCoordinator(
	engine mediasoup.Client,
	registry sessions.Registry,
	cfg Config,
	logger *log.Logger,
) *Coordinator {
	c := &Coordinator{
		engine:           engine,
		registry:         registry,
		sdpGen:           ffmpeg.NewSDPGenerator(cfg.SDPDir),
		sched:            scheduler.NewKeyedScheduler(logger.Module("Scheduler")),
		hlsDir:           filepath.Clean(cfg.HLSDir),
		resumeDelay:      cfg.ResumeDelay,
		forceKillTimeout: cfg.ForceKillTimeout,
		sessions:         make(map[string]*session),
		logger:           logger,
	}

	go c.resumeLoop()
	return c
}

// SetTeardownHook installs a callback invoked after each teardown, once
// the room's output artifacts are gone.
func (c *Coordinator) SetTeardownHook(fn func(roomName string)) {
	c.onTeardown = fn
}

// StreamStatus reports whether a composition session exists for the room.
func (c *Coordinator) StreamStatus(roomName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[roomName]
	return ok
}

// ActiveStreams lists rooms with a composition session.
func (c *Coordinator) ActiveStreams() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.sessions))
	for name := range c.sessions {
		names = append(names, name)
	}
	return names
}

// StartStream builds a composition session for the room and spawns the
// encoder. An existing session for the room is torn down completely
// first, so a duplicate start supersedes rather than doubles.
func (c *Coordinator) StartStream(ctx context.Context, roomName string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	prev := c.sessions[roomName]
	c.mu.Unlock()
	if prev != nil {
		c.logger.Info("Superseding existing stream", log.String("room", roomName))
		c.teardown(prev)
	}

	sess, err := c.buildSession(ctx, roomName)
	if err != nil {
		streamsFailed.Add(context.Background(), 1)
		return err
	}

	c.mu.Lock()
	c.sessions[roomName] = sess
	c.mu.Unlock()

	if err := sess.proc.Start(); err != nil {
		c.teardown(sess)
		streamsFailed.Add(context.Background(), 1)
		return errors.Wrap(ErrEncoderSpawn, err, "failed to start encoder")
	}
	sess.started.Store(true)

	// consumers were created paused; resume once the encoder has had
	// time to read the descriptions and bind its ports
	c.sched.Enqueue(roomName, c.resumeDelay)

	streamsStarted.Add(context.Background(), 1)
	activeSessions.Add(context.Background(), 1)

	c.logger.Info("Stream started",
		log.String("room", roomName),
		log.Int("relays", len(sess.relays)))
	return nil
}

// StopStream tears down the room's composition session. Stopping a room
// that is not streaming is an error to the caller but changes nothing.
func (c *Coordinator) StopStream(ctx context.Context, roomName string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	sess := c.sessions[roomName]
	c.mu.Unlock()
	if sess == nil {
		return errors.Newf(ErrRoomNotFound, "no active stream for room %s", roomName)
	}

	c.teardown(sess)
	return nil
}

// Close tears down every session. Used on shutdown.
func (c *Coordinator) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	all := make([]*session, 0, len(c.sessions))
	for _, sess := range c.sessions {
		all = append(all, sess)
	}
	c.mu.Unlock()

	for _, sess := range all {
		c.teardown(sess)
	}
	c.sched.Shutdown()
	return nil
}

func (c *Coordinator) buildSession(ctx context.Context, roomName string) (*session, error) {
	room, ok := c.registry.Room(roomName)
	if !ok {
		return nil, errors.Newf(ErrRoomNotFound, "room %s not found", roomName)
	}

	recs := c.registry.ProducerRecords(roomName)
	var videos, audios []sessions.ProducerRecord
	for _, rec := range recs {
		switch rec.Kind {
		case mediasoup.KindVideo:
			videos = append(videos, rec)
		case mediasoup.KindAudio:
			audios = append(audios, rec)
		}
	}
	if len(videos) == 0 {
		return nil, errors.Newf(ErrNoVideoProducer, "room %s has no video producers", roomName)
	}

	c.logger.Info("Composing room",
		log.String("room", roomName),
		log.Int("videoProducers", len(videos)),
		log.Int("audioProducers", len(audios)))

	sess := &session{
		roomName: roomName,
		outDir:   filepath.Join(c.hlsDir, roomName),
	}

	videoRelays, audioRelays, err := c.allocateRelays(ctx, room, videos, audios)
	sess.relays = append(videoRelays, audioRelays...)
	if err != nil {
		c.releaseRelays(sess)
		return nil, errors.Wrap(ErrRelaySetup, err, "relay allocation failed")
	}

	inputs, sdpPaths, err := c.writeDescriptions(roomName, videoRelays, audioRelays)
	sess.sdpPaths = sdpPaths
	if err != nil {
		c.cleanupArtifacts(sess)
		c.releaseRelays(sess)
		return nil, errors.Wrap(ErrRelaySetup, err, "description generation failed")
	}

	if err := os.MkdirAll(sess.outDir, 0o755); err != nil {
		c.cleanupArtifacts(sess)
		c.releaseRelays(sess)
		return nil, errors.Wrap(ErrRelaySetup, err, "failed to create output directory")
	}

	layout := PlanLayout(len(videoRelays))
	args := ffmpeg.BuildArgs(inputs, layout, sess.outDir)

	sess.proc = ffmpeg.NewProcess(
		roomName,
		args,
		c.forceKillTimeout,
		func() { sess.live.Store(true) },
		func() {
			// encoder died on its own: same teardown path as stop
			c.logger.Warn("Encoder exited, tearing down stream",
				log.String("room", roomName))
			c.opMu.Lock()
			defer c.opMu.Unlock()
			c.teardown(sess)
		},
		c.logger.Module("FFmpeg"),
	)
	if c.spawnCmd != nil {
		sess.proc.SpawnCmd = c.spawnCmd
	}

	return sess, nil
}

// allocateRelays creates one raw transport per producer, consumes the
// producer on it paused, and points the transport at the encoder-side
// companion port pair. Producers are set up concurrently; the first
// failure cancels the rest.
func (c *Coordinator) allocateRelays(
	ctx context.Context,
	room *sessions.Room,
	videos, audios []sessions.ProducerRecord,
) ([]relay, []relay, error) {
	videoRelays := make([]relay, len(videos))
	audioRelays := make([]relay, len(audios))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range videos {
		g.Go(c.allocateOne(gctx, room, rec, &videoRelays[i]))
	}
	for i, rec := range audios {
		g.Go(c.allocateOne(gctx, room, rec, &audioRelays[i]))
	}
	err := g.Wait()

	return videoRelays, audioRelays, err
}

func (c *Coordinator) allocateOne(
	ctx context.Context,
	room *sessions.Room,
	rec sessions.ProducerRecord,
	out *relay,
) func() error {
	return func() error {
		pt, err := c.engine.CreatePlainTransport(ctx, room.RouterID, mediasoup.PlainTransportOptions{
			ListenIP: relayListenIP,
			RtcpMux:  false,
			Comedia:  false,
		})
		if err != nil {
			return err
		}
		out.transportID = pt.ID

		ci, err := c.engine.Consume(ctx, pt.ID, rec.ID, room.RtpCapabilities, true)
		if err != nil {
			return err
		}
		out.consumerID = ci.ID
		out.rtpParams = ci.RtpParameters

		dstRTP, dstRTCP := companionPorts(pt.Port)
		out.dstPort = dstRTP
		if !probeCompanionPorts(pt.Port) {
			c.logger.Warn("Companion port pair is busy",
				log.String("room", room.Name),
				log.Int("port", dstRTP))
		}

		return c.engine.ConnectPlainTransport(ctx, pt.ID, mediasoup.ConnectPlainOptions{
			IP:       relayListenIP,
			Port:     dstRTP,
			RtcpPort: dstRTCP,
		})
	}
}

// writeDescriptions persists one SDP file per video relay, pairing each
// with an audio relay of the same index when one exists.
func (c *Coordinator) writeDescriptions(
	roomName string,
	videoRelays, audioRelays []relay,
) ([]ffmpeg.Input, []string, error) {
	inputs := make([]ffmpeg.Input, 0, len(videoRelays))
	paths := make([]string, 0, len(videoRelays))

	for i, vr := range videoRelays {
		var audio *mediasoup.RtpParameters
		audioPort := 0
		if i < len(audioRelays) {
			audio = &audioRelays[i].rtpParams
			audioPort = audioRelays[i].dstPort
		}

		sdpPath, err := c.sdpGen.Generate(roomName, i, vr.rtpParams, vr.dstPort, audio, audioPort)
		if err != nil {
			return nil, paths, err
		}

		paths = append(paths, sdpPath)
		inputs = append(inputs, ffmpeg.Input{
			SDPPath:  sdpPath,
			HasAudio: audio != nil,
		})
	}

	return inputs, paths, nil
}

// teardown releases everything a session holds. Idempotent; concurrent
// calls collapse onto the first.
func (c *Coordinator) teardown(sess *session) {
	if !sess.stopped.CompareAndSwap(false, true) {
		return
	}

	c.logger.Info("Tearing down stream", log.String("room", sess.roomName))

	// the resume timer must never fire on released handles
	c.sched.Cancel(sess.roomName)

	if sess.proc != nil {
		sess.proc.Stop()
		<-sess.proc.Done()
	}

	c.releaseRelays(sess)
	c.cleanupArtifacts(sess)

	if err := os.RemoveAll(sess.outDir); err != nil {
		c.logger.Error("Failed to remove output directory",
			log.String("room", sess.roomName),
			log.Error(err))
	}

	c.mu.Lock()
	if c.sessions[sess.roomName] == sess {
		delete(c.sessions, sess.roomName)
	}
	c.mu.Unlock()

	// sessions that failed before starting were never counted
	if sess.started.Load() {
		activeSessions.Add(context.Background(), -1)
		streamsStopped.Add(context.Background(), 1)
	}

	if c.onTeardown != nil {
		c.onTeardown(sess.roomName)
	}
}

// releaseRelays closes consumers and transports best effort.
func (c *Coordinator) releaseRelays(sess *session) {
	ctx := context.Background()
	for _, r := range sess.relays {
		if r.consumerID != "" {
			if err := c.engine.CloseConsumer(ctx, r.consumerID); err != nil {
				c.logger.Warn("Failed to close relay consumer",
					log.String("room", sess.roomName),
					log.String("consumerId", r.consumerID),
					log.Error(err))
			}
		}
		if r.transportID != "" {
			if err := c.engine.CloseTransport(ctx, r.transportID); err != nil {
				c.logger.Warn("Failed to close relay transport",
					log.String("room", sess.roomName),
					log.String("transportId", r.transportID),
					log.Error(err))
			}
		}
	}
}

func (c *Coordinator) cleanupArtifacts(sess *session) {
	for _, sdpPath := range sess.sdpPaths {
		if err := c.sdpGen.Delete(sdpPath); err != nil {
			c.logger.Warn("Failed to delete SDP file",
				log.String("room", sess.roomName),
				log.String("path", sdpPath),
				log.Error(err))
		}
	}
}

// resumeLoop services the resume timers. A fired key resumes every
// relay consumer of the room's current session unless teardown already
// claimed it. Holding opMu for the batch makes the stopped check atomic
// with teardown, which always runs under opMu.
func (c *Coordinator) resumeLoop() {
	for roomName := range c.sched.Chan() {
		c.resumeRoom(roomName)
	}
}

func (c *Coordinator) resumeRoom(roomName string) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	sess := c.sessions[roomName]
	c.mu.Unlock()

	if sess == nil || sess.stopped.Load() {
		return
	}

	c.logger.Info("Resuming relay consumers", log.String("room", roomName))
	ctx := context.Background()
	for _, r := range sess.relays {
		if err := c.engine.ResumeConsumer(ctx, r.consumerID); err != nil {
			c.logger.Warn("Failed to resume relay consumer",
				log.String("room", roomName),
				log.String("consumerId", r.consumerID),
				log.Error(err))
		}
	}
	consumersResumed.Add(context.Background(), 1)
}
