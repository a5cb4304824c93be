package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/prik73/mediasoup-concept-2/internal/errors"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup/mocks"
	"github.com/prik73/mediasoup-concept-2/sessions"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (f *fakeNotifier) NotifyProducerClosed(peerID, producerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notification{peerID: peerID, producerID: producerID})
}

func (f *fakeNotifier) all() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification{}, f.calls...)
}

type RegistryTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	engine   *mocks.MockClient
	notifier *fakeNotifier
	registry sessions.Registry
	ctx      context.Context
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.engine = mocks.NewMockClient(s.ctrl)
	s.notifier = &fakeNotifier{}
	s.registry = New(s.engine, log.NewTest(s.T()))
	s.registry.SetNotifier(s.notifier)
	s.ctx = context.Background()
}

func (s *RegistryTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RegistryTestSuite) expectRouter(routerID string) {
	s.engine.EXPECT().
		CreateRouter(gomock.Any()).
		Return(&mediasoup.RouterInfo{
			ID:              routerID,
			RtpCapabilities: mediasoup.RtpCapabilities(`{"codecs":[]}`),
		}, nil)
}

func (s *RegistryTestSuite) TestJoinRoomCreatesRoom() {
	s.expectRouter("router-1")

	room, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	s.Equal("r1", room.Name)
	s.Equal("router-1", room.RouterID)
	s.NotEmpty(room.RtpCapabilities)
	s.Equal([]string{"peer-a"}, s.registry.RoomMembers("r1"))
}

func (s *RegistryTestSuite) TestJoinRoomEmptyNameFails() {
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "")
	s.Require().Error(err)
	s.True(errors.Is(err, sessions.ErrValidation))
}

func (s *RegistryTestSuite) TestSecondJoinerReusesRouter() {
	s.expectRouter("router-1")

	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	room, err := s.registry.JoinRoom(s.ctx, "peer-b", "r1")
	s.Require().NoError(err)
	s.Equal("router-1", room.RouterID)
	s.Equal([]string{"peer-a", "peer-b"}, s.registry.RoomMembers("r1"))
}

func (s *RegistryTestSuite) TestDoubleJoinIsNoOp() {
	s.expectRouter("router-1")

	room1, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	room2, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	s.Equal(room1.RouterID, room2.RouterID)
	s.Equal([]string{"peer-a"}, s.registry.RoomMembers("r1"))
}

func (s *RegistryTestSuite) TestJoinDifferentRoomKeepsOriginal() {
	s.expectRouter("router-1")

	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)

	// no router allocation for r2: the peer stays where it is
	room, err := s.registry.JoinRoom(s.ctx, "peer-a", "r2")
	s.Require().NoError(err)
	s.Equal("r1", room.Name)

	s.Equal([]string{"peer-a"}, s.registry.RoomMembers("r1"))
	_, ok := s.registry.Room("r2")
	s.False(ok)

	got, ok := s.registry.PeerRoom("peer-a")
	s.True(ok)
	s.Equal("r1", got)
}

func (s *RegistryTestSuite) TestJoinRoomEngineFailure() {
	s.engine.EXPECT().
		CreateRouter(gomock.Any()).
		Return(nil, errors.PureNew("worker exploded"))

	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().Error(err)
	s.True(errors.Is(err, sessions.ErrRoomNotFound))
}

func (s *RegistryTestSuite) TestGetTransportByRole() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-send", OwnerPeerID: "peer-a", Role: sessions.RoleProducing,
	}))
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-recv", OwnerPeerID: "peer-a", Role: sessions.RoleConsuming,
	}))

	rec, ok := s.registry.GetTransport("peer-a", sessions.RoleProducing)
	s.Require().True(ok)
	s.Equal("t-send", rec.ID)
	s.Equal("r1", rec.RoomName)
	s.Equal(sessions.StateNew, rec.State)

	rec, ok = s.registry.GetTransport("peer-a", sessions.RoleConsuming)
	s.Require().True(ok)
	s.Equal("t-recv", rec.ID)
}

func (s *RegistryTestSuite) TestConnectTransportIdempotent() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-1", OwnerPeerID: "peer-a", Role: sessions.RoleProducing,
	}))

	dtls := []byte(`{"role":"client"}`)
	s.engine.EXPECT().
		ConnectWebRtcTransport(gomock.Any(), "t-1", dtls).
		Return(nil).
		Times(1)

	s.Require().NoError(s.registry.ConnectTransport(s.ctx, "t-1", dtls))
	// duplicate connect must succeed without another worker call
	s.Require().NoError(s.registry.ConnectTransport(s.ctx, "t-1", dtls))

	rec, ok := s.registry.GetTransportByID("t-1")
	s.Require().True(ok)
	s.Equal(sessions.StateConnected, rec.State)
}

func (s *RegistryTestSuite) TestConnectTransportNotFound() {
	err := s.registry.ConnectTransport(s.ctx, "nope", nil)
	s.Require().Error(err)
	s.True(errors.Is(err, sessions.ErrNotFound))
}

func (s *RegistryTestSuite) TestProducersInRoomExcludesOwner() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	_, err = s.registry.JoinRoom(s.ctx, "peer-b", "r1")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.AddProducer(sessions.ProducerRecord{
		ID: "pv1", OwnerPeerID: "peer-a", Kind: mediasoup.KindVideo,
	}))

	s.ElementsMatch([]string{"pv1"}, s.registry.ProducersInRoom("r1", "peer-b"))
	s.Empty(s.registry.ProducersInRoom("r1", "peer-a"))
	s.Equal(1, s.registry.ProducerCount("r1"))
}

func (s *RegistryTestSuite) TestRemovePeerCascade() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	_, err = s.registry.JoinRoom(s.ctx, "peer-b", "r1")
	s.Require().NoError(err)

	// A produces, B consumes A's producer
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-a-send", OwnerPeerID: "peer-a", Role: sessions.RoleProducing,
	}))
	s.Require().NoError(s.registry.AddProducer(sessions.ProducerRecord{
		ID: "pv1", OwnerPeerID: "peer-a", Kind: mediasoup.KindVideo,
	}))
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-b-recv", OwnerPeerID: "peer-b", Role: sessions.RoleConsuming,
	}))
	s.Require().NoError(s.registry.AddConsumer(sessions.ConsumerRecord{
		ID: "c1", OwnerPeerID: "peer-b", ProducerID: "pv1", TransportID: "t-b-recv", Paused: true,
	}))

	s.engine.EXPECT().CloseProducer(gomock.Any(), "pv1").Return(nil)
	s.engine.EXPECT().CloseConsumer(gomock.Any(), "c1").Return(nil)
	s.engine.EXPECT().CloseTransport(gomock.Any(), "t-b-recv").Return(nil)
	s.engine.EXPECT().CloseTransport(gomock.Any(), "t-a-send").Return(nil)

	s.registry.RemovePeer(s.ctx, "peer-a")

	s.Equal([]string{"peer-b"}, s.registry.RoomMembers("r1"))
	s.Empty(s.registry.ProducersInRoom("r1", ""))
	_, ok := s.registry.GetConsumer("c1")
	s.False(ok)
	_, ok = s.registry.GetTransportByID("t-a-send")
	s.False(ok)

	// B was consuming pv1 and must be told it closed
	s.Equal([]notification{{peerID: "peer-b", producerID: "pv1"}}, s.notifier.all())

	// second call is a no-op
	s.registry.RemovePeer(s.ctx, "peer-a")
}

func (s *RegistryTestSuite) TestConsumerPeerDisconnectKeepsProducer() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	_, err = s.registry.JoinRoom(s.ctx, "peer-b", "r1")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.AddProducer(sessions.ProducerRecord{
		ID: "pv1", OwnerPeerID: "peer-a", Kind: mediasoup.KindVideo,
	}))
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-b-recv", OwnerPeerID: "peer-b", Role: sessions.RoleConsuming,
	}))
	s.Require().NoError(s.registry.AddConsumer(sessions.ConsumerRecord{
		ID: "c1", OwnerPeerID: "peer-b", ProducerID: "pv1", TransportID: "t-b-recv",
	}))

	s.engine.EXPECT().CloseConsumer(gomock.Any(), "c1").Return(nil)
	s.engine.EXPECT().CloseTransport(gomock.Any(), "t-b-recv").Return(nil)

	s.registry.RemovePeer(s.ctx, "peer-b")

	s.Equal([]string{"peer-a"}, s.registry.RoomMembers("r1"))
	s.ElementsMatch([]string{"pv1"}, s.registry.ProducersInRoom("r1", ""))
	s.Empty(s.notifier.all())
}

func (s *RegistryTestSuite) TestCloseProducerNotifiesConsumers() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	_, err = s.registry.JoinRoom(s.ctx, "peer-b", "r1")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.AddProducer(sessions.ProducerRecord{
		ID: "pv1", OwnerPeerID: "peer-a", Kind: mediasoup.KindVideo,
	}))
	s.Require().NoError(s.registry.AddTransport(sessions.TransportRecord{
		ID: "t-b-recv", OwnerPeerID: "peer-b", Role: sessions.RoleConsuming,
	}))
	s.Require().NoError(s.registry.AddConsumer(sessions.ConsumerRecord{
		ID: "c1", OwnerPeerID: "peer-b", ProducerID: "pv1", TransportID: "t-b-recv",
	}))

	s.engine.EXPECT().CloseProducer(gomock.Any(), "pv1").Return(nil)
	s.engine.EXPECT().CloseConsumer(gomock.Any(), "c1").Return(nil)
	s.engine.EXPECT().CloseTransport(gomock.Any(), "t-b-recv").Return(nil)

	s.registry.CloseProducer(s.ctx, "pv1")

	s.Equal([]notification{{peerID: "peer-b", producerID: "pv1"}}, s.notifier.all())
	s.Empty(s.registry.ProducersInRoom("r1", ""))
}

func (s *RegistryTestSuite) TestResumeConsumer() {
	s.expectRouter("router-1")
	_, err := s.registry.JoinRoom(s.ctx, "peer-a", "r1")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AddConsumer(sessions.ConsumerRecord{
		ID: "c1", OwnerPeerID: "peer-a", ProducerID: "pv1", TransportID: "t-1", Paused: true,
	}))

	s.engine.EXPECT().ResumeConsumer(gomock.Any(), "c1").Return(nil)

	s.Require().NoError(s.registry.ResumeConsumer(s.ctx, "c1"))
	rec, ok := s.registry.GetConsumer("c1")
	s.Require().True(ok)
	s.False(rec.Paused)
}

func (s *RegistryTestSuite) TestConcurrentJoinsSameRoom() {
	s.expectRouter("router-1")

	var wg sync.WaitGroup
	peerIDs := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, id := range peerIDs {
		wg.Add(1)
		go func(peerID string) {
			defer wg.Done()
			_, err := s.registry.JoinRoom(s.ctx, peerID, "r1")
			s.NoError(err)
		}(id)
	}
	wg.Wait()

	s.ElementsMatch(peerIDs, s.registry.RoomMembers("r1"))
}
