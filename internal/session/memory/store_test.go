package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventide-gm/internal/dependencies/mocks"
	"github.com/mcoot/eventide-gm/internal/session"
)

type StoreSuite struct {
	suite.Suite
	clock *mocks.MockClock
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.store = New(s.clock, 300*time.Second)
	s.ctx = context.Background()
}

func (s *StoreSuite) TestSaveAndGetReturnsCopy() {
	sess := session.New(1, session.FlowDirectMessage, session.StateTypeSender)
	sess.DirectMessage.PlayerID = 5
	s.Require().NoError(s.store.Save(s.ctx, sess))

	sess.DirectMessage.Sender = "mutated after save"

	got, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(session.FlowDirectMessage, got.Flow)
	s.Equal("", got.DirectMessage.Sender)
	s.EqualValues(5, got.DirectMessage.PlayerID)
}

func (s *StoreSuite) TestExpiresAfterIdleTTL() {
	s.Require().NoError(s.store.Save(s.ctx, session.New(1, session.FlowRelay, session.StateChooseRecipient)))

	s.clock.Advance(299 * time.Second)
	_, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.store.Get(s.ctx, 1)
	s.ErrorIs(err, session.ErrNotFound)
	s.Equal(0, s.store.Len())
}

func (s *StoreSuite) TestSaveRestartsIdleTimer() {
	sess := session.New(1, session.FlowRelay, session.StateChooseRecipient)
	s.Require().NoError(s.store.Save(s.ctx, sess))

	s.clock.Advance(250 * time.Second)
	sess.State = session.StateTypeMessage
	s.Require().NoError(s.store.Save(s.ctx, sess))

	s.clock.Advance(250 * time.Second)
	got, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(session.StateTypeMessage, got.State)
}

func (s *StoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, session.New(1, session.FlowStatus, session.StateSelectPlayer)))
	s.Require().NoError(s.store.Delete(s.ctx, 1))
	_, err := s.store.Get(s.ctx, 1)
	s.ErrorIs(err, session.ErrNotFound)
}

func (s *StoreSuite) TestZeroTTLFallsBackToDefault() {
	st := New(s.clock, 0)
	s.Require().NoError(st.Save(s.ctx, session.New(1, session.FlowStatus, session.StateSelectPlayer)))
	s.clock.Advance(session.DefaultTTL - time.Second)
	_, err := st.Get(s.ctx, 1)
	s.NoError(err)
}
