package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/testutil"
)

type BroadcastSuite struct {
	suite.Suite
	fake    *testutil.FakeMessenger
	service *Service
	players []*model.Player
	ctx     context.Context
}

func TestBroadcastSuite(t *testing.T) {
	suite.Run(t, new(BroadcastSuite))
}

func (s *BroadcastSuite) SetupTest() {
	s.fake = testutil.NewFakeMessenger()
	s.service = New(s.fake, 0, testutil.NopLogger())
	s.players = []*model.Player{
		{ID: 1, CharacterName: "P1", IsActive: true},
		{ID: 2, CharacterName: "P2", IsActive: false},
		{ID: 3, CharacterName: "P3", IsActive: true},
	}
	s.ctx = context.Background()
}

func (s *BroadcastSuite) TestSelectSegments() {
	s.Equal([]model.PlayerID{1, 2, 3}, Select(s.players, TargetAll))
	s.Equal([]model.PlayerID{1, 3}, Select(s.players, TargetActive))
	s.Equal([]model.PlayerID{2}, Select(s.players, TargetInactive))
}

func (s *BroadcastSuite) TestSendCountsOnlySuccesses() {
	s.fake.FailChat(3)

	sent := s.service.Send(s.ctx, Select(s.players, TargetActive), Format("Game Master", "Hi"))

	s.Equal(1, sent)
	s.Require().Len(s.fake.Messages, 1)
	s.Equal(int64(1), s.fake.Messages[0].ChatID)
	s.Equal("📢 **Game Master:**\n\nHi", s.fake.Messages[0].Text)
	s.Equal(messenger.ParseMarkdown, s.fake.Messages[0].ParseMode)
}

func (s *BroadcastSuite) TestCancelledContextStopsFanOut() {
	svc := New(s.fake, 1, testutil.NopLogger())
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.Equal(0, svc.Send(ctx, []model.PlayerID{1, 2}, "x"))
	s.Empty(s.fake.Messages)
}

func (s *BroadcastSuite) TestSenderAlias() {
	s.Equal(DefaultSender, SenderAlias("default"))
	s.Equal(DefaultSender, SenderAlias("DEFAULT"))
	s.Equal("Oracle", SenderAlias("Oracle"))
}

func (s *BroadcastSuite) TestTargets() {
	t, ok := ParseTarget("inactive")
	s.True(ok)
	s.Equal("Inactive", t.Label())
	_, ok = ParseTarget("cancel")
	s.False(ok)
}
