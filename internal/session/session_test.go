package session

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/registryid"
)

type ControllerSuite struct {
	suite.Suite
	ctrl        *Controller
	tokens      int
	transitions []string
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.tokens = 0
	s.transitions = nil
	s.ctrl = New(
		WithTokenSource(func() string {
			s.tokens++
			return "tok-" + strconv.Itoa(s.tokens)
		}),
		WithObserver(func(from, to State) {
			s.transitions = append(s.transitions, fmt.Sprintf("%s>%s", from, to))
		}),
	)
}

func (s *ControllerSuite) acme() lookup.Record {
	return lookup.Record{CNPJ: "11222333000181", LegalName: "ACME LTDA"}.WithPartners("JOAO")
}

func (s *ControllerSuite) TestInitialState() {
	s.Equal(Idle, s.ctrl.State())
	snap := s.ctrl.Snapshot()
	s.Empty(snap.Text)
	s.Nil(snap.Record)
	s.True(s.ctrl.CanSubmit())
}

func (s *ControllerSuite) TestKeystrokeKeepsState() {
	s.Equal("11.222.333/0001-81", s.ctrl.Keystroke("11222333000181"))
	s.Equal(Idle, s.ctrl.State())
	s.Empty(s.transitions)

	s.Equal("11.222.333/0001-81", s.ctrl.Keystroke("11.222.333/0001-8199"))
}

func (s *ControllerSuite) TestSubmitSuccess() {
	s.ctrl.Keystroke("11.222.333/0001-81")
	req, ok := s.ctrl.Submit()
	s.Require().True(ok)
	s.Equal(registryid.ID("11222333000181"), req.ID)
	s.Equal(Loading, s.ctrl.State())
	s.False(s.ctrl.CanSubmit())

	s.True(s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()}))
	snap := s.ctrl.Snapshot()
	s.Equal(Success, snap.State)
	s.Require().NotNil(snap.Record)
	s.Equal("ACME LTDA", snap.Record.LegalName)
	s.Equal("11.222.333/0001-81", snap.Text)
	s.Equal([]string{"idle>validating", "validating>loading", "loading>success"}, s.transitions)
}

func (s *ControllerSuite) TestSubmitNotFound() {
	s.ctrl.Keystroke("11222333000181")
	req, ok := s.ctrl.Submit()
	s.Require().True(ok)

	s.True(s.ctrl.Resolve(Resolution{Request: req, Err: fmt.Errorf("x: %w", lookup.ErrNotFound)}))
	snap := s.ctrl.Snapshot()
	s.Equal(Error, snap.State)
	s.Equal(lookup.KindNotFound, snap.ErrKind)
	s.Nil(snap.Record)
}

func (s *ControllerSuite) TestUnclassifiedErrorIsTransient() {
	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()
	s.True(s.ctrl.Resolve(Resolution{Request: req, Err: errors.New("socket closed")}))
	s.Equal(lookup.KindTransient, s.ctrl.Snapshot().ErrKind)
}

func (s *ControllerSuite) TestSubmitInvalidLength() {
	s.ctrl.Keystroke("123")
	_, ok := s.ctrl.Submit()
	s.False(ok)
	snap := s.ctrl.Snapshot()
	s.Equal(Error, snap.State)
	s.Equal(lookup.KindInvalidFormat, snap.ErrKind)
	s.Equal(0, s.tokens, "no request may be created")
	s.Equal([]string{"idle>validating", "validating>error"}, s.transitions)
}

func (s *ControllerSuite) TestErrorClearsPreviousRecord() {
	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()
	s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()})
	s.Require().NotNil(s.ctrl.Snapshot().Record)

	s.ctrl.Keystroke("123")
	s.ctrl.Submit()
	s.Nil(s.ctrl.Snapshot().Record)
	s.Equal(lookup.KindInvalidFormat, s.ctrl.Snapshot().ErrKind)
}

func (s *ControllerSuite) TestResubmitDropsRecordWhileLoading() {
	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()
	s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()})

	_, ok := s.ctrl.Submit()
	s.True(ok)
	s.Nil(s.ctrl.Snapshot().Record)
	s.Equal(Loading, s.ctrl.State())
}

func (s *ControllerSuite) TestNoOverlappingSubmits() {
	s.ctrl.Keystroke("11222333000181")
	first, ok := s.ctrl.Submit()
	s.Require().True(ok)

	_, again := s.ctrl.Submit()
	s.False(again)
	s.Equal(1, s.tokens)

	pending, ok := s.ctrl.InFlight()
	s.True(ok)
	s.Equal(first, pending)
}

func (s *ControllerSuite) TestClearDuringLoadDiscardsResponse() {
	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()

	s.ctrl.Clear()
	s.False(s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()}))
	s.False(s.ctrl.Resolve(Resolution{Request: req, Err: lookup.ErrTransient}))

	snap := s.ctrl.Snapshot()
	s.Equal(Idle, snap.State)
	s.Empty(snap.Text)
	s.Nil(snap.Record)
}

func (s *ControllerSuite) TestStaleResponseAfterClearAndResubmit() {
	s.ctrl.Keystroke("11222333000181")
	old, _ := s.ctrl.Submit()
	s.ctrl.Clear()

	s.ctrl.Keystroke("11222333000181")
	current, ok := s.ctrl.Submit()
	s.Require().True(ok)
	s.NotEqual(old.Token, current.Token)

	s.False(s.ctrl.Resolve(Resolution{Request: old, Err: lookup.ErrNotFound}))
	s.Equal(Loading, s.ctrl.State())

	s.True(s.ctrl.Resolve(Resolution{Request: current, Record: s.acme()}))
	s.Equal(Success, s.ctrl.State())
}

func (s *ControllerSuite) TestResolveWithoutRequestIgnored() {
	s.False(s.ctrl.Resolve(Resolution{Request: Request{Token: "x", ID: "11222333000181"}}))
	s.Equal(Idle, s.ctrl.State())
}

func (s *ControllerSuite) TestClearFromAnyState() {
	s.ctrl.Keystroke("123")
	s.ctrl.Submit()
	s.ctrl.Clear()
	s.Equal(Idle, s.ctrl.State())
	s.Equal(lookup.KindNone, s.ctrl.Snapshot().ErrKind)

	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()
	s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()})
	s.ctrl.Clear()
	s.Equal(Idle, s.ctrl.State())
	s.Nil(s.ctrl.Snapshot().Record)
}

func (s *ControllerSuite) TestSnapshotRecordIsCopy() {
	s.ctrl.Keystroke("11222333000181")
	req, _ := s.ctrl.Submit()
	s.ctrl.Resolve(Resolution{Request: req, Record: s.acme()})

	snap := s.ctrl.Snapshot()
	snap.Record.LegalName = "MUTATED"
	s.Equal("ACME LTDA", s.ctrl.Snapshot().Record.LegalName)
}
