package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/lookup/lookuptest"
	"github.com/jask/cnpjlookup/internal/registryid"
	"github.com/jask/cnpjlookup/internal/session"
	"github.com/jask/cnpjlookup/internal/tui/mocks"
)

const acmeID = registryid.ID("11222333000181")

func typeText(a *App, s string) {
	for _, r := range s {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(a *App, t tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: t})
	return cmd
}

// resolved runs cmd and returns the lookup results it produced, ignoring
// spinner ticks and other housekeeping messages.
func resolved(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, resolved(c)...)
		}
	case lookupResolvedMsg:
		out = append(out, msg)
	}
	return out
}

func deliver(a *App, msgs []tea.Msg) {
	for _, m := range msgs {
		a.Update(m)
	}
}

func TestTypingFormatsInput(t *testing.T) {
	a := New(context.Background(), nil)
	typeText(a, "11222333000181999")

	snap := a.Snapshot()
	require.Equal(t, "11.222.333/0001-81", snap.Text)
	require.Equal(t, acmeID, snap.Canonical)
	require.Equal(t, session.Idle, snap.State)
	require.Equal(t, "11.222.333/0001-81", a.input.Value())
}

func TestTypingIgnoresLetters(t *testing.T) {
	a := New(context.Background(), nil)
	typeText(a, "1a2b3")
	require.Equal(t, "12.3", a.Snapshot().Text)

	press(a, tea.KeyBackspace)
	require.Equal(t, "12", a.Snapshot().Text)
}

func TestSubmitSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().
		Lookup(gomock.Any(), acmeID).
		Return(lookup.Record{CNPJ: string(acmeID), LegalName: "ACME LTDA"}, nil).
		Times(1)

	a := New(context.Background(), client)
	typeText(a, "11.222.333/0001-81")
	cmd := press(a, tea.KeyEnter)
	require.Equal(t, session.Loading, a.Snapshot().State)
	require.False(t, a.keys.Submit.Enabled())

	deliver(a, resolved(cmd))
	snap := a.Snapshot()
	require.Equal(t, session.Success, snap.State)
	require.NotNil(t, snap.Record)
	require.Equal(t, "ACME LTDA", snap.Record.LegalName)
	require.Equal(t, "11.222.333/0001-81", snap.Text)
	require.True(t, a.keys.Submit.Enabled())
	require.Contains(t, a.View(), "ACME LTDA")
}

func TestSubmitNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().Lookup(gomock.Any(), acmeID).Return(lookup.Record{}, lookup.ErrNotFound)

	a := New(context.Background(), client)
	typeText(a, string(acmeID))
	deliver(a, resolved(press(a, tea.KeyEnter)))

	snap := a.Snapshot()
	require.Equal(t, session.Error, snap.State)
	require.Equal(t, lookup.KindNotFound, snap.ErrKind)
	require.Nil(t, snap.Record)
	require.Contains(t, a.View(), "CNPJ not found.")
}

func TestSubmitInvalidMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().Lookup(gomock.Any(), gomock.Any()).Times(0)

	a := New(context.Background(), client)
	typeText(a, "123")
	require.Nil(t, press(a, tea.KeyEnter))

	snap := a.Snapshot()
	require.Equal(t, session.Error, snap.State)
	require.Equal(t, lookup.KindInvalidFormat, snap.ErrKind)
	require.Contains(t, a.View(), "Invalid CNPJ")
}

func TestClearDuringLoadDiscardsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().
		Lookup(gomock.Any(), acmeID).
		Return(lookup.Record{LegalName: "ACME LTDA"}, nil)

	a := New(context.Background(), client)
	typeText(a, string(acmeID))
	cmd := press(a, tea.KeyEnter)
	press(a, tea.KeyEsc)

	deliver(a, resolved(cmd))
	snap := a.Snapshot()
	require.Equal(t, session.Idle, snap.State)
	require.Empty(t, snap.Text)
	require.Nil(t, snap.Record)
	require.Empty(t, a.input.Value())
}

func TestClearCancelsLookupContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().
		Lookup(gomock.Any(), acmeID).
		DoAndReturn(func(ctx context.Context, _ registryid.ID) (lookup.Record, error) {
			return lookup.Record{}, ctx.Err()
		})

	a := New(context.Background(), client)
	typeText(a, string(acmeID))
	cmd := press(a, tea.KeyEnter)
	press(a, tea.KeyEsc)

	msgs := resolved(cmd)
	require.Len(t, msgs, 1)
	res := session.Resolution(msgs[0].(lookupResolvedMsg))
	require.ErrorIs(t, res.Err, context.Canceled)

	deliver(a, msgs)
	require.Equal(t, session.Idle, a.Snapshot().State)
}

func TestDoubleSubmitMakesOneCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookuper(ctrl)
	client.EXPECT().
		Lookup(gomock.Any(), acmeID).
		Return(lookup.Record{LegalName: "ACME LTDA"}, nil).
		Times(1)

	a := New(context.Background(), client)
	typeText(a, string(acmeID))
	first := press(a, tea.KeyEnter)
	second := press(a, tea.KeyEnter)
	require.Nil(t, second)

	deliver(a, resolved(first))
	require.Equal(t, session.Success, a.Snapshot().State)
}

func TestTransitionsAreRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockTransitionRecorder(ctrl)
	gomock.InOrder(
		rec.EXPECT().IncrementTransition("validating"),
		rec.EXPECT().IncrementTransition("error"),
	)

	a := New(context.Background(), nil, WithTransitionRecorder(rec))
	typeText(a, "1")
	press(a, tea.KeyEnter)
}

func TestQuit(t *testing.T) {
	a := New(context.Background(), nil)
	cmd := press(a, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
}

func TestEndToEndWithFakeService(t *testing.T) {
	srv := lookuptest.New(t)
	srv.Respond(string(acmeID), http.StatusOK, lookuptest.ACMEJSON)
	client, err := lookup.NewClient(srv.URL)
	require.NoError(t, err)

	a := New(context.Background(), client, WithStyles(PlainStyles()))
	typeText(a, "11.222.333/0001-81")
	deliver(a, resolved(press(a, tea.KeyEnter)))

	require.Equal(t, session.Success, a.Snapshot().State)
	view := a.View()
	require.Contains(t, view, "ACME LTDA")
	require.Contains(t, view, "JOAO DA SILVA")
	require.True(t, strings.Contains(view, "01001-000"), view)
	require.Equal(t, 1, srv.Calls(string(acmeID)))

	// same id again is a fresh request
	deliver(a, resolved(press(a, tea.KeyEnter)))
	require.Equal(t, 2, srv.Calls(string(acmeID)))
}
