package shell

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func last(m Model) entry {
	return m.transcript[len(m.transcript)-1]
}

func TestNewModel_Banner(t *testing.T) {
	d, _ := newTestDispatcher(t)

	m := NewModel(context.Background(), d, "> ", "Commands:")
	if len(m.transcript) != 1 || m.transcript[0].kind != entryBanner {
		t.Fatalf("transcript = %+v, want banner only", m.transcript)
	}

	m = NewModel(context.Background(), d, "> ", "")
	if len(m.transcript) != 0 {
		t.Errorf("transcript = %+v, want empty", m.transcript)
	}
}

func TestModel_Init_ReturnsBlinkCmd(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if NewModel(context.Background(), d, "> ", "").Init() == nil {
		t.Fatal("Init() should return a non-nil Cmd for the cursor")
	}
}

func TestModel_Update_Submit(t *testing.T) {
	d, _ := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "")

	m, cmd := submit(t, m, "hello")

	if cmd != nil {
		t.Error("non-exit verb should not produce a Cmd")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}
	if got := m.transcript[0]; got.kind != entryEcho || got.text != "> hello" {
		t.Errorf("echo = %+v", got)
	}
	if got := last(m); got.kind != entryOutput || got.text != "How can I help you" {
		t.Errorf("output = %+v", got)
	}
}

func TestModel_Update_ErrorLine(t *testing.T) {
	d, _ := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "")

	m, _ = submit(t, m, "phones nobody")

	if got := last(m); got.kind != entryError || got.text != "Error: Contact not found" {
		t.Errorf("last entry = %+v", got)
	}
	if m.Done() {
		t.Error("handled error should not end the session")
	}
}

func TestModel_Update_ExitVerb(t *testing.T) {
	d, gw := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "")

	m, cmd := submit(t, m, "good bye")

	if !m.Done() {
		t.Error("exit verb should set done")
	}
	if cmd == nil {
		t.Error("exit verb should produce a quit Cmd")
	}
	if gw.Saves != 1 {
		t.Errorf("Saves = %d, want 1", gw.Saves)
	}
	if view := m.View(); !strings.Contains(view, "Good bye!") {
		t.Errorf("View() = %q, want farewell", view)
	}
}

func TestModel_Update_QuitKeySaves(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		t.Run(msg.String(), func(t *testing.T) {
			d, gw := newTestDispatcher(t)
			m := NewModel(context.Background(), d, "> ", "")

			next, cmd := m.Update(msg)

			if !next.(Model).Done() || cmd == nil {
				t.Error("quit key should end the session")
			}
			if gw.Saves != 1 {
				t.Errorf("Saves = %d, want 1", gw.Saves)
			}
		})
	}
}

func TestModel_Update_SaveFailure(t *testing.T) {
	d, gw := newTestDispatcher(t)
	gw.SaveErr = errors.New("disk full")
	m := NewModel(context.Background(), d, "> ", "")

	m, cmd := submit(t, m, "exit")

	if cmd == nil || !m.Done() {
		t.Fatal("save failure should end the session")
	}
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "disk full") {
		t.Errorf("Err() = %v, want save failure", m.Err())
	}
	if got := last(m); got.kind != entryError {
		t.Errorf("last entry = %+v, want error", got)
	}
}

func TestModel_Update_KeysIgnoredAfterDone(t *testing.T) {
	d, gw := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "")
	m, _ = submit(t, m, "exit")

	m, _ = submit(t, m, "exit")

	if gw.Saves != 1 {
		t.Errorf("Saves = %d, want 1", gw.Saves)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	d, _ := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	if m.viewport.Width != 80 || m.viewport.Height != 24-chromeHeight {
		t.Errorf("viewport = %dx%d, want 80x%d", m.viewport.Width, m.viewport.Height, 24-chromeHeight)
	}
	if m.help.Width != 80 {
		t.Errorf("help width = %d, want 80", m.help.Width)
	}
}

func TestModel_Teatest_Session(t *testing.T) {
	d, gw := newTestDispatcher(t)
	m := NewModel(context.Background(), d, "> ", "Commands:")

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	for _, line := range []string{"add contact mark 1990-05-21", "add mark 1234567890", "exit"} {
		tm.Type(line)
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	}

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if !final.Done() || final.Err() != nil {
		t.Fatalf("final done=%v err=%v", final.Done(), final.Err())
	}
	var outputs []string
	for _, e := range final.transcript {
		if e.kind == entryOutput {
			outputs = append(outputs, e.text)
		}
	}
	want := []string{
		"Contact mark with birthday 1990-05-21 added successfully",
		"Contact mark add phone 1234567890",
		"Good bye!",
	}
	if strings.Join(outputs, "|") != strings.Join(want, "|") {
		t.Errorf("outputs = %q, want %q", outputs, want)
	}
	if gw.Saves != 1 {
		t.Errorf("Saves = %d, want 1", gw.Saves)
	}
}
