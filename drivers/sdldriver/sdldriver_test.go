package sdldriver

import (
	"context"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/anaseto/nvim-gruid/app"
	"github.com/anaseto/nvim-gruid/input"
)

func drainMsg(t *testing.T, msgs chan app.Msg) app.Msg {
	t.Helper()
	select {
	case m := <-msgs:
		return m
	default:
		t.Fatal("expected a message, got none")
		return nil
	}
}

func TestPollKeyboardTranslatesNamedKeyAndModifiers(t *testing.T) {
	dr := &Driver{}
	msgs := make(chan app.Msg, 1)
	ev := &sdl.KeyboardEvent{
		Type:   sdl.KEYDOWN,
		Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE, Mod: sdl.KMOD_LSHIFT},
	}
	dr.pollKeyboard(context.Background(), msgs, ev)
	m := drainMsg(t, msgs).(app.MsgKey)
	if m.Event.Key != "Escape" {
		t.Errorf("Key = %q, want Escape", m.Event.Key)
	}
	if m.Event.Mod != input.ModShift {
		t.Errorf("Mod = %v, want ModShift", m.Event.Mod)
	}
}

func TestPollKeyboardIgnoresKeyUp(t *testing.T) {
	dr := &Driver{}
	msgs := make(chan app.Msg, 1)
	ev := &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}
	dr.pollKeyboard(context.Background(), msgs, ev)
	select {
	case m := <-msgs:
		t.Fatalf("expected no message for a key-up event, got %+v", m)
	default:
	}
}

func TestPollMouseButtonTracksDragState(t *testing.T) {
	dr := &Driver{}
	msgs := make(chan app.Msg, 1)
	down := &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 10, Y: 20}
	dr.pollMouseButton(context.Background(), msgs, down)
	if !dr.mousedrag {
		t.Fatal("expected mousedrag=true after a button-down event")
	}
	<-msgs

	up := &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT, X: 10, Y: 20}
	dr.pollMouseButton(context.Background(), msgs, up)
	if dr.mousedrag {
		t.Error("expected mousedrag=false after a button-up event")
	}
}

func TestPollMouseMotionIgnoredWithoutDrag(t *testing.T) {
	dr := &Driver{}
	msgs := make(chan app.Msg, 1)
	dr.pollMouseMotion(context.Background(), msgs, &sdl.MouseMotionEvent{X: 5, Y: 5})
	select {
	case m := <-msgs:
		t.Fatalf("expected no hover-move message, got %+v", m)
	default:
	}
}

func TestPollMouseMotionForwardedDuringDrag(t *testing.T) {
	dr := &Driver{mousedrag: true}
	msgs := make(chan app.Msg, 1)
	dr.pollMouseMotion(context.Background(), msgs, &sdl.MouseMotionEvent{X: 5, Y: 5})
	m := drainMsg(t, msgs).(app.MsgPointer)
	if m.X != 5 || m.Y != 5 {
		t.Errorf("got %+v, want X=5 Y=5", m)
	}
}
