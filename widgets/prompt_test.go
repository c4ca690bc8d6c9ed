package widgets_test

import (
	"testing"

	"git.sr.ht/~rockorager/vaxis"
	"github.com/deevus/gtnh-translator-tui/widgets"
)

func typeText(p *widgets.Prompt, s string) {
	for _, r := range s {
		p.HandleEvent(vaxis.Key{Keycode: r, Text: string(r)}, 0)
	}
}

func TestPrompt_Typing(t *testing.T) {
	p := &widgets.Prompt{}
	typeText(p, "Iron Ingot")
	if p.Value() != "Iron Ingot" {
		t.Errorf("expected typed text, got %q", p.Value())
	}

	cmd, err := p.HandleEvent(vaxis.Key{Keycode: vaxis.KeyBackspace}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd == nil {
		t.Error("expected backspace to be consumed")
	}
	if p.Value() != "Iron Ingo" {
		t.Errorf("expected last char removed, got %q", p.Value())
	}
}

func TestPrompt_BackspaceMultibyte(t *testing.T) {
	p := &widgets.Prompt{}
	p.SetValue("слиток")
	p.Backspace()
	if p.Value() != "слито" {
		t.Errorf("expected one rune removed, got %q", p.Value())
	}

	empty := &widgets.Prompt{}
	empty.Backspace()
	if empty.Value() != "" {
		t.Errorf("expected empty, got %q", empty.Value())
	}
}

func TestPrompt_CtrlU(t *testing.T) {
	p := &widgets.Prompt{}
	p.SetValue("hello")
	p.HandleEvent(vaxis.Key{Keycode: 'u', Modifiers: vaxis.ModCtrl}, 0)
	if p.Value() != "" {
		t.Errorf("expected cleared, got %q", p.Value())
	}
}

func TestPrompt_IgnoresOtherKeys(t *testing.T) {
	p := &widgets.Prompt{}
	cmd, _ := p.HandleEvent(vaxis.Key{Keycode: vaxis.KeyEnter}, 0)
	if cmd != nil {
		t.Error("expected Enter to be left to the owner")
	}
	cmd, _ = p.HandleEvent(vaxis.Key{Keycode: 'c', Modifiers: vaxis.ModCtrl, Text: "c"}, 0)
	if cmd != nil || p.Value() != "" {
		t.Error("expected Ctrl+C to be ignored")
	}
}

func TestPrompt_Draw(t *testing.T) {
	p := &widgets.Prompt{Label: "> ", Focused: true}
	p.SetValue("abc")

	s, err := p.Draw(testDrawContext(20, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowText(s, 0); got != "> abc" {
		t.Errorf("unexpected row %q", got)
	}
	if s.Buffer[5].Style.Attribute&vaxis.AttrReverse == 0 {
		t.Error("expected cursor after text")
	}
}

func TestPrompt_Draw_Placeholder(t *testing.T) {
	p := &widgets.Prompt{Label: "> ", Placeholder: "type to translate"}

	s, err := p.Draw(testDrawContext(30, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowText(s, 0); got != "> type to translate" {
		t.Errorf("unexpected row %q", got)
	}
}

func TestPrompt_Draw_PlaceholderWhileFocused(t *testing.T) {
	p := &widgets.Prompt{Label: "> ", Placeholder: "type to translate", Focused: true}

	s, err := p.Draw(testDrawContext(30, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowText(s, 0); got != "> type to translate" {
		t.Errorf("unexpected row %q", got)
	}
	if s.Buffer[2].Style.Attribute&vaxis.AttrReverse == 0 {
		t.Error("expected cursor on the first placeholder cell")
	}
	if s.Buffer[3].Style.Attribute&vaxis.AttrReverse != 0 {
		t.Error("only the cursor cell should be reversed")
	}

	p.SetValue("a")
	s, err = p.Draw(testDrawContext(30, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowText(s, 0); got != "> a" {
		t.Errorf("expected placeholder hidden once text is typed, got %q", got)
	}
}

func TestPrompt_Draw_ScrollsToTail(t *testing.T) {
	p := &widgets.Prompt{Label: "> ", Focused: true}
	p.SetValue("0123456789")

	s, err := p.Draw(testDrawContext(8, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 8 cells: 2 label, 5 text, 1 cursor
	if got := rowText(s, 0); got != "> 56789" {
		t.Errorf("unexpected row %q", got)
	}
}
