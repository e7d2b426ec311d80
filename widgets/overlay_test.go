package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderModalOverlaysWithoutDroppingBase(t *testing.T) {
	base := strings.Join([]string{
		"row-0................",
		"row-1................",
		"row-2................",
		"row-3................",
		"row-4................",
		"row-5................",
		"row-6................",
		"row-7................",
		"row-8................",
	}, "\n")
	out := RenderModal(base, "+-----+\n|Alert|\n+-----+", 20, 9)
	lines := strings.Split(out, "\n")
	if len(lines) != 9 {
		t.Fatalf("line count = %d, want 9", len(lines))
	}
	if !strings.Contains(out, "Alert") {
		t.Fatalf("expected card content in output")
	}
	if !strings.Contains(lines[0], "row-0") {
		t.Fatalf("expected top base row preserved, got %q", lines[0])
	}
	if !strings.Contains(lines[8], "row-8") {
		t.Fatalf("expected bottom base row preserved, got %q", lines[8])
	}
	if !strings.HasPrefix(lines[4], "row-") {
		t.Fatalf("expected base visible left of the card, got %q", lines[4])
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != 20 {
			t.Fatalf("line %d width = %d, want 20", i, w)
		}
	}
}

func TestRenderModalEmptyCardKeepsBase(t *testing.T) {
	out := RenderModal("abc", "", 5, 2)
	if out != "abc  \n     " {
		t.Fatalf("got %q", out)
	}
	if RenderModal("abc", "x", 0, 3) != "" {
		t.Fatalf("zero width should render nothing")
	}
}

func TestRenderModalClipsWideCard(t *testing.T) {
	card := strings.Repeat("W", 40)
	out := RenderModal("base", card, 10, 3)
	for i, line := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(line); w != 10 {
			t.Fatalf("line %d width = %d, want 10", i, w)
		}
	}
}

func TestDialogViewRendersButtons(t *testing.T) {
	view := DialogView{
		Title:   "Payment failed",
		Message: "Your card was declined.",
		Buttons: []ButtonView{
			{Text: "Cancel", Kind: ButtonCancel},
			{Text: "Retry"},
		},
		Selected: 1,
		Footer:   "2 alert(s) waiting",
	}
	plain := ansi.Strip(view.Render(NewTheme("")))
	for _, want := range []string{"Payment failed", "Your card was declined.", "[ Cancel ]", "[ Retry ]", "2 alert(s) waiting"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected %q in\n%s", want, plain)
		}
	}
	if strings.Index(plain, "Cancel") > strings.Index(plain, "Retry") {
		t.Fatalf("buttons out of order:\n%s", plain)
	}
}

func TestDialogViewWithoutMessage(t *testing.T) {
	plain := ansi.Strip(DialogView{Title: "Done", Buttons: []ButtonView{{Text: "OK"}}}.Render(NewTheme("212")))
	if !strings.Contains(plain, "Done") || !strings.Contains(plain, "[ OK ]") {
		t.Fatalf("unexpected render:\n%s", plain)
	}
}
