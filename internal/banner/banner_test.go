package banner

import (
	"strings"
	"testing"

	"github.com/gookit/color"
)

func TestBanner(t *testing.T) {
	got := color.ClearCode(Banner("v1.2.3"))
	if !strings.Contains(got, "v1.2.3") {
		t.Errorf("banner does not contain version: %q", got)
	}
	if !strings.Contains(got, "r/playrust") {
		t.Errorf("banner does not describe the tool: %q", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Error("banner should end with a blank line")
	}
}
