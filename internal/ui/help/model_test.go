package help

import (
	"strings"
	"testing"

	"github.com/nhle/taskclient/internal/keys"
)

func TestViewListsBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 300, 40)
	m.SetSize(300, 40)

	view := m.View()
	for _, want := range []string{"Keyboard Shortcuts", "new task", "status filter", "logout", "ctrl+t"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}
