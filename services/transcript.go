package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-runner/models"
)

// transcript appends lines to the rendered tournament log the same way a
// read-only text view would: every entry ends with a newline.
type transcript struct {
	b strings.Builder
}

func newTranscript(existing string) *transcript {
	t := &transcript{}
	t.b.WriteString(existing)
	return t
}

func (t *transcript) line(format string, args ...interface{}) {
	fmt.Fprintf(&t.b, format, args...)
	t.b.WriteByte('\n')
}

func (t *transcript) String() string {
	return t.b.String()
}

func (t *transcript) requirementsNeeded(total int) {
	t.line("This tournament needs %d unique requirements.", total)
	t.line("")
}

func (t *transcript) round(index, participants int, assignments []models.Assignment) {
	t.line("Round %d (%d participants):", index, participants)
	for _, a := range assignments {
		t.line("  Group: %s -> Requirement: %s", strings.Join(a.Group, ", "), a.Requirement)
	}
}

func (t *transcript) winners(names []string) {
	t.line("")
	t.line("Winners of this stage:")
	t.line("%s", strings.Join(names, ", "))
	t.line("")
}

func (t *transcript) champion(name string) {
	t.line("Winner: %s", name)
}
