package llm

import (
	"errors"
	"strings"

	"github.com/hupe1980/regmesh/core"
)

// CollectText drains a provider stream, concatenating all text deltas in
// arrival order. An in-band error event is surfaced as the call's failure.
// Tool events are ignored; interception happens upstream of this helper.
func CollectText(events <-chan core.StreamEvent) (string, error) {
	var b strings.Builder
	for ev := range events {
		switch ev.Type {
		case core.StreamText:
			b.WriteString(ev.Text)
		case core.StreamError:
			return "", errors.New(ev.Err)
		}
	}
	return b.String(), nil
}
