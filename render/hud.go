package render

import (
	"strings"

	"github.com/lixenwraith/magnetic-mesh/status"
)

var (
	hudFg = RGB{192, 202, 245}
	hudBg = RGB{26, 27, 38}
)

// HUD draws registry metrics on the top row
type HUD struct {
	registry *status.Registry
	sb       strings.Builder
}

// NewHUD creates a HUD over registry; a nil registry draws nothing
func NewHUD(registry *status.Registry) *HUD {
	return &HUD{registry: registry}
}

// Line formats the current metrics as "key value" pairs
func (h *HUD) Line() string {
	if h.registry == nil {
		return ""
	}
	h.sb.Reset()
	for i, e := range h.registry.Snapshot() {
		if i > 0 {
			h.sb.WriteString("  ")
		}
		h.sb.WriteString(e.Key)
		h.sb.WriteByte(' ')
		h.sb.WriteString(e.Value)
	}
	return h.sb.String()
}

// Draw writes the status line at the top-left corner
func (h *HUD) Draw(c *Canvas) {
	line := h.Line()
	if line == "" {
		return
	}
	c.DrawText(0, 0, " "+line+" ", hudFg, hudBg)
}
