package progress

import (
	"fmt"

	"swissarchive/driver"
	L "swissarchive/logger"
)

// Plain logs one line per phase instead of drawing a live bar. Used
// when stdout is not a terminal.
type Plain struct {
	brief string
	done  uint64
	total uint64
}

func NewPlain() *Plain {
	return &Plain{}
}

func (p *Plain) Updater() driver.Updater {
	return func(status driver.UpdateStatus) {
		if status.Brief != nil && *status.Brief != p.brief {
			p.flush()
			p.brief = *status.Brief
			p.done = 0
			p.total = 0
			L.Info(p.brief)
		}
		if status.Total != nil {
			p.total = *status.Total
		}
		if status.Increment != nil {
			p.done += *status.Increment
		}
	}
}

func (p *Plain) Stop() {
	p.flush()
}

func (p *Plain) flush() {
	if p.brief == "" {
		return
	}
	if p.total > 0 {
		L.Info(fmt.Sprintf("%s: %d/%d", p.brief, p.done, p.total))
	} else if p.done > 0 {
		L.Info(fmt.Sprintf("%s: %d steps", p.brief, p.done))
	}
}
