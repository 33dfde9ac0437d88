// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assembly

import (
	"sync"

	"footprint/cli/internal/bridge/model"
)

// Progress tracks what happened during one port session.
type Progress struct {
	// Pages counts rendered pages
	Pages int
	// Donated lists donation keys in the order they were sent
	Donated []string
	// Failed maps command types to the last error reported for them
	Failed map[string]string
	// ExitCode is the code of the exit command
	ExitCode int
	// ExitInfo is the info of the exit command
	ExitInfo string

	exited bool
	mu     sync.Mutex
}

func NewProgress() *Progress {
	return &Progress{Failed: make(map[string]string)}
}

// Record notes a handled command and its outcome.
func (p *Progress) Record(cmd model.Command, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		typ := "unknown"
		if cmd != nil {
			typ = cmd.CommandType()
		}
		p.Failed[typ] = err.Error()
		return
	}
	switch c := cmd.(type) {
	case model.CommandUIRender:
		p.Pages++
	case model.CommandSystemDonate:
		p.Donated = append(p.Donated, c.Key)
	case model.CommandSystemExit:
		p.exited = true
		p.ExitCode = c.Code
		p.ExitInfo = c.Info
	}
}

// Summary is a point-in-time copy of Progress.
type Summary struct {
	Pages    int
	Donated  []string
	Failed   map[string]string
	Exited   bool
	ExitCode int
	ExitInfo string
}

// Snapshot returns a copy safe to read while the session continues.
func (p *Progress) Snapshot() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	failed := make(map[string]string, len(p.Failed))
	for k, v := range p.Failed {
		failed[k] = v
	}
	return Summary{
		Pages:    p.Pages,
		Donated:  append([]string(nil), p.Donated...),
		Failed:   failed,
		Exited:   p.exited,
		ExitCode: p.ExitCode,
		ExitInfo: p.ExitInfo,
	}
}

// Exited reports whether the worker sent an exit command.
func (p *Progress) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

// HasFailures reports whether any command was answered with an error.
func (p *Progress) HasFailures() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Failed) > 0
}
