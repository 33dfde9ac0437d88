// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package visualisation

import (
	"errors"
	"sync"
)

// recordingSurface records trees and, when auto is set, answers every page with
// its primary action from a separate goroutine, the way a user would.
type recordingSurface struct {
	auto bool

	mu        sync.Mutex
	trees     []Tree
	unmounted int
	failNext  bool
	rendered  chan Tree
}

func newSurface(auto bool) *recordingSurface {
	return &recordingSurface{auto: auto, rendered: make(chan Tree, 16)}
}

func (s *recordingSurface) Render(tree Tree) error {
	s.mu.Lock()
	if s.failNext {
		s.failNext = false
		s.mu.Unlock()
		return errors.New("display gone")
	}
	s.trees = append(s.trees, tree)
	s.mu.Unlock()

	s.rendered <- tree
	if s.auto {
		go answer(tree.Body)
	}
	return nil
}

func (s *recordingSurface) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmounted++
	return nil
}

func (s *recordingSurface) last() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trees[len(s.trees)-1]
}

func answer(v View) error {
	switch view := v.(type) {
	case *RadioView:
		return view.Choose(view.Items[0].Value)
	case *FileView:
		return view.Submit("/tmp/chatgpt.zip")
	case *ConfirmView:
		return view.Accept()
	case *ConsentView:
		return view.Donate(nil)
	case *InstructionsView:
		return view.Continue()
	case *EndView:
		return view.Finish()
	}
	return nil
}
