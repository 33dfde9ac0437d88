// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package console renders view trees in a terminal and reads the user's answers
// line by line.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"footprint/cli/internal/logging"
	"footprint/cli/internal/terminal"
	"footprint/cli/internal/visualisation"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// tableRows is the page size of a consent table.
const tableRows = 20

// Surface is a visualisation.Surface on a terminal.
type Surface struct {
	out         io.Writer
	width       int
	interactive bool
	onClose     func()

	lines     chan string
	readOnce  sync.Once
	in        io.Reader
	unmounted chan struct{}

	mu      sync.Mutex
	stop    chan struct{}
	spinner *pterm.SpinnerPrinter
	done    bool
	wg      sync.WaitGroup
}

// Option configures a Surface.
type Option func(*Surface)

// WithOnInputClosed registers fn to run when the input reaches EOF while a page
// still waits for an answer. fn runs on the conversation goroutine and must not
// call Unmount (directly or through the engine); cancelling a context is fine.
func WithOnInputClosed(fn func()) Option { return func(s *Surface) { s.onClose = fn } }

// New returns a surface reading answers from in and drawing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Surface {
	s := &Surface{
		in:          in,
		out:         &syncWriter{w: out},
		width:       terminal.Width(out),
		interactive: terminal.IsInteractive(in) && terminal.IsInteractive(out),
		lines:       make(chan string),
		unmounted:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewStd returns a surface on the process's stdin and stdout.
func NewStd(opts ...Option) *Surface { return New(os.Stdin, os.Stdout, opts...) }

func (s *Surface) readLoop() {
	defer close(s.lines)
	sc := bufio.NewScanner(s.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		case <-s.unmounted:
			return
		}
	}
}

// Render draws tree and, for answerable views, starts a conversation that
// applies the user's answer to the view.
func (s *Surface) Render(tree visualisation.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return fmt.Errorf("surface unmounted")
	}
	s.stopSpinner()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}

	if loading, ok := tree.Body.(*visualisation.LoadingView); ok {
		return s.showLoading(loading)
	}

	if tree.Title != "" {
		pterm.Fprintln(s.out)
		pterm.Fprintln(s.out, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(tree.Title))
	}
	if err := s.draw(tree.Body); err != nil {
		return err
	}

	s.readOnce.Do(func() { go s.readLoop() })
	stop := make(chan struct{})
	s.stop = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.converse(tree.Body, stop)
	}()
	return nil
}

func (s *Surface) showLoading(v *visualisation.LoadingView) error {
	if !s.interactive {
		pterm.Fprintln(s.out, v.Text)
		return nil
	}
	cursor.Hide()
	sp, err := pterm.DefaultSpinner.WithWriter(s.out).WithRemoveWhenDone(true).Start(v.Text)
	if err != nil {
		cursor.Show()
		return err
	}
	s.spinner = sp
	return nil
}

func (s *Surface) stopSpinner() {
	if s.spinner != nil {
		_ = s.spinner.Stop()
		s.spinner = nil
		cursor.Show()
	}
}

// Unmount stops any conversation and restores the cursor.
func (s *Surface) Unmount() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.stopSpinner()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	close(s.unmounted)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Surface) draw(v visualisation.View) error {
	w := s.out
	switch view := v.(type) {
	case *visualisation.RadioView:
		pterm.Fprintln(w, pterm.NewStyle(pterm.Bold).Sprint(view.Title))
		if view.Description != "" {
			pterm.Fprintln(w, view.Description)
		}
		pterm.Fprintln(w)
		for i, it := range view.Items {
			pterm.Fprintln(w, fmt.Sprintf("  %s %s", pterm.NewStyle(pterm.FgGreen).Sprintf("%d)", i+1), it.Value))
		}
	case *visualisation.FileView:
		pterm.Fprintln(w, view.Description)
		if view.Extensions != "" {
			pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint("Accepted: "+view.Extensions))
		}
	case *visualisation.ConfirmView:
		pterm.Fprintln(w, view.Text)
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgGreen).Sprint("y")+" for "+view.Ok)
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgRed).Sprint("n")+" for "+view.Cancel)
	case *visualisation.ConsentView:
		if view.Description != "" {
			pterm.Fprintln(w, view.Description)
		}
		for i, t := range view.Tables {
			if err := s.drawTable(i+1, t, 1); err != nil {
				return err
			}
		}
		for _, t := range view.MetaTables {
			if err := s.drawTable(0, t, 1); err != nil {
				return err
			}
		}
		if view.DonateQuestion != "" {
			pterm.Fprintln(w, pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint(view.DonateQuestion))
		}
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgGreen).Sprint("y")+" for "+view.DonateButton)
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgRed).Sprint("n")+" for "+view.DeclineButton)
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgCyan).Sprint("p <table> <page>")+" to see more rows")
		pterm.Fprintln(w, "  • Type "+pterm.NewStyle(pterm.FgCyan).Sprint("x <table> <row>[,<row>...]")+" to leave rows out")
	case *visualisation.InstructionsView:
		pterm.Fprintln(w, view.Description)
		if view.ImageURL != "" {
			pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint(view.ImageURL))
		}
	case *visualisation.EndView:
		box := pterm.DefaultBox.WithTitle(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(view.Title)).WithPadding(1).Sprint(view.Text)
		pterm.Fprintln(w, box)
	default:
		return fmt.Errorf("cannot draw %T", v)
	}
	pterm.Fprintln(w)
	return nil
}

func pages(t visualisation.TableView) int {
	if len(t.Rows) == 0 {
		return 1
	}
	return (len(t.Rows) + tableRows - 1) / tableRows
}

// drawTable prints one page (1-based) of t. Row numbers stay global so they can
// be passed to "x" from any page.
func (s *Surface) drawTable(n int, t visualisation.TableView, page int) error {
	title := t.Title
	if title == "" {
		title = t.ID
	}
	if n > 0 {
		title = fmt.Sprintf("[%d] %s", n, title)
	}
	pterm.Fprintln(s.out)
	pterm.Fprintln(s.out, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(title))
	if t.Description != "" && page == 1 {
		pterm.Fprintln(s.out, t.Description)
	}

	first := (page - 1) * tableRows
	last := min(first+tableRows, len(t.Rows))
	data := pterm.TableData{append([]string{"#"}, t.Columns...)}
	for i := first; i < last; i++ {
		data = append(data, append([]string{strconv.Itoa(i + 1)}, t.Rows[i]...))
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	pterm.Fprintln(s.out, out)
	if total := pages(t); total > 1 {
		hint := fmt.Sprintf("page %d of %d, rows %d-%d of %d", page, total, first+1, last, len(t.Rows))
		if n > 0 && page < total {
			hint += fmt.Sprintf(", type p %d %d for the next page", n, page+1)
		}
		pterm.Fprintln(s.out, pterm.NewStyle(pterm.FgGray).Sprint(hint))
	}
	return nil
}

// showPage handles "p <table> <page>".
func (s *Surface) showPage(v *visualisation.ConsentView, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: p <table> <page>")
	}
	tn, err := strconv.Atoi(args[0])
	if err != nil || tn < 1 || tn > len(v.Tables) {
		return fmt.Errorf("no table %s", args[0])
	}
	t := v.Tables[tn-1]
	pn, err := strconv.Atoi(args[1])
	if err != nil || pn < 1 || pn > pages(t) {
		return fmt.Errorf("table %d has pages 1-%d", tn, pages(t))
	}
	return s.drawTable(tn, t, pn)
}

// converse reads lines until one of them answers v.
func (s *Surface) converse(v visualisation.View, stop <-chan struct{}) {
	log := logging.With("console")
	excluded := map[string][]int{}
	for {
		prompt := promptFor(v)
		pterm.Fprint(s.out, prompt)

		var line string
		select {
		case <-stop:
			return
		case l, ok := <-s.lines:
			if !ok {
				log.Debugf("input closed while waiting for an answer")
				if s.onClose != nil {
					s.onClose()
				}
				return
			}
			line = strings.TrimSpace(l)
		}
		if s.interactive {
			terminal.ClearLines(s.out, terminal.LinesFor(len(prompt)+len(line), s.width)+1)
		}

		answered, err := s.apply(v, line, excluded)
		if err != nil {
			pterm.Fprintln(s.out, pterm.Warning.Sprint(err.Error()))
			continue
		}
		if answered {
			return
		}
	}
}

func promptFor(v visualisation.View) string {
	switch view := v.(type) {
	case *visualisation.RadioView:
		return fmt.Sprintf("Choose [1-%d]: ", len(view.Items))
	case *visualisation.FileView:
		return "Path to file (empty to " + strings.ToLower(view.SkipLabel) + "): "
	case *visualisation.ConfirmView, *visualisation.ConsentView:
		return "Your answer [y/n]: "
	case *visualisation.InstructionsView:
		return "Press Enter to " + strings.ToLower(view.ContinueLabel) + " "
	case *visualisation.EndView:
		return "Press Enter to close "
	}
	return "> "
}

// apply interprets line for v. It reports whether the page was answered; a
// non-nil error is shown to the user and the question is asked again.
func (s *Surface) apply(v visualisation.View, line string, excluded map[string][]int) (bool, error) {
	var err error
	switch view := v.(type) {
	case *visualisation.RadioView:
		value := line
		if n, convErr := strconv.Atoi(line); convErr == nil {
			if n < 1 || n > len(view.Items) {
				return false, fmt.Errorf("pick a number between 1 and %d", len(view.Items))
			}
			value = view.Items[n-1].Value
		} else {
			for _, it := range view.Items {
				if strings.EqualFold(it.Value, line) {
					value = it.Value
				}
			}
		}
		err = view.Choose(value)
	case *visualisation.FileView:
		if line == "" {
			err = view.Skip()
			break
		}
		if _, statErr := os.Stat(line); statErr != nil {
			return false, fmt.Errorf("cannot open %s", line)
		}
		err = view.Submit(line)
	case *visualisation.ConfirmView:
		switch strings.ToLower(line) {
		case "y", "yes", strings.ToLower(view.Ok):
			err = view.Accept()
		case "n", "no", strings.ToLower(view.Cancel):
			err = view.Decline()
		default:
			return false, fmt.Errorf("type y or n")
		}
	case *visualisation.ConsentView:
		lower := strings.ToLower(line)
		switch {
		case lower == "y" || lower == "yes":
			err = view.Donate(excluded)
		case lower == "n" || lower == "no":
			err = view.Decline()
		case strings.HasPrefix(lower, "p "):
			return false, s.showPage(view, strings.Fields(line)[1:])
		case strings.HasPrefix(lower, "x "):
			return false, exclude(view, strings.Fields(line)[1:], excluded)
		default:
			return false, fmt.Errorf("type y, n, p <table> <page> or x <table> <rows>")
		}
	case *visualisation.InstructionsView:
		err = view.Continue()
	case *visualisation.EndView:
		err = view.Finish()
	default:
		return false, fmt.Errorf("nothing to answer")
	}
	if err == visualisation.ErrResolved {
		return true, nil
	}
	return err == nil, err
}

// exclude records "x <table> <row>[,<row>...]" with 1-based numbers.
func exclude(v *visualisation.ConsentView, args []string, excluded map[string][]int) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: x <table> <row>[,<row>...]")
	}
	tn, err := strconv.Atoi(args[0])
	if err != nil || tn < 1 || tn > len(v.Tables) {
		return fmt.Errorf("no table %s", args[0])
	}
	t := v.Tables[tn-1]
	for _, part := range strings.Split(args[1], ",") {
		rn, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || rn < 1 || rn > len(t.Rows) {
			return fmt.Errorf("table %d has no row %s", tn, part)
		}
		excluded[t.ID] = append(excluded[t.ID], rn-1)
	}
	return nil
}

// syncWriter serializes writes from Render and a conversation that is winding down.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
