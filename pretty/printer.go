// Package pretty prints dataflow results alongside the body they were
// computed for.
//
// Every statement and terminator is printed with the change its primary
// effect made to the state, in the direction of the analysis. States which
// can report the locals they gained and lost (see Differ) are shown as
// coloured +/- lists, others are shown in full.
package pretty

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nickng/mirflow/dataflow"
	"github.com/nickng/mirflow/mir"
	"github.com/pkg/errors"
)

// Differ is implemented by states which can be compared to an older state.
type Differ[D any] interface {
	Diff(old D) (added, removed []mir.Local)
}

// Printer is a dataflow.ResultsVisitor writing the results of one analysis.
type Printer[D dataflow.Domain[D]] struct {
	w     io.Writer
	body  *mir.Body
	add   *color.Color
	del   *color.Color
	lines []string

	prev    D // State before the primary effect being visited.
	hasPrev bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter[D dataflow.Domain[D]](w io.Writer) *Printer[D] {
	p := &Printer[D]{
		w:   w,
		add: color.New(color.FgGreen),
		del: color.New(color.FgRed),
	}
	p.SetColor(false)
	return p
}

// SetColor turns colour output on or off.
func (p *Printer[D]) SetColor(on bool) {
	if on {
		p.add.EnableColor()
		p.del.EnableColor()
		return
	}
	p.add.DisableColor()
	p.del.DisableColor()
}

// Print writes the state at every point of the reachable blocks of body, in
// reverse postorder.
func (p *Printer[D]) Print(body *mir.Body, results *dataflow.Results[D]) error {
	forward := results.Analysis.Direction().IsForward()
	dir := "backward"
	if forward {
		dir = "forward"
	}
	p.body = body
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s) of %s\n", results.Analysis.Name(), dir, body.Name)
	for _, bb := range body.ReversePostorder() {
		p.lines = p.lines[:0]
		results.VisitWith(body, []mir.BasicBlock{bb}, p)
		if !forward {
			reverse(p.lines)
		}
		fmt.Fprintf(&buf, "\n%s:\n", bb)
		for _, line := range p.lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if _, err := buf.WriteTo(p.w); err != nil {
		return errors.Wrap(err, "cannot write results")
	}
	return nil
}

func reverse(lines []string) {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
}

func (p *Printer[D]) VisitBlockStart(state D) {
	p.lines = append(p.lines, fmt.Sprintf("    entry %v", state))
}

func (p *Printer[D]) VisitBlockEnd(state D) {
	p.lines = append(p.lines, fmt.Sprintf("    exit  %v", state))
}

func (p *Printer[D]) VisitStatementBeforePrimaryEffect(_ *dataflow.Results[D], state D, _ *mir.Statement, _ mir.Location) {
	p.save(state)
}

func (p *Printer[D]) VisitStatementAfterPrimaryEffect(_ *dataflow.Results[D], state D, stmt *mir.Statement, _ mir.Location) {
	p.point(stmt.String(), state)
}

func (p *Printer[D]) VisitTerminatorBeforePrimaryEffect(_ *dataflow.Results[D], state D, _ mir.Terminator, _ mir.Location) {
	p.save(state)
}

func (p *Printer[D]) VisitTerminatorAfterPrimaryEffect(_ *dataflow.Results[D], state D, term mir.Terminator, _ mir.Location) {
	p.point(term.String(), state)
}

func (p *Printer[D]) save(state D) {
	if !p.hasPrev {
		p.prev, p.hasPrev = state.Clone(), true
		return
	}
	p.prev.CloneFrom(state)
}

func (p *Printer[D]) point(text string, state D) {
	d, ok := any(state).(Differ[D])
	if !ok {
		p.lines = append(p.lines, fmt.Sprintf("        %-40s %v", text, state))
		return
	}
	added, removed := d.Diff(p.prev)
	var changes []string
	for _, l := range added {
		changes = append(changes, p.add.Sprintf("+%s", p.local(l)))
	}
	for _, l := range removed {
		changes = append(changes, p.del.Sprintf("-%s", p.local(l)))
	}
	if len(changes) == 0 {
		p.lines = append(p.lines, "        "+text)
		return
	}
	p.lines = append(p.lines, fmt.Sprintf("        %-40s %s", text, strings.Join(changes, " ")))
}

func (p *Printer[D]) local(l mir.Local) string {
	if name := p.body.LocalName(l); name != l.String() {
		return fmt.Sprintf("%s(%s)", l, name)
	}
	return l.String()
}
