package mir

import (
	"bytes"
	"fmt"
)

// StatementKind classifies statements.
type StatementKind int

const (
	Nop StatementKind = iota
	Assign
	StorageLive
	StorageDead
	SideEffect // Reads Operands, writes nothing tracked (e.g. a store through a pointer).
)

var statementKindNames = [...]string{
	Nop:         "nop",
	Assign:      "assign",
	StorageLive: "StorageLive",
	StorageDead: "StorageDead",
	SideEffect:  "effect",
}

func (k StatementKind) String() string {
	if int(k) < len(statementKindNames) {
		return statementKindNames[k]
	}
	return fmt.Sprintf("StatementKind(%d)", int(k))
}

// Statement is a non-terminating instruction of a block.
type Statement struct {
	Kind     StatementKind
	Place    Place     // Destination of Assign, subject of StorageLive/StorageDead.
	Operands []Operand // Values read.
	Text     string    // Optional source form, used for printing only.
}

func (s *Statement) String() string {
	var buf bytes.Buffer
	switch s.Kind {
	case Assign:
		buf.WriteString(s.Place.String())
		buf.WriteString(" = ")
		if s.Text != "" {
			buf.WriteString(s.Text)
		} else {
			writeOperands(&buf, "use", s.Operands)
		}
	case StorageLive, StorageDead:
		fmt.Fprintf(&buf, "%s(%s)", s.Kind, s.Place)
	case SideEffect:
		if s.Text != "" {
			buf.WriteString(s.Text)
		} else {
			writeOperands(&buf, "effect", s.Operands)
		}
	default:
		buf.WriteString("nop")
	}
	return buf.String()
}

func writeOperands(buf *bytes.Buffer, fn string, ops []Operand) {
	buf.WriteString(fn)
	buf.WriteByte('(')
	for i, op := range ops {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(op.String())
	}
	buf.WriteByte(')')
}
