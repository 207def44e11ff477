package mir

import (
	"bufio"
	"fmt"
	"io"
)

// countWriter counts bytes written through it.
type countWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countWriter) printf(format string, args ...interface{}) {
	n, _ := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
}

// WriteTo writes a human readable listing of the body to w.
func (b *Body) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: bufio.NewWriter(w)}
	cw.printf("fn %s {\n", b.Name)
	for l := 0; l < b.NumLocals; l++ {
		kind := "let"
		if l < b.ArgCount {
			kind = "arg"
		}
		if name := b.LocalName(Local(l)); name != Local(l).String() {
			cw.printf("    %s %s; // %s\n", kind, Local(l), name)
		} else if l < b.ArgCount {
			cw.printf("    %s %s;\n", kind, Local(l))
		}
	}
	reachable, cyclic := b.Reachable(), b.CyclicBlocks()
	for i, data := range b.Blocks {
		bb := BasicBlock(i)
		cw.printf("\n    %s", bb)
		if data.IsCleanup {
			cw.printf(" (cleanup)")
		}
		if !reachable[i] {
			cw.printf(" (unreachable)")
		} else if cyclic[i] {
			cw.printf(" (loop)")
		}
		cw.printf(": {")
		if data.Comment != "" {
			cw.printf(" // %s", data.Comment)
		}
		if preds := b.Predecessors(bb); len(preds) > 0 {
			cw.printf(" // preds: %v", preds)
		}
		cw.printf("\n")
		for j := range data.Statements {
			cw.printf("        %s;\n", &data.Statements[j])
		}
		cw.printf("        %s;\n    }\n", data.Terminator)
	}
	cw.printf("}\n")
	return cw.n, cw.w.Flush()
}
