package mir

// Builder constructs a Body block by block. Blocks may be created before
// their terminators are known so forward jumps can be expressed.
type Builder struct {
	name   string
	locals []string
	args   int
	blocks []*BlockData
}

// NewBuilder returns a Builder for a function called name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// NewLocal declares a new local.
func (b *Builder) NewLocal(name string) Local {
	b.locals = append(b.locals, name)
	return Local(len(b.locals) - 1)
}

// NewArg declares a new argument. Arguments must be declared before any
// other local.
func (b *Builder) NewArg(name string) Local {
	if b.args != len(b.locals) {
		panic("mir: argument declared after locals")
	}
	b.args++
	return b.NewLocal(name)
}

// NewBlock creates an empty block. The first block created is StartBlock.
func (b *Builder) NewBlock() BasicBlock {
	b.blocks = append(b.blocks, &BlockData{})
	return BasicBlock(len(b.blocks) - 1)
}

// Data returns the block under construction.
func (b *Builder) Data(bb BasicBlock) *BlockData { return b.blocks[bb] }

// Push appends stmt to block bb.
func (b *Builder) Push(bb BasicBlock, stmt Statement) *Builder {
	b.blocks[bb].Statements = append(b.blocks[bb].Statements, stmt)
	return b
}

// Assign appends `dst = use(ops...)` to block bb.
func (b *Builder) Assign(bb BasicBlock, dst Local, ops ...Operand) *Builder {
	return b.Push(bb, Statement{Kind: Assign, Place: Place{Local: dst}, Operands: ops})
}

// Effect appends a side-effecting statement reading ops to block bb.
func (b *Builder) Effect(bb BasicBlock, ops ...Operand) *Builder {
	return b.Push(bb, Statement{Kind: SideEffect, Operands: ops})
}

// Terminate sets the terminator of bb.
func (b *Builder) Terminate(bb BasicBlock, t Terminator) *Builder {
	b.blocks[bb].Terminator = t
	return b
}

// Cleanup marks bb as a cleanup block.
func (b *Builder) Cleanup(bb BasicBlock) *Builder {
	b.blocks[bb].IsCleanup = true
	return b
}

// Build validates the blocks and returns the Body.
func (b *Builder) Build() (*Body, error) {
	body, err := NewBody(b.name, len(b.locals), b.blocks)
	if err != nil {
		return nil, err
	}
	body.LocalNames, body.ArgCount = b.locals, b.args
	return body, nil
}
