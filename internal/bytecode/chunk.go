package bytecode

// Chunk is a compiled bytecode unit: version, constant pool, code, and
// optional debug info (§3).
type Chunk struct {
	Version int
	Pool    *ConstantPool
	Code    []Instruction
	Debug   *DebugInfo
	Funcs   []*FuncProto
}

// FuncProto is a compiled function prototype: its parameter names (in
// order), a sub-chunk compiling each parameter's default expression (nil
// entry if the parameter has none), and a sub-chunk compiling the body.
// OpLoadFunc references one of these by index to build a runtime Function
// value, completing the sub-chunk-per-function design the compiler notes
// call for.
type FuncProto struct {
	Name        string
	ParamNames  []string
	Defaults    []*Chunk
	Body        *Chunk
	IsExprBody  bool
	NLocals     int32 // local-slot count the VM must allocate for a call frame
}

// DebugInfo carries the source file name, a per-instruction line number
// table, and local-slot-to-variable-name bindings (§4.6).
type DebugInfo struct {
	SourceFile string
	Lines      []int32
	Locals     []string
}

func NewChunk() *Chunk {
	return &Chunk{Version: 1, Pool: NewConstantPool()}
}

// Emit appends an instruction and returns its index, used as the jump
// source position for later patching.
func (c *Chunk) Emit(ins Instruction) int {
	c.Code = append(c.Code, ins)
	return len(c.Code) - 1
}

// PatchJump rewrites the instruction at pos with a relative offset
// computed against the current end of the code (§4.4's jump-patching
// discipline: offset = current - pos - 1).
func (c *Chunk) PatchJump(pos int) {
	offset := int32(len(c.Code) - pos - 1)
	c.Code[pos].Operand = offset
}

// PatchJumpTo rewrites the instruction at pos to target an explicit
// instruction index.
func (c *Chunk) PatchJumpTo(pos, target int) {
	c.Code[pos].Operand = int32(target - pos - 1)
}
