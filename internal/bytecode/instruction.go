package bytecode

// Instruction is a single decoded instruction. Only the field matching
// Op's operand shape is meaningful: Operand for a 32-bit const-index/
// slot/jump-offset/count, Argc for Call's 8-bit argument count, Str for
// LoadGlobal/StoreGlobal's name.
type Instruction struct {
	Op      Op
	Operand int32
	Argc    byte
	Str     string
}

// Size returns the instruction's encoded size in bytes, matching §3's
// exact per-opcode table.
func (ins Instruction) Size() int {
	if ins.Op.HasStringOperand() {
		return 5 + len(ins.Str)
	}
	sz := ins.Op.OperandSize()
	if sz < 0 {
		return 1
	}
	return sz
}

func LoadConst(i int32) Instruction  { return Instruction{Op: OpLoadConst, Operand: i} }
func LoadLocal(i int32) Instruction  { return Instruction{Op: OpLoadLocal, Operand: i} }
func StoreLocal(i int32) Instruction { return Instruction{Op: OpStoreLocal, Operand: i} }
func LoadGlobal(name string) Instruction  { return Instruction{Op: OpLoadGlobal, Str: name} }
func StoreGlobal(name string) Instruction { return Instruction{Op: OpStoreGlobal, Str: name} }
func Call(argc byte) Instruction     { return Instruction{Op: OpCall, Argc: argc} }
func Jump(off int32) Instruction         { return Instruction{Op: OpJump, Operand: off} }
func JumpIfFalse(off int32) Instruction  { return Instruction{Op: OpJumpIfFalse, Operand: off} }
func JumpIfTrue(off int32) Instruction   { return Instruction{Op: OpJumpIfTrue, Operand: off} }
func Loop(off int32) Instruction         { return Instruction{Op: OpLoop, Operand: off} }
func BuildList(n int32) Instruction      { return Instruction{Op: OpBuildList, Operand: n} }
func BuildDict(n int32) Instruction      { return Instruction{Op: OpBuildDict, Operand: n} }
func PushTryHandler(off int32) Instruction { return Instruction{Op: OpPushTryHandler, Operand: off} }
func LoadFunc(protoIdx int32) Instruction  { return Instruction{Op: OpLoadFunc, Operand: protoIdx} }
func Simple(op Op) Instruction           { return Instruction{Op: op} }
