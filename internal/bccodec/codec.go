// Package bccodec implements the binary chunk format (§4.6): magic
// header, versioned sections, little-endian integers, length-prefixed
// UTF-8 strings. It extends the documented format with a trailing
// functions section (absent from §4.6, which predates sub-chunk
// function compilation) so FuncProto round-trips too; see DESIGN.md for
// that extension's rationale.
package bccodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jcorbin/pohlang/internal/bytecode"
)

var magic = [4]byte{'P', 'O', 'H', 'C'}

const formatVersion uint32 = 1

// Encode serializes chunk to the .pbc binary format.
func Encode(chunk *bytecode.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	writeU32(&buf, formatVersion)
	if err := encodeChunk(&buf, chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeChunk(buf *bytes.Buffer, chunk *bytecode.Chunk) error {
	writeU32(buf, uint32(chunk.Version))

	consts := chunk.Pool.All()
	writeU32(buf, uint32(len(consts)))
	for _, c := range consts {
		if err := encodeConst(buf, c); err != nil {
			return err
		}
	}

	writeU32(buf, uint32(len(chunk.Code)))
	for _, ins := range chunk.Code {
		if err := encodeInstruction(buf, ins); err != nil {
			return err
		}
	}

	if chunk.Debug == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		writeString(buf, chunk.Debug.SourceFile)
		writeU32(buf, uint32(len(chunk.Debug.Lines)))
		for _, l := range chunk.Debug.Lines {
			writeU32(buf, uint32(l))
		}
		writeU32(buf, uint32(len(chunk.Debug.Locals)))
		for _, name := range chunk.Debug.Locals {
			writeString(buf, name)
		}
	}

	writeU32(buf, uint32(len(chunk.Funcs)))
	for _, p := range chunk.Funcs {
		if err := encodeFuncProto(buf, p); err != nil {
			return err
		}
	}
	return nil
}

func encodeFuncProto(buf *bytes.Buffer, p *bytecode.FuncProto) error {
	writeString(buf, p.Name)
	writeU32(buf, uint32(len(p.ParamNames)))
	for i, name := range p.ParamNames {
		writeString(buf, name)
		if p.Defaults[i] == nil {
			buf.WriteByte(0)
		} else {
			buf.WriteByte(1)
			if err := encodeChunk(buf, p.Defaults[i]); err != nil {
				return err
			}
		}
	}
	if err := encodeChunk(buf, p.Body); err != nil {
		return err
	}
	writeBool(buf, p.IsExprBody)
	writeU32(buf, uint32(p.NLocals))
	return nil
}

func encodeConst(buf *bytes.Buffer, c bytecode.Const) error {
	buf.WriteByte(byte(c.Kind))
	switch c.Kind {
	case bytecode.ConstNumber:
		writeF64(buf, c.Num)
	case bytecode.ConstString:
		writeString(buf, c.Str)
	case bytecode.ConstBoolean:
		writeBool(buf, c.Bl)
	case bytecode.ConstNull:
	default:
		return fmt.Errorf("bccodec: unknown constant kind %d", c.Kind)
	}
	return nil
}

func encodeInstruction(buf *bytes.Buffer, ins bytecode.Instruction) error {
	buf.WriteByte(byte(ins.Op))
	switch {
	case ins.Op.HasStringOperand():
		writeString(buf, ins.Str)
	case ins.Op == bytecode.OpCall:
		buf.WriteByte(ins.Argc)
	default:
		sz := ins.Op.OperandSize()
		if sz == 5 {
			writeU32(buf, uint32(ins.Operand))
		} else if sz != 1 {
			return fmt.Errorf("bccodec: opcode %s has unsupported operand size %d", ins.Op.Name(), sz)
		}
	}
	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeF64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

// Decode parses a .pbc byte stream, validating magic, format version,
// constant tags, and every string length against the remaining buffer
// (§4.6's deserialization policy). An unknown opcode byte is a hard
// error rather than a silent Halt mapping.
func Decode(data []byte) (*bytecode.Chunk, error) {
	r := &reader{buf: data}
	var gotMagic [4]byte
	if err := r.readExact(gotMagic[:]); err != nil {
		return nil, fmt.Errorf("bccodec: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("bccodec: bad magic %q, want %q", gotMagic, magic)
	}
	fv, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if fv != formatVersion {
		return nil, fmt.Errorf("bccodec: unsupported format version %d", fv)
	}
	return decodeChunk(r)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readExact(dst []byte) error {
	if len(r.buf)-r.pos < len(dst) {
		return io.ErrUnexpectedEOF
	}
	copy(dst, r.buf[r.pos:r.pos+len(dst)])
	r.pos += len(dst)
	return nil
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readU32() (uint32, error) {
	var b [4]byte
	if err := r.readExact(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *reader) readF64() (float64, error) {
	var b [8]byte
	if err := r.readExact(b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

func (r *reader) readString() (string, error) {
	n, err := r.readU32()
	if err != nil {
		return "", err
	}
	if int(n) < 0 || len(r.buf)-r.pos < int(n) {
		return "", fmt.Errorf("bccodec: string length %d exceeds remaining buffer", n)
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func decodeChunk(r *reader) (*bytecode.Chunk, error) {
	version, err := r.readU32()
	if err != nil {
		return nil, err
	}
	chunk := &bytecode.Chunk{Version: int(version), Pool: bytecode.NewConstantPool()}

	nconst, err := r.readU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nconst; i++ {
		c, err := decodeConst(r)
		if err != nil {
			return nil, err
		}
		switch c.Kind {
		case bytecode.ConstNumber:
			chunk.Pool.AddNumber(c.Num)
		case bytecode.ConstString:
			chunk.Pool.AddString(c.Str)
		case bytecode.ConstBoolean:
			chunk.Pool.AddBoolean(c.Bl)
		case bytecode.ConstNull:
			chunk.Pool.AddNull()
		}
	}

	ncode, err := r.readU32()
	if err != nil {
		return nil, err
	}
	chunk.Code = make([]bytecode.Instruction, 0, ncode)
	for i := uint32(0); i < ncode; i++ {
		ins, err := decodeInstruction(r)
		if err != nil {
			return nil, err
		}
		chunk.Code = append(chunk.Code, ins)
	}

	hasDebug, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if hasDebug != 0 {
		src, err := r.readString()
		if err != nil {
			return nil, err
		}
		nlines, err := r.readU32()
		if err != nil {
			return nil, err
		}
		lines := make([]int32, nlines)
		for i := range lines {
			v, err := r.readU32()
			if err != nil {
				return nil, err
			}
			lines[i] = int32(v)
		}
		nlocals, err := r.readU32()
		if err != nil {
			return nil, err
		}
		locals := make([]string, nlocals)
		for i := range locals {
			s, err := r.readString()
			if err != nil {
				return nil, err
			}
			locals[i] = s
		}
		chunk.Debug = &bytecode.DebugInfo{SourceFile: src, Lines: lines, Locals: locals}
	}

	nfuncs, err := r.readU32()
	if err != nil {
		return nil, err
	}
	chunk.Funcs = make([]*bytecode.FuncProto, 0, nfuncs)
	for i := uint32(0); i < nfuncs; i++ {
		p, err := decodeFuncProto(r)
		if err != nil {
			return nil, err
		}
		chunk.Funcs = append(chunk.Funcs, p)
	}

	return chunk, nil
}

func decodeFuncProto(r *reader) (*bytecode.FuncProto, error) {
	name, err := r.readString()
	if err != nil {
		return nil, err
	}
	nparams, err := r.readU32()
	if err != nil {
		return nil, err
	}
	params := make([]string, nparams)
	defaults := make([]*bytecode.Chunk, nparams)
	for i := range params {
		pname, err := r.readString()
		if err != nil {
			return nil, err
		}
		params[i] = pname
		hasDefault, err := r.readByte()
		if err != nil {
			return nil, err
		}
		if hasDefault != 0 {
			dc, err := decodeChunk(r)
			if err != nil {
				return nil, err
			}
			defaults[i] = dc
		}
	}
	body, err := decodeChunk(r)
	if err != nil {
		return nil, err
	}
	isExprByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	nlocals, err := r.readU32()
	if err != nil {
		return nil, err
	}
	return &bytecode.FuncProto{
		Name:       name,
		ParamNames: params,
		Defaults:   defaults,
		Body:       body,
		IsExprBody: isExprByte != 0,
		NLocals:    int32(nlocals),
	}, nil
}

func decodeConst(r *reader) (bytecode.Const, error) {
	tag, err := r.readByte()
	if err != nil {
		return bytecode.Const{}, err
	}
	switch bytecode.ConstKind(tag) {
	case bytecode.ConstNumber:
		f, err := r.readF64()
		if err != nil {
			return bytecode.Const{}, err
		}
		return bytecode.Const{Kind: bytecode.ConstNumber, Num: f}, nil
	case bytecode.ConstString:
		s, err := r.readString()
		if err != nil {
			return bytecode.Const{}, err
		}
		return bytecode.Const{Kind: bytecode.ConstString, Str: s}, nil
	case bytecode.ConstBoolean:
		b, err := r.readByte()
		if err != nil {
			return bytecode.Const{}, err
		}
		return bytecode.Const{Kind: bytecode.ConstBoolean, Bl: b != 0}, nil
	case bytecode.ConstNull:
		return bytecode.Const{Kind: bytecode.ConstNull}, nil
	default:
		return bytecode.Const{}, fmt.Errorf("bccodec: unknown constant type tag %d", tag)
	}
}

func decodeInstruction(r *reader) (bytecode.Instruction, error) {
	opByte, err := r.readByte()
	if err != nil {
		return bytecode.Instruction{}, err
	}
	op := bytecode.Op(opByte)
	if op.Name() == "Unknown" {
		return bytecode.Instruction{}, fmt.Errorf("bccodec: unknown opcode byte %d", opByte)
	}
	switch {
	case op.HasStringOperand():
		s, err := r.readString()
		if err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: op, Str: s}, nil
	case op == bytecode.OpCall:
		argc, err := r.readByte()
		if err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: op, Argc: argc}, nil
	default:
		sz := op.OperandSize()
		if sz == 5 {
			v, err := r.readU32()
			if err != nil {
				return bytecode.Instruction{}, err
			}
			return bytecode.Instruction{Op: op, Operand: int32(v)}, nil
		}
		return bytecode.Instruction{Op: op}, nil
	}
}
