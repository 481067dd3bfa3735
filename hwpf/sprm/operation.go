// Developer: Ali Naqvi
//
// This program or package and any associated files are licensed under the
// Apache License, Version 2.0 (the "License"); you may not use these files
// except in compliance with the License. You can get a copy of the License
// at: http://www.apache.org/licenses/LICENSE-2.0.
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sprm decodes the single property modifiers (SPRMs) of Word
// documents and applies them to character and paragraph properties.
package sprm

import (
	"fmt"

	"github.com/naqvis/poi4go/util"
)

// Property groups (sgc) of an opcode.
const (
	TYPE_PAP = 1
	TYPE_CHP = 2
	TYPE_PIC = 3
	TYPE_SEP = 4
	TYPE_TAP = 5
)

// Operand sizes (spra) of an opcode.
const (
	SPRA_TOGGLE   = 0
	SPRA_BYTE     = 1
	SPRA_SHORT    = 2
	SPRA_INT      = 3
	SPRA_DXA      = 4
	SPRA_DYA      = 5
	SPRA_VARIABLE = 6
	SPRA_3BYTES   = 7
)

const (
	// opcodes whose variable operand has a 2 byte length
	SPRM_LONG_TABLE     uint16 = 0xD608
	SPRM_LONG_PARAGRAPH uint16 = 0xC615

	_opcode_size = 2
)

// SprmOperation is one decoded modifier: the opcode, and where its operand
// lies in the grpprl it was read from.
type SprmOperation struct {
	Opcode uint16
	grpprl []byte

	// operand start, past any length prefix
	offset int
	size   int
}

// Operation is the ispmd field, unique within a property group.
func (op *SprmOperation) Operation() int {
	return int(op.Opcode & 0x01FF)
}

// IsSpecial reports the fSpec bit.
func (op *SprmOperation) IsSpecial() bool {
	return op.Opcode&0x0200 != 0
}

// Type is the property group (sgc).
func (op *SprmOperation) Type() int {
	return int(op.Opcode>>10) & 0x07
}

// SizeCode is the operand size code (spra).
func (op *SprmOperation) SizeCode() int {
	return int(op.Opcode >> 13)
}

// Size is the number of bytes the operation occupies, opcode included.
func (op *SprmOperation) Size() int {
	return op.size
}

// Operand returns a fixed size operand. One byte operands are unsigned,
// two and four byte operands signed. Variable operands return 0; use
// Payload.
func (op *SprmOperation) Operand() int {
	switch op.SizeCode() {
	case SPRA_TOGGLE, SPRA_BYTE:
		return int(op.grpprl[op.offset])
	case SPRA_SHORT, SPRA_DXA, SPRA_DYA:
		return int(util.GetShort(op.grpprl, op.offset))
	case SPRA_INT:
		return util.GetInt(op.grpprl, op.offset)
	case SPRA_3BYTES:
		return int(op.grpprl[op.offset]) | int(op.grpprl[op.offset+1])<<8 | int(op.grpprl[op.offset+2])<<16
	}
	return 0
}

// Payload returns the operand bytes, without a length prefix.
func (op *SprmOperation) Payload() []byte {
	end := op.start() + op.size
	return op.grpprl[op.offset:end]
}

func (op *SprmOperation) start() int {
	return op.offset - op.prefixSize() - _opcode_size
}

func (op *SprmOperation) prefixSize() int {
	if op.SizeCode() != SPRA_VARIABLE {
		return 0
	}
	if op.Opcode == SPRM_LONG_TABLE || op.Opcode == SPRM_LONG_PARAGRAPH {
		return 2
	}
	return 1
}

func (op *SprmOperation) String() string {
	return fmt.Sprintf("[SPRM] 0x%04X (type %d, op 0x%02X, %d bytes)", op.Opcode, op.Type(), op.Operation(), op.size)
}

// operandSize is the fixed operand size of a size code, -1 for variable.
func operandSize(spra int) int {
	switch spra {
	case SPRA_TOGGLE, SPRA_BYTE:
		return 1
	case SPRA_SHORT, SPRA_DXA, SPRA_DYA:
		return 2
	case SPRA_INT:
		return 4
	case SPRA_3BYTES:
		return 3
	}
	return -1
}

// SprmIterator walks the operations of a grpprl.
type SprmIterator struct {
	grpprl []byte
	offset int
}

func NewSprmIterator(grpprl []byte, offset int) *SprmIterator {
	return &SprmIterator{grpprl: grpprl, offset: offset}
}

// HasNext reports whether another opcode fits; a single trailing byte is
// padding.
func (it *SprmIterator) HasNext() bool {
	return it.offset+_opcode_size <= len(it.grpprl)
}

// Next decodes the operation at the current offset. An operation running
// past the buffer is an ErrFormat error and stops the iteration.
func (it *SprmIterator) Next() (*SprmOperation, error) {
	start := it.offset
	if start < 0 || start+_opcode_size > len(it.grpprl) {
		return nil, util.FormatErrorf("sprm at offset %d: no opcode in %d bytes", start, len(it.grpprl))
	}
	op := &SprmOperation{Opcode: uint16(util.GetUShort(it.grpprl, start)), grpprl: it.grpprl}
	pos := start + _opcode_size
	n := operandSize(op.SizeCode())
	switch {
	case n >= 0:
		op.size = _opcode_size + n
	case op.prefixSize() == 2:
		if pos+2 > len(it.grpprl) {
			return it.overrun(op, start)
		}
		// the stored length counts itself less one byte
		op.size = util.GetUShort(it.grpprl, pos) + 3
		pos += 2
	default:
		if pos+1 > len(it.grpprl) {
			return it.overrun(op, start)
		}
		op.size = int(it.grpprl[pos]) + 3
		pos++
	}
	op.offset = pos
	if start+op.size > len(it.grpprl) || op.offset > start+op.size {
		return it.overrun(op, start)
	}
	it.offset = start + op.size
	return op, nil
}

func (it *SprmIterator) overrun(op *SprmOperation, start int) (*SprmOperation, error) {
	it.offset = len(it.grpprl)
	return nil, util.FormatErrorf("sprm 0x%04X at offset %d runs past the %d byte grpprl", op.Opcode, start, len(it.grpprl))
}
