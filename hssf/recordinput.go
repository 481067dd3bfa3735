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

package hssf

import (
	"unicode/utf16"

	"github.com/naqvis/poi4go/util"
)

// recordInput reads the payload of one logical record. The payload is kept
// as the list of physical segments (the record, then each CONTINUE) so
// string data can honour the option byte that starts a continued segment.
//
// Like util.LittleEndianInput the first underrun sets a sticky ErrFormat.
type recordInput struct {
	sid      uint16
	segments [][]byte
	seg      int
	pos      int
	err      error
}

func newRecordInput(sid uint16, segments ...[]byte) *recordInput {
	if len(segments) == 0 {
		segments = [][]byte{nil}
	}
	return &recordInput{sid: sid, segments: segments}
}

func (in *recordInput) Err() error {
	return in.err
}

// remainingInSegment is the number of bytes left in the current segment.
func (in *recordInput) remainingInSegment() int {
	return len(in.segments[in.seg]) - in.pos
}

// Available is the number of unread bytes over all segments.
func (in *recordInput) Available() int {
	if in.err != nil {
		return 0
	}
	n := in.remainingInSegment()
	for _, s := range in.segments[in.seg+1:] {
		n += len(s)
	}
	return n
}

func (in *recordInput) hasNextSegment() bool {
	return in.seg+1 < len(in.segments)
}

func (in *recordInput) nextSegment() {
	in.seg++
	in.pos = 0
}

// take reads n bytes, moving across segment boundaries as needed.
func (in *recordInput) take(n int) []byte {
	if in.err != nil {
		return nil
	}
	if n > in.Available() {
		in.err = util.FormatErrorf("record 0x%04X: need %d bytes, %d available", in.sid, n, in.Available())
		return nil
	}
	for in.remainingInSegment() == 0 && n > 0 {
		in.nextSegment()
	}
	if n <= in.remainingInSegment() {
		b := in.segments[in.seg][in.pos : in.pos+n]
		in.pos += n
		return b
	}
	b := make([]byte, 0, n)
	for len(b) < n {
		if in.remainingInSegment() == 0 {
			in.nextSegment()
			continue
		}
		k := min(n-len(b), in.remainingInSegment())
		b = append(b, in.segments[in.seg][in.pos:in.pos+k]...)
		in.pos += k
	}
	return b
}

func (in *recordInput) ReadUByte() int {
	b := in.take(1)
	if b == nil {
		return 0
	}
	return int(b[0])
}

func (in *recordInput) ReadUShort() int {
	b := in.take(util.SHORT_SIZE)
	if b == nil {
		return 0
	}
	return util.GetUShort(b, 0)
}

func (in *recordInput) ReadShort() int16 {
	return int16(in.ReadUShort())
}

func (in *recordInput) ReadUInt() uint32 {
	b := in.take(util.INT_SIZE)
	if b == nil {
		return 0
	}
	return util.GetUInt(b, 0)
}

func (in *recordInput) ReadInt() int {
	return int(int32(in.ReadUInt()))
}

func (in *recordInput) ReadDouble() float64 {
	b := in.take(util.LONG_SIZE)
	if b == nil {
		return 0
	}
	return util.GetDouble(b, 0)
}

func (in *recordInput) ReadBytes(n int) []byte {
	b := in.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadRemainder returns every unread byte, the segments concatenated.
func (in *recordInput) ReadRemainder() []byte {
	return in.ReadBytes(in.Available())
}

// ReadStringChars reads nChars characters. When a segment ends before the
// characters do, the next segment starts with an option byte selecting
// the representation of the characters that follow.
func (in *recordInput) ReadStringChars(nChars int, compressed bool) string {
	var units []uint16
	for nChars > 0 && in.err == nil {
		if in.remainingInSegment() == 0 {
			if !in.hasNextSegment() {
				in.err = util.FormatErrorf("record 0x%04X: string runs past the end of the record, %d characters missing",
					in.sid, nChars)
				break
			}
			in.nextSegment()
			compressed = in.ReadUByte()&util.UNCOMPRESSED_FLAG == 0
			continue
		}
		size := util.SHORT_SIZE
		if compressed {
			size = 1
		}
		n := min(nChars, in.remainingInSegment()/size)
		if n == 0 {
			in.err = util.FormatErrorf("record 0x%04X: character split across a continue boundary", in.sid)
			break
		}
		b := in.take(n * size)
		for i := 0; i < n; i++ {
			if compressed {
				units = append(units, uint16(b[i]))
			} else {
				units = append(units, uint16(util.GetUShort(b, i*size)))
			}
		}
		nChars -= n
	}
	return decodeUnits(units)
}

// ReadUnicodeString reads a 16 bit character count, an option byte and
// the characters.
func (in *recordInput) ReadUnicodeString() string {
	nChars := in.ReadUShort()
	flag := in.ReadUByte()
	return in.ReadStringChars(nChars, flag&util.UNCOMPRESSED_FLAG == 0)
}

// ReadShortUnicodeString is the variant with an 8 bit character count.
func (in *recordInput) ReadShortUnicodeString() string {
	nChars := in.ReadUByte()
	flag := in.ReadUByte()
	return in.ReadStringChars(nChars, flag&util.UNCOMPRESSED_FLAG == 0)
}

func decodeUnits(units []uint16) string {
	return string(utf16.Decode(units))
}
