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

package util

// LittleEndianInput reads little-endian values from a byte slice.
//
// The first read that runs past the end records an ErrFormat error; every
// later read returns zero values. Check Err once after a group of reads.
type LittleEndianInput struct {
	data []byte
	pos  int
	end  int
	err  error
}

func NewLittleEndianInput(data []byte) *LittleEndianInput {
	return &LittleEndianInput{data: data, end: len(data)}
}

// NewLittleEndianInputAt limits reading to data[offset:offset+length].
func NewLittleEndianInputAt(data []byte, offset, length int) *LittleEndianInput {
	in := &LittleEndianInput{data: data, pos: offset, end: offset + length}
	if offset < 0 || length < 0 || in.end > len(data) {
		in.end = len(data)
		in.err = FormatErrorf("range %d+%d is outside the %d byte buffer", offset, length, len(data))
	}
	return in
}

func (in *LittleEndianInput) Err() error {
	return in.err
}

func (in *LittleEndianInput) Position() int {
	return in.pos
}

func (in *LittleEndianInput) Available() int {
	if in.err != nil {
		return 0
	}
	return in.end - in.pos
}

func (in *LittleEndianInput) take(n int) []byte {
	if in.err != nil {
		return nil
	}
	if n < 0 || in.pos+n > in.end {
		in.err = FormatErrorf("buffer underrun: need %d bytes at offset %d, %d available",
			n, in.pos, in.end-in.pos)
		return nil
	}
	b := in.data[in.pos : in.pos+n]
	in.pos += n
	return b
}

func (in *LittleEndianInput) ReadUByte() int {
	b := in.take(BYTE_SIZE)
	if b == nil {
		return 0
	}
	return int(b[0])
}

func (in *LittleEndianInput) ReadSByte() int8 {
	return int8(in.ReadUByte())
}

func (in *LittleEndianInput) ReadShort() int16 {
	b := in.take(SHORT_SIZE)
	if b == nil {
		return 0
	}
	return GetShort(b, 0)
}

func (in *LittleEndianInput) ReadUShort() int {
	b := in.take(SHORT_SIZE)
	if b == nil {
		return 0
	}
	return GetUShort(b, 0)
}

func (in *LittleEndianInput) ReadInt() int {
	b := in.take(INT_SIZE)
	if b == nil {
		return 0
	}
	return GetInt(b, 0)
}

func (in *LittleEndianInput) ReadUInt() uint32 {
	b := in.take(INT_SIZE)
	if b == nil {
		return 0
	}
	return GetUInt(b, 0)
}

func (in *LittleEndianInput) ReadLong() int64 {
	b := in.take(LONG_SIZE)
	if b == nil {
		return 0
	}
	return GetLong(b, 0)
}

func (in *LittleEndianInput) ReadDouble() float64 {
	b := in.take(DOUBLE_SIZE)
	if b == nil {
		return 0
	}
	return GetDouble(b, 0)
}

// ReadBytes returns a copy of the next n bytes.
func (in *LittleEndianInput) ReadBytes(n int) []byte {
	b := in.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (in *LittleEndianInput) ReadFully(buf []byte) {
	b := in.take(len(buf))
	if b != nil {
		copy(buf, b)
	}
}

// ReadRemainder returns a copy of everything up to the end of the input.
func (in *LittleEndianInput) ReadRemainder() []byte {
	return in.ReadBytes(in.Available())
}

func (in *LittleEndianInput) Skip(n int) {
	in.take(n)
}
