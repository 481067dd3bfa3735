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

import (
	"encoding/binary"
	"math"
)

// LittleEndianOutput accumulates little-endian values in memory.
type LittleEndianOutput struct {
	buf []byte
}

func NewLittleEndianOutput(capacity int) *LittleEndianOutput {
	return &LittleEndianOutput{buf: make([]byte, 0, capacity)}
}

func (out *LittleEndianOutput) WriteUByte(v int) {
	out.buf = append(out.buf, byte(v))
}

func (out *LittleEndianOutput) WriteShort(v int) {
	out.buf = binary.LittleEndian.AppendUint16(out.buf, uint16(v))
}

func (out *LittleEndianOutput) WriteInt(v int) {
	out.buf = binary.LittleEndian.AppendUint32(out.buf, uint32(v))
}

func (out *LittleEndianOutput) WriteLong(v int64) {
	out.buf = binary.LittleEndian.AppendUint64(out.buf, uint64(v))
}

func (out *LittleEndianOutput) WriteDouble(v float64) {
	out.buf = binary.LittleEndian.AppendUint64(out.buf, math.Float64bits(v))
}

func (out *LittleEndianOutput) Write(b []byte) {
	out.buf = append(out.buf, b...)
}

func (out *LittleEndianOutput) Len() int {
	return len(out.buf)
}

func (out *LittleEndianOutput) Bytes() []byte {
	return out.buf
}
