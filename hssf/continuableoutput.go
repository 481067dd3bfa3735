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
	"github.com/naqvis/poi4go/util"
)

// continuableOutput writes a payload that may need CONTINUE records and
// decides where the splits go. Plain values never straddle a split;
// string characters may, with an option byte starting the new segment.
type continuableOutput struct {
	sid      uint16
	segments [][]byte
	cur      *util.LittleEndianOutput
}

func newContinuableOutput(sid uint16) *continuableOutput {
	return &continuableOutput{sid: sid, cur: util.NewLittleEndianOutput(64)}
}

func (o *continuableOutput) available() int {
	return MAX_RECORD_DATA_SIZE - o.cur.Len()
}

// writeContinue closes the current segment.
func (o *continuableOutput) writeContinue() {
	o.segments = append(o.segments, o.cur.Bytes())
	o.cur = util.NewLittleEndianOutput(64)
}

func (o *continuableOutput) writeContinueIfRequired(n int) {
	if o.available() < n {
		o.writeContinue()
	}
}

func (o *continuableOutput) writeUByte(v int) {
	o.writeContinueIfRequired(1)
	o.cur.WriteUByte(v)
}

func (o *continuableOutput) writeShort(v int) {
	o.writeContinueIfRequired(util.SHORT_SIZE)
	o.cur.WriteShort(v)
}

func (o *continuableOutput) writeInt(v int) {
	o.writeContinueIfRequired(util.INT_SIZE)
	o.cur.WriteInt(v)
}

// writeBytes writes opaque data, filling each segment completely.
func (o *continuableOutput) writeBytes(b []byte) {
	for len(b) > 0 {
		if o.available() == 0 {
			o.writeContinue()
		}
		n := min(len(b), o.available())
		o.cur.Write(b[:n])
		b = b[n:]
	}
}

// writeStringChars writes the characters of s in the chosen
// representation. A segment change in the middle starts with the option
// byte.
func (o *continuableOutput) writeStringChars(s string, compressed bool) error {
	data := util.UnicodeLEBytes(s)
	size := util.SHORT_SIZE
	flag := util.UNCOMPRESSED_FLAG
	if compressed {
		b, err := util.CompressedUnicodeBytes(s)
		if err != nil {
			return err
		}
		data, size, flag = b, 1, 0
	}
	for len(data) > 0 {
		n := o.available() / size * size
		if n == 0 {
			o.writeContinue()
			o.cur.WriteUByte(flag)
			continue
		}
		n = min(n, len(data))
		o.cur.Write(data[:n])
		data = data[n:]
	}
	return nil
}

// bytes frames the segments as the record followed by CONTINUE records.
func (o *continuableOutput) bytes() []byte {
	segments := append(o.segments, o.cur.Bytes())
	out := util.NewLittleEndianOutput(0)
	for i, seg := range segments {
		if i == 0 {
			out.WriteShort(int(o.sid))
		} else {
			out.WriteShort(int(CONTINUE_SID))
		}
		out.WriteShort(len(seg))
		out.Write(seg)
	}
	return out.Bytes()
}
