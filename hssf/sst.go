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
	"fmt"
	"strings"

	"github.com/naqvis/poi4go/util"
)

// option flags of a rich extended string
const (
	_rich_text_flag = 0x08
	_ext_rst_flag   = 0x04
)

// FormatRun switches the font from character CharIndex on.
type FormatRun struct {
	CharIndex int
	FontIndex int
}

// UnicodeString is one entry of the shared string table.
type UnicodeString struct {
	Value      string
	FormatRuns []FormatRun
	// ExtRst is the raw phonetic extension block, nil when absent.
	ExtRst []byte
}

func (s *UnicodeString) String() string {
	return s.Value
}

func readUnicodeString(in *recordInput) UnicodeString {
	var s UnicodeString
	nChars := in.ReadUShort()
	flags := in.ReadUByte()
	runs := 0
	if flags&_rich_text_flag != 0 {
		runs = in.ReadUShort()
	}
	extLen := 0
	if flags&_ext_rst_flag != 0 {
		extLen = in.ReadInt()
	}
	s.Value = in.ReadStringChars(nChars, flags&util.UNCOMPRESSED_FLAG == 0)
	for i := 0; i < runs && in.Err() == nil; i++ {
		s.FormatRuns = append(s.FormatRuns, FormatRun{CharIndex: in.ReadUShort(), FontIndex: in.ReadUShort()})
	}
	if extLen < 0 {
		in.err = util.FormatErrorf("shared string %q: negative extension length %d", s.Value, extLen)
		return s
	}
	if flags&_ext_rst_flag != 0 {
		s.ExtRst = in.ReadBytes(extLen)
	}
	return s
}

func (s *UnicodeString) write(out *continuableOutput) error {
	nChars := util.UnicodeLength(s.Value)
	if nChars > 0xFFFF {
		return util.CapacityErrorf("shared string of %d characters, at most 65535 fit", nChars)
	}
	compressed := !util.HasMultibyte(s.Value)
	flags := 0
	header := 3
	if !compressed {
		flags |= util.UNCOMPRESSED_FLAG
	}
	if len(s.FormatRuns) > 0 {
		flags |= _rich_text_flag
		header += 2
	}
	if s.ExtRst != nil {
		flags |= _ext_rst_flag
		header += 4
	}
	// the header and the first character stay together
	first := 0
	if nChars > 0 {
		first = 1
		if !compressed {
			first = 2
		}
	}
	out.writeContinueIfRequired(header + first)
	out.cur.WriteShort(nChars)
	out.cur.WriteUByte(flags)
	if len(s.FormatRuns) > 0 {
		out.cur.WriteShort(len(s.FormatRuns))
	}
	if s.ExtRst != nil {
		out.cur.WriteInt(len(s.ExtRst))
	}
	if err := out.writeStringChars(s.Value, compressed); err != nil {
		return err
	}
	for _, run := range s.FormatRuns {
		out.writeContinueIfRequired(4)
		out.cur.WriteShort(run.CharIndex)
		out.cur.WriteShort(run.FontIndex)
	}
	if s.ExtRst != nil {
		out.writeBytes(s.ExtRst)
	}
	return nil
}

// SSTRecord is the shared string table of a workbook. The table usually
// exceeds one record, so strings continue across CONTINUE records.
type SSTRecord struct {
	// NumStrings counts references from cells, not unique strings.
	NumStrings int
	Strings    []UnicodeString
}

func readSSTRecord(in *recordInput) ([]Record, error) {
	r := &SSTRecord{}
	r.NumStrings = in.ReadInt()
	unique := in.ReadInt()
	if unique < 0 {
		return nil, util.FormatErrorf("shared strings: negative unique count %d", unique)
	}
	for i := 0; i < unique && in.Err() == nil; i++ {
		if in.Available() == 0 {
			// some writers overstate the count
			break
		}
		r.Strings = append(r.Strings, readUnicodeString(in))
	}
	return []Record{r}, nil
}

// AddString appends s unless it is present already and returns its index.
// Every call counts as one more reference.
func (r *SSTRecord) AddString(s string) int {
	r.NumStrings++
	for i := range r.Strings {
		if r.Strings[i].Value == s && len(r.Strings[i].FormatRuns) == 0 && r.Strings[i].ExtRst == nil {
			return i
		}
	}
	r.Strings = append(r.Strings, UnicodeString{Value: s})
	return len(r.Strings) - 1
}

// GetString returns the entry at index, false when out of range.
func (r *SSTRecord) GetString(index int) (UnicodeString, bool) {
	if index < 0 || index >= len(r.Strings) {
		return UnicodeString{}, false
	}
	return r.Strings[index], true
}

func (r *SSTRecord) Sid() uint16 {
	return SST_SID
}

func (r *SSTRecord) Serialize() ([]byte, error) {
	out := newContinuableOutput(SST_SID)
	out.writeInt(r.NumStrings)
	out.writeInt(len(r.Strings))
	for i := range r.Strings {
		if err := r.Strings[i].write(out); err != nil {
			return nil, fmt.Errorf("shared string %d: %w", i, err)
		}
	}
	return out.bytes(), nil
}

func (r *SSTRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[SST] total=%d unique=%d", r.NumStrings, len(r.Strings))
	for i, s := range r.Strings {
		fmt.Fprintf(&sb, "\n    .string_%d = %q", i, s.Value)
	}
	return sb.String()
}
