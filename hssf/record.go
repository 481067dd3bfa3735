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

// Package hssf reads and writes BIFF8 record streams, the content of the
// Workbook stream of an .xls file.
package hssf

import (
	"fmt"
	"io"

	"github.com/naqvis/poi4go/util"
)

const (
	// Largest payload of one physical record; longer payloads are split
	// into CONTINUE records.
	MAX_RECORD_DATA_SIZE = 8224
	RECORD_HEADER_SIZE   = 4

	BOF_SID          uint16 = 0x0809
	EOF_SID          uint16 = 0x000A
	CONTINUE_SID     uint16 = 0x003C
	CODEPAGE_SID     uint16 = 0x0042
	BOUNDSHEET_SID   uint16 = 0x0085
	MULRK_SID        uint16 = 0x00BD
	MULBLANK_SID     uint16 = 0x00BE
	MERGECELLS_SID   uint16 = 0x00E5
	DRAWINGGROUP_SID uint16 = 0x00EB
	DRAWING_SID      uint16 = 0x00EC
	SST_SID          uint16 = 0x00FC
	LABELSST_SID     uint16 = 0x00FD
	EXTSST_SID       uint16 = 0x00FF
	TXO_SID          uint16 = 0x01B6
	BLANK_SID        uint16 = 0x0201
	NUMBER_SID       uint16 = 0x0203
	RK_SID           uint16 = 0x027E
)

// Record is one logical BIFF record, continuations already merged.
type Record interface {
	Sid() uint16
	// Serialize returns the complete physical form: header and payload,
	// split into CONTINUE records where needed.
	Serialize() ([]byte, error)
}

// serializeRecord frames payload, splitting it every MAX_RECORD_DATA_SIZE
// bytes.
func serializeRecord(sid uint16, payload []byte) []byte {
	out := util.NewLittleEndianOutput(len(payload) + RECORD_HEADER_SIZE)
	first := true
	for first || len(payload) > 0 {
		n := min(len(payload), MAX_RECORD_DATA_SIZE)
		if first {
			out.WriteShort(int(sid))
		} else {
			out.WriteShort(int(CONTINUE_SID))
		}
		out.WriteShort(n)
		out.Write(payload[:n])
		payload = payload[n:]
		first = false
	}
	return out.Bytes()
}

// UnknownRecord keeps the payload of a record this package does not decode.
type UnknownRecord struct {
	SID  uint16
	Data []byte
}

func (r *UnknownRecord) Sid() uint16 {
	return r.SID
}

func (r *UnknownRecord) Serialize() ([]byte, error) {
	return serializeRecord(r.SID, r.Data), nil
}

func (r *UnknownRecord) String() string {
	return fmt.Sprintf("[UNKNOWN RECORD 0x%04X] %d bytes", r.SID, len(r.Data))
}

// ContinueRecord is a CONTINUE read on its own: from ReadRecord, or after
// a record whose continuations carry separate data.
type ContinueRecord struct {
	Data []byte
}

func (r *ContinueRecord) Sid() uint16 {
	return CONTINUE_SID
}

func (r *ContinueRecord) Serialize() ([]byte, error) {
	return serializeRecord(CONTINUE_SID, r.Data), nil
}

func (r *ContinueRecord) String() string {
	return fmt.Sprintf("[CONTINUE RECORD] %d bytes", len(r.Data))
}

// SerializeAll concatenates the physical form of records.
func SerializeAll(records []Record) ([]byte, error) {
	out := util.NewLittleEndianOutput(0)
	for _, rec := range records {
		data, err := rec.Serialize()
		if err != nil {
			return nil, fmt.Errorf("record 0x%04X: %w", rec.Sid(), err)
		}
		out.Write(data)
	}
	return out.Bytes(), nil
}

// WriteRecord writes the physical form of rec to w.
func WriteRecord(w io.Writer, rec Record) error {
	data, err := rec.Serialize()
	if err != nil {
		return fmt.Errorf("record 0x%04X: %w", rec.Sid(), err)
	}
	_, err = w.Write(data)
	return err
}
