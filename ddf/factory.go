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

package ddf

import (
	"fmt"

	"github.com/naqvis/poi4go/util"
	"go.uber.org/zap"
)

// recordConstructors maps leaf record ids to their types. It is built once
// and never written afterwards, so factories share it.
var recordConstructors = map[uint16]func() EscherRecord{
	BSE_RECORD:        func() EscherRecord { return &EscherBSERecord{} },
	OPT_RECORD:        func() EscherRecord { return &EscherOptRecord{} },
	TERTIARY_OPT:      func() EscherRecord { return &EscherOptRecord{} },
	CLIENT_ANCHOR:     func() EscherRecord { return &EscherClientAnchorRecord{} },
	DG_RECORD:         func() EscherRecord { return &EscherDgRecord{} },
	SPGR_RECORD:       func() EscherRecord { return &EscherSpgrRecord{} },
	SP_RECORD:         func() EscherRecord { return &EscherSpRecord{} },
	CLIENT_DATA:       func() EscherRecord { return &EscherClientDataRecord{} },
	DGG_RECORD:        func() EscherRecord { return &EscherDggRecord{} },
	SPLIT_MENU_COLORS: func() EscherRecord { return &EscherSplitMenuColorsRecord{} },
	CHILD_ANCHOR:      func() EscherRecord { return &EscherChildAnchorRecord{} },
	TEXTBOX_RECORD:    func() EscherRecord { return &EscherTextboxRecord{} },
}

// EscherRecordFactory creates records by record id.
type EscherRecordFactory struct {
	constructors map[uint16]func() EscherRecord
	log          *zap.Logger
}

// NewEscherRecordFactory returns a factory with the default record types.
func NewEscherRecordFactory(log *zap.Logger) *EscherRecordFactory {
	if log == nil {
		log = zap.L()
	}
	return &EscherRecordFactory{constructors: recordConstructors, log: log}
}

var defaultFactory = NewEscherRecordFactory(nil)

// createRecord picks the record type for the header at offset.
func (f *EscherRecordFactory) createRecord(data []byte, offset int) (EscherRecord, error) {
	options, recordId, _, err := readHeader(data, offset)
	if err != nil {
		return nil, err
	}
	var r EscherRecord
	switch {
	case recordId >= BLIP_START && recordId <= BLIP_END:
		r = newBlipRecord(recordId)
	case f.constructors[recordId] != nil:
		r = f.constructors[recordId]()
	case isContainer(options, recordId):
		r = &EscherContainerRecord{}
	default:
		f.log.Debug("unknown escher record", zap.String("id", fmt.Sprintf("0x%04X", recordId)),
			zap.Int("offset", offset))
		r = &UnknownEscherRecord{}
	}
	r.setHeader(options, recordId)
	return r, nil
}

// parse reads the record at offset and returns it with its size.
func (f *EscherRecordFactory) parse(data []byte, offset int) (EscherRecord, int, error) {
	r, err := f.createRecord(data, offset)
	if err != nil {
		return nil, 0, err
	}
	n, err := r.fillFields(data, offset, f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s at offset %d: %w", r.GetRecordName(), offset, err)
	}
	return r, n, nil
}

// ParseRecords reads consecutive records filling data. A nil factory uses
// the default record types.
func ParseRecords(data []byte, factory *EscherRecordFactory) ([]EscherRecord, error) {
	if factory == nil {
		factory = defaultFactory
	}
	var records []EscherRecord
	for pos := 0; pos < len(data); {
		r, n, err := factory.parse(data, pos)
		if err != nil {
			return records, err
		}
		records = append(records, r)
		pos += n
	}
	return records, nil
}

// ParseRecord reads the single record at the start of data.
func ParseRecord(data []byte, factory *EscherRecordFactory) (EscherRecord, error) {
	if factory == nil {
		factory = defaultFactory
	}
	r, _, err := factory.parse(data, 0)
	return r, err
}

// Serialize returns the bytes of r and its children.
func Serialize(r EscherRecord) ([]byte, error) {
	out := util.NewLittleEndianOutput(r.GetRecordSize())
	if err := r.serialize(out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// SerializeRecords concatenates the bytes of records.
func SerializeRecords(records []EscherRecord) ([]byte, error) {
	out := util.NewLittleEndianOutput(0)
	for _, r := range records {
		if err := r.serialize(out); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
