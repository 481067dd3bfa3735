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
	"io"

	"go.uber.org/zap"
)

// recordDecoder decodes one logical record. Most decoders return one
// record; MULRK and MULBLANK return one per cell.
type recordDecoder func(in *recordInput) ([]Record, error)

// recordDecoders is built once and only read afterwards. Sids missing
// here decode to *UnknownRecord.
var recordDecoders = map[uint16]recordDecoder{
	BOF_SID:          readBOFRecord,
	EOF_SID:          readEOFRecord,
	CODEPAGE_SID:     readCodepageRecord,
	BOUNDSHEET_SID:   readBoundSheetRecord,
	SST_SID:          readSSTRecord,
	LABELSST_SID:     readLabelSSTRecord,
	NUMBER_SID:       readNumberRecord,
	RK_SID:           readRKRecord,
	MULRK_SID:        readMulRKRecord,
	BLANK_SID:        readBlankRecord,
	MULBLANK_SID:     readMulBlankRecord,
	MERGECELLS_SID:   readMergeCellsRecord,
	DRAWING_SID:      readDrawingRecord,
	DRAWINGGROUP_SID: readDrawingGroupRecord,
}

// RecordName is the short name used in dumps.
func RecordName(sid uint16) string {
	switch sid {
	case BOF_SID:
		return "BOF"
	case EOF_SID:
		return "EOF"
	case CONTINUE_SID:
		return "CONTINUE"
	case CODEPAGE_SID:
		return "CODEPAGE"
	case BOUNDSHEET_SID:
		return "BOUNDSHEET"
	case SST_SID:
		return "SST"
	case EXTSST_SID:
		return "EXTSST"
	case LABELSST_SID:
		return "LABELSST"
	case NUMBER_SID:
		return "NUMBER"
	case RK_SID:
		return "RK"
	case MULRK_SID:
		return "MULRK"
	case BLANK_SID:
		return "BLANK"
	case MULBLANK_SID:
		return "MULBLANK"
	case MERGECELLS_SID:
		return "MERGEDCELLS"
	case DRAWING_SID:
		return "MSODRAWING"
	case DRAWINGGROUP_SID:
		return "MSODRAWINGGROUP"
	case TXO_SID:
		return "TXO"
	}
	return fmt.Sprintf("UNKNOWN(0x%04X)", sid)
}

// ReadRecord decodes the payload of one physical record. A CONTINUE sid
// gives a *ContinueRecord, merging is left to the caller.
func ReadRecord(sid uint16, data []byte) ([]Record, error) {
	if sid == CONTINUE_SID {
		return []Record{&ContinueRecord{Data: data}}, nil
	}
	return decodeRecord(sid, [][]byte{data})
}

func decodeRecord(sid uint16, segments [][]byte) ([]Record, error) {
	in := newRecordInput(sid, segments...)
	decode, ok := recordDecoders[sid]
	if !ok {
		return []Record{&UnknownRecord{SID: sid, Data: in.ReadRemainder()}}, nil
	}
	recs, err := decode(in)
	if err == nil {
		err = in.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%s record: %w", RecordName(sid), err)
	}
	return recs, nil
}

// sids whose CONTINUE records hold separate data and are not merged
var standaloneContinues = map[uint16]bool{
	TXO_SID: true,
}

type pendingRecord struct {
	sid      uint16
	segments [][]byte
}

// RecordFactoryInputStream turns physical records into logical ones:
// CONTINUE payloads are appended to the preceding record, which is only
// decoded once the next non-continue header (or the end) is seen.
//
// Reading stops after the EOF that closes the outermost BOF unless another
// BOF follows directly, so the padding many writers leave at the end of
// the Workbook stream is never parsed.
type RecordFactoryInputStream struct {
	in       *RecordInputStream
	log      *zap.Logger
	pending  *pendingRecord
	unread   []Record
	bofDepth int
	afterEOF bool
	lastSid  uint16
	done     bool
}

func NewRecordFactoryInputStream(r io.Reader, log *zap.Logger) *RecordFactoryInputStream {
	if log == nil {
		log = zap.L()
	}
	return &RecordFactoryInputStream{in: NewRecordInputStream(r, log), log: log}
}

// HasNext reports whether NextRecord has a record to return.
func (f *RecordFactoryInputStream) HasNext() (bool, error) {
	if err := f.fill(); err != nil {
		return false, err
	}
	return len(f.unread) > 0, nil
}

// NextRecord returns the next logical record, io.EOF after the last one.
func (f *RecordFactoryInputStream) NextRecord() (Record, error) {
	ok, err := f.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	rec := f.unread[0]
	f.unread = f.unread[1:]
	return rec, nil
}

func (f *RecordFactoryInputStream) fill() error {
	for len(f.unread) == 0 && !f.done {
		ok, err := f.in.HasNextRecord()
		if err != nil {
			return err
		}
		if !ok {
			f.done = true
			return f.flush()
		}
		if f.afterEOF {
			if f.in.NextSid() != BOF_SID {
				f.log.Debug("ignoring data after the end of the workbook",
					zap.Uint16("sid", f.in.NextSid()))
				f.done = true
				return f.flush()
			}
			f.afterEOF = false
		}
		sid, data, err := f.in.NextRecord()
		if err != nil {
			return err
		}
		if sid == CONTINUE_SID {
			switch {
			case f.pending == nil && !standaloneContinues[f.lastSid]:
				f.log.Debug("dropping continue record without a preceding record",
					zap.Int("bytes", len(data)))
			case f.pending == nil || standaloneContinues[f.pending.sid]:
				if err := f.flush(); err != nil {
					return err
				}
				f.unread = append(f.unread, &ContinueRecord{Data: data})
			default:
				f.pending.segments = append(f.pending.segments, data)
			}
			continue
		}
		if err := f.flush(); err != nil {
			return err
		}
		f.pending = &pendingRecord{sid: sid, segments: [][]byte{data}}
		f.lastSid = sid
		switch sid {
		case BOF_SID:
			f.bofDepth++
		case EOF_SID:
			f.bofDepth--
			if f.bofDepth <= 0 {
				f.bofDepth = 0
				f.afterEOF = true
			}
		}
	}
	return nil
}

// flush decodes the pending record into the unread queue.
func (f *RecordFactoryInputStream) flush() error {
	if f.pending == nil {
		return nil
	}
	p := f.pending
	f.pending = nil
	recs, err := decodeRecord(p.sid, p.segments)
	if err != nil {
		return err
	}
	f.unread = append(f.unread, recs...)
	return nil
}

// CreateRecords reads every logical record of r.
func CreateRecords(r io.Reader, log *zap.Logger) ([]Record, error) {
	f := NewRecordFactoryInputStream(r, log)
	var records []Record
	for {
		rec, err := f.NextRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
