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

// Package ddf reads and writes Escher (Office Drawing) records, the
// drawing layer embedded in .xls, .doc and .ppt files.
package ddf

import (
	"fmt"

	"github.com/naqvis/poi4go/util"
)

const (
	HEADER_SIZE = 8

	DGG_CONTAINER     uint16 = 0xF000
	BSTORE_CONTAINER  uint16 = 0xF001
	DG_CONTAINER      uint16 = 0xF002
	SPGR_CONTAINER    uint16 = 0xF003
	SP_CONTAINER      uint16 = 0xF004
	SOLVER_CONTAINER  uint16 = 0xF005
	DGG_RECORD        uint16 = 0xF006
	BSE_RECORD        uint16 = 0xF007
	DG_RECORD         uint16 = 0xF008
	SPGR_RECORD       uint16 = 0xF009
	SP_RECORD         uint16 = 0xF00A
	OPT_RECORD        uint16 = 0xF00B
	TEXTBOX_RECORD    uint16 = 0xF00D
	CHILD_ANCHOR      uint16 = 0xF00F
	CLIENT_ANCHOR     uint16 = 0xF010
	CLIENT_DATA       uint16 = 0xF011
	BLIP_START        uint16 = 0xF018
	BLIP_EMF          uint16 = 0xF01A
	BLIP_WMF          uint16 = 0xF01B
	BLIP_PICT         uint16 = 0xF01C
	BLIP_JPEG         uint16 = 0xF01D
	BLIP_PNG          uint16 = 0xF01E
	BLIP_DIB          uint16 = 0xF01F
	BLIP_TIFF         uint16 = 0xF029
	BLIP_JPEG_CMYK    uint16 = 0xF02A
	BLIP_END          uint16 = 0xF117
	SPLIT_MENU_COLORS uint16 = 0xF11E
	TERTIARY_OPT      uint16 = 0xF122

	_container_version = 0x000F
)

// EscherRecord is one node of an escher tree. Every record starts with an
// 8 byte header: options (version in the low 4 bits, instance in the high
// 12), record id and the length of what follows.
type EscherRecord interface {
	GetRecordId() uint16
	GetOptions() uint16
	GetVersion() int
	GetInstance() int
	// GetRecordSize is the serialized size, header included.
	GetRecordSize() int
	GetChildRecords() []EscherRecord
	GetRecordName() string

	setHeader(options, recordId uint16)
	// fillFields parses the record whose header starts at offset and
	// returns the number of bytes used, header included.
	fillFields(data []byte, offset int, factory *EscherRecordFactory) (int, error)
	serialize(out *util.LittleEndianOutput) error
}

// EscherRecordBase holds the header fields shared by every record.
type EscherRecordBase struct {
	options  uint16
	recordId uint16
}

func (b *EscherRecordBase) setHeader(options, recordId uint16) {
	b.options = options
	b.recordId = recordId
}

func (b *EscherRecordBase) GetRecordId() uint16 {
	return b.recordId
}

func (b *EscherRecordBase) SetRecordId(id uint16) {
	b.recordId = id
}

func (b *EscherRecordBase) GetOptions() uint16 {
	return b.options
}

func (b *EscherRecordBase) SetOptions(options uint16) {
	b.options = options
}

func (b *EscherRecordBase) GetVersion() int {
	return int(b.options & 0x000F)
}

func (b *EscherRecordBase) SetVersion(v int) {
	b.options = b.options&^0x000F | uint16(v&0x000F)
}

func (b *EscherRecordBase) GetInstance() int {
	return int(b.options >> 4)
}

func (b *EscherRecordBase) SetInstance(i int) {
	b.options = b.options&0x000F | uint16(i<<4)
}

func (b *EscherRecordBase) GetChildRecords() []EscherRecord {
	return nil
}

func (b *EscherRecordBase) GetRecordName() string {
	return RecordName(b.recordId)
}

func (b *EscherRecordBase) writeHeader(out *util.LittleEndianOutput, remaining int) {
	out.WriteShort(int(b.options))
	out.WriteShort(int(b.recordId))
	out.WriteInt(remaining)
}

// readHeader returns the options, the record id and the number of bytes
// after the header. The length is checked against data.
func readHeader(data []byte, offset int) (uint16, uint16, int, error) {
	if offset < 0 || offset+HEADER_SIZE > len(data) {
		return 0, 0, 0, util.FormatErrorf("escher header at offset %d: only %d bytes left", offset, len(data)-offset)
	}
	options := uint16(util.GetUShort(data, offset))
	recordId := uint16(util.GetUShort(data, offset+2))
	remaining := util.GetInt(data, offset+4)
	if remaining < 0 || remaining > len(data)-offset-HEADER_SIZE {
		return 0, 0, 0, util.FormatErrorf("%s at offset %d declares %d bytes, %d available",
			RecordName(recordId), offset, remaining, len(data)-offset-HEADER_SIZE)
	}
	return options, recordId, remaining, nil
}

// isContainer reports whether a record with this header holds children.
// The client textbox carries version 0xF but is a leaf.
func isContainer(options, recordId uint16) bool {
	if recordId >= DGG_CONTAINER && recordId <= SOLVER_CONTAINER {
		return true
	}
	return recordId != TEXTBOX_RECORD && options&0x000F == _container_version
}

var recordNames = map[uint16]string{
	DGG_CONTAINER:     "DggContainer",
	BSTORE_CONTAINER:  "BStoreContainer",
	DG_CONTAINER:      "DgContainer",
	SPGR_CONTAINER:    "SpgrContainer",
	SP_CONTAINER:      "SpContainer",
	SOLVER_CONTAINER:  "SolverContainer",
	DGG_RECORD:        "Dgg",
	BSE_RECORD:        "BSE",
	DG_RECORD:         "Dg",
	SPGR_RECORD:       "Spgr",
	SP_RECORD:         "Sp",
	OPT_RECORD:        "Opt",
	TEXTBOX_RECORD:    "ClientTextbox",
	CHILD_ANCHOR:      "ChildAnchor",
	CLIENT_ANCHOR:     "ClientAnchor",
	CLIENT_DATA:       "ClientData",
	BLIP_EMF:          "BlipEmf",
	BLIP_WMF:          "BlipWmf",
	BLIP_PICT:         "BlipPict",
	BLIP_JPEG:         "BlipJpeg",
	BLIP_PNG:          "BlipPng",
	BLIP_DIB:          "BlipDib",
	BLIP_TIFF:         "BlipTiff",
	BLIP_JPEG_CMYK:    "BlipJpegCmyk",
	SPLIT_MENU_COLORS: "SplitMenuColors",
	TERTIARY_OPT:      "TertiaryOpt",
}

// RecordName is the short name of a record id.
func RecordName(recordId uint16) string {
	if name, ok := recordNames[recordId]; ok {
		return name
	}
	if recordId >= BLIP_START && recordId <= BLIP_END {
		return fmt.Sprintf("Blip0x%04X", recordId)
	}
	return fmt.Sprintf("Unknown0x%04X", recordId)
}

// rawRecord is the base of leaf records whose payload is opaque.
type rawRecord struct {
	EscherRecordBase
	Data []byte
}

func (r *rawRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	_, _, remaining, err := readHeader(data, offset)
	if err != nil {
		return 0, err
	}
	r.Data = append([]byte(nil), data[offset+HEADER_SIZE:offset+HEADER_SIZE+remaining]...)
	return HEADER_SIZE + remaining, nil
}

func (r *rawRecord) GetRecordSize() int {
	return HEADER_SIZE + len(r.Data)
}

func (r *rawRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, len(r.Data))
	out.Write(r.Data)
	return nil
}

// UnknownEscherRecord keeps a leaf record this package does not decode.
type UnknownEscherRecord struct {
	rawRecord
}

// EscherClientDataRecord holds data owned by the host application, the
// OBJ record in a spreadsheet for example.
type EscherClientDataRecord struct {
	rawRecord
}

func NewEscherClientDataRecord() *EscherClientDataRecord {
	r := &EscherClientDataRecord{}
	r.recordId = CLIENT_DATA
	return r
}

// EscherTextboxRecord holds the text of a shape as host records.
type EscherTextboxRecord struct {
	rawRecord
}

func NewEscherTextboxRecord() *EscherTextboxRecord {
	r := &EscherTextboxRecord{}
	r.recordId = TEXTBOX_RECORD
	return r
}
