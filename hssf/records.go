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
	"math"
	"strings"

	"github.com/naqvis/poi4go/util"
)

const (
	BIFF8_VERSION = 0x0600

	BOF_TYPE_WORKBOOK       = 0x0005
	BOF_TYPE_VB_MODULE      = 0x0006
	BOF_TYPE_WORKSHEET      = 0x0010
	BOF_TYPE_CHART          = 0x0020
	BOF_TYPE_EXCEL_4_MACRO  = 0x0040
	BOF_TYPE_WORKSPACE_FILE = 0x0100

	_bof_build      = 0x10D3
	_bof_build_year = 0x07CC
	_bof_history    = 0x41
	_bof_required   = 0x06

	// regions per MERGECELLS record, the most Excel writes in one record
	_max_merged_regions = 1027
)

// BOFRecord starts a substream: the workbook globals or one sheet.
type BOFRecord struct {
	Version         int
	Type            int
	Build           int
	BuildYear       int
	HistoryBitMask  uint32
	RequiredVersion uint32
}

// NewBOFRecord returns a BIFF8 BOF of the given substream type.
func NewBOFRecord(typ int) *BOFRecord {
	return &BOFRecord{
		Version:         BIFF8_VERSION,
		Type:            typ,
		Build:           _bof_build,
		BuildYear:       _bof_build_year,
		HistoryBitMask:  _bof_history,
		RequiredVersion: _bof_required,
	}
}

func readBOFRecord(in *recordInput) ([]Record, error) {
	r := &BOFRecord{}
	r.Version = in.ReadUShort()
	r.Type = in.ReadUShort()
	// older writers stop after the type or the build fields
	if in.Available() >= 4 {
		r.Build = in.ReadUShort()
		r.BuildYear = in.ReadUShort()
	}
	if in.Available() >= 8 {
		r.HistoryBitMask = in.ReadUInt()
		r.RequiredVersion = in.ReadUInt()
	}
	return []Record{r}, nil
}

func (r *BOFRecord) Sid() uint16 {
	return BOF_SID
}

func (r *BOFRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(16)
	out.WriteShort(r.Version)
	out.WriteShort(r.Type)
	out.WriteShort(r.Build)
	out.WriteShort(r.BuildYear)
	out.WriteInt(int(r.HistoryBitMask))
	out.WriteInt(int(r.RequiredVersion))
	return serializeRecord(BOF_SID, out.Bytes()), nil
}

func (r *BOFRecord) String() string {
	return fmt.Sprintf("[BOF] version=0x%04X type=0x%04X build=0x%04X year=%d history=0x%08X required=0x%08X",
		r.Version, r.Type, r.Build, r.BuildYear, r.HistoryBitMask, r.RequiredVersion)
}

// EOFRecord ends the substream started by the matching BOF.
type EOFRecord struct{}

func readEOFRecord(in *recordInput) ([]Record, error) {
	return []Record{&EOFRecord{}}, nil
}

func (r *EOFRecord) Sid() uint16 {
	return EOF_SID
}

func (r *EOFRecord) Serialize() ([]byte, error) {
	return serializeRecord(EOF_SID, nil), nil
}

func (r *EOFRecord) String() string {
	return "[EOF]"
}

// CodepageRecord names the code page of byte strings in the workbook;
// 1200 means UTF-16.
type CodepageRecord struct {
	Codepage int
}

func readCodepageRecord(in *recordInput) ([]Record, error) {
	return []Record{&CodepageRecord{Codepage: in.ReadUShort()}}, nil
}

func (r *CodepageRecord) Sid() uint16 {
	return CODEPAGE_SID
}

func (r *CodepageRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(2)
	out.WriteShort(r.Codepage)
	return serializeRecord(CODEPAGE_SID, out.Bytes()), nil
}

func (r *CodepageRecord) String() string {
	return fmt.Sprintf("[CODEPAGE] codepage=%d", r.Codepage)
}

// BoundSheetRecord names a sheet and locates its BOF in the stream.
type BoundSheetRecord struct {
	PositionOfBOF uint32
	OptionFlags   int
	SheetName     string
}

func readBoundSheetRecord(in *recordInput) ([]Record, error) {
	r := &BoundSheetRecord{}
	r.PositionOfBOF = in.ReadUInt()
	r.OptionFlags = in.ReadUShort()
	r.SheetName = in.ReadShortUnicodeString()
	return []Record{r}, nil
}

// Hidden reports the visibility bits: 0 visible, 1 hidden, 2 very hidden.
func (r *BoundSheetRecord) Hidden() int {
	return r.OptionFlags & 0x03
}

func (r *BoundSheetRecord) Sid() uint16 {
	return BOUNDSHEET_SID
}

func (r *BoundSheetRecord) Serialize() ([]byte, error) {
	n := util.UnicodeLength(r.SheetName)
	if n > 255 {
		return nil, util.CapacityErrorf("sheet name %q has %d characters, at most 255 fit", r.SheetName, n)
	}
	out := util.NewLittleEndianOutput(8 + 2*n)
	out.WriteInt(int(r.PositionOfBOF))
	out.WriteShort(r.OptionFlags)
	out.WriteUByte(n)
	if util.HasMultibyte(r.SheetName) {
		out.WriteUByte(util.UNCOMPRESSED_FLAG)
		out.Write(util.UnicodeLEBytes(r.SheetName))
	} else {
		out.WriteUByte(0)
		b, err := util.CompressedUnicodeBytes(r.SheetName)
		if err != nil {
			return nil, err
		}
		out.Write(b)
	}
	return serializeRecord(BOUNDSHEET_SID, out.Bytes()), nil
}

func (r *BoundSheetRecord) String() string {
	return fmt.Sprintf("[BOUNDSHEET] bof=0x%08X options=0x%04X name=%q", r.PositionOfBOF, r.OptionFlags, r.SheetName)
}

// CellValueRecord is implemented by every record describing one cell.
type CellValueRecord interface {
	Record
	GetRow() int
	GetColumn() int
	GetXFIndex() int
}

// CellRecord holds the fields every single-cell record starts with.
type CellRecord struct {
	Row     int
	Column  int
	XFIndex int
}

func (c *CellRecord) read(in *recordInput) {
	c.Row = in.ReadUShort()
	c.Column = in.ReadUShort()
	c.XFIndex = in.ReadUShort()
}

func (c *CellRecord) write(out *util.LittleEndianOutput) {
	out.WriteShort(c.Row)
	out.WriteShort(c.Column)
	out.WriteShort(c.XFIndex)
}

func (c *CellRecord) GetRow() int {
	return c.Row
}

func (c *CellRecord) GetColumn() int {
	return c.Column
}

func (c *CellRecord) GetXFIndex() int {
	return c.XFIndex
}

// NumberRecord is a cell holding an IEEE double.
type NumberRecord struct {
	CellRecord
	Value float64
}

func readNumberRecord(in *recordInput) ([]Record, error) {
	r := &NumberRecord{}
	r.read(in)
	r.Value = in.ReadDouble()
	return []Record{r}, nil
}

func (r *NumberRecord) Sid() uint16 {
	return NUMBER_SID
}

func (r *NumberRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(14)
	r.write(out)
	out.WriteDouble(r.Value)
	return serializeRecord(NUMBER_SID, out.Bytes()), nil
}

func (r *NumberRecord) String() string {
	return fmt.Sprintf("[NUMBER] row=%d col=%d xf=%d value=%v", r.Row, r.Column, r.XFIndex, r.Value)
}

// DecodeRK expands the 30 bit RK number encoding. Bit 0 divides the value
// by 100, bit 1 selects a signed integer instead of the top 30 bits of a
// double.
func DecodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

// RKRecord is a cell holding an RK encoded number.
type RKRecord struct {
	CellRecord
	RK uint32
}

func readRKRecord(in *recordInput) ([]Record, error) {
	r := &RKRecord{}
	r.read(in)
	r.RK = in.ReadUInt()
	return []Record{r}, nil
}

func (r *RKRecord) Value() float64 {
	return DecodeRK(r.RK)
}

func (r *RKRecord) Sid() uint16 {
	return RK_SID
}

func (r *RKRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(10)
	r.write(out)
	out.WriteInt(int(r.RK))
	return serializeRecord(RK_SID, out.Bytes()), nil
}

func (r *RKRecord) String() string {
	return fmt.Sprintf("[RK] row=%d col=%d xf=%d value=%v", r.Row, r.Column, r.XFIndex, r.Value())
}

// RKCell is one cell of a MULRK record.
type RKCell struct {
	XFIndex int
	RK      uint32
}

// MulRKRecord holds RK numbers of adjacent cells in one row.
type MulRKRecord struct {
	Row         int
	FirstColumn int
	Cells       []RKCell
}

func parseMulRKRecord(in *recordInput) *MulRKRecord {
	r := &MulRKRecord{}
	r.Row = in.ReadUShort()
	r.FirstColumn = in.ReadUShort()
	n := (in.Available() - 2) / 6
	for i := 0; i < n; i++ {
		xf := in.ReadUShort()
		r.Cells = append(r.Cells, RKCell{XFIndex: xf, RK: in.ReadUInt()})
	}
	// last column, implied by the cell count
	in.ReadUShort()
	return r
}

// readMulRKRecord expands the record into one NUMBER per cell.
func readMulRKRecord(in *recordInput) ([]Record, error) {
	r := parseMulRKRecord(in)
	if in.Err() != nil {
		return nil, in.Err()
	}
	return r.NumberRecords(), nil
}

func (r *MulRKRecord) LastColumn() int {
	return r.FirstColumn + len(r.Cells) - 1
}

// NumberRecords returns the cells in column order.
func (r *MulRKRecord) NumberRecords() []Record {
	recs := make([]Record, len(r.Cells))
	for i, c := range r.Cells {
		recs[i] = &NumberRecord{
			CellRecord: CellRecord{Row: r.Row, Column: r.FirstColumn + i, XFIndex: c.XFIndex},
			Value:      DecodeRK(c.RK),
		}
	}
	return recs
}

func (r *MulRKRecord) Sid() uint16 {
	return MULRK_SID
}

func (r *MulRKRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(6 + 6*len(r.Cells))
	out.WriteShort(r.Row)
	out.WriteShort(r.FirstColumn)
	for _, c := range r.Cells {
		out.WriteShort(c.XFIndex)
		out.WriteInt(int(c.RK))
	}
	out.WriteShort(r.LastColumn())
	return serializeRecord(MULRK_SID, out.Bytes()), nil
}

func (r *MulRKRecord) String() string {
	return fmt.Sprintf("[MULRK] row=%d cols=%d..%d", r.Row, r.FirstColumn, r.LastColumn())
}

// BlankRecord is a formatted cell without a value.
type BlankRecord struct {
	CellRecord
}

func readBlankRecord(in *recordInput) ([]Record, error) {
	r := &BlankRecord{}
	r.read(in)
	return []Record{r}, nil
}

func (r *BlankRecord) Sid() uint16 {
	return BLANK_SID
}

func (r *BlankRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(6)
	r.write(out)
	return serializeRecord(BLANK_SID, out.Bytes()), nil
}

func (r *BlankRecord) String() string {
	return fmt.Sprintf("[BLANK] row=%d col=%d xf=%d", r.Row, r.Column, r.XFIndex)
}

// MulBlankRecord holds the formats of adjacent blank cells in one row.
type MulBlankRecord struct {
	Row         int
	FirstColumn int
	XFIndexes   []int
}

func parseMulBlankRecord(in *recordInput) *MulBlankRecord {
	r := &MulBlankRecord{}
	r.Row = in.ReadUShort()
	r.FirstColumn = in.ReadUShort()
	n := (in.Available() - 2) / 2
	for i := 0; i < n; i++ {
		r.XFIndexes = append(r.XFIndexes, in.ReadUShort())
	}
	in.ReadUShort()
	return r
}

// readMulBlankRecord expands the record into one BLANK per cell.
func readMulBlankRecord(in *recordInput) ([]Record, error) {
	r := parseMulBlankRecord(in)
	if in.Err() != nil {
		return nil, in.Err()
	}
	return r.BlankRecords(), nil
}

func (r *MulBlankRecord) LastColumn() int {
	return r.FirstColumn + len(r.XFIndexes) - 1
}

// BlankRecords returns the cells in column order.
func (r *MulBlankRecord) BlankRecords() []Record {
	recs := make([]Record, len(r.XFIndexes))
	for i, xf := range r.XFIndexes {
		recs[i] = &BlankRecord{CellRecord{Row: r.Row, Column: r.FirstColumn + i, XFIndex: xf}}
	}
	return recs
}

func (r *MulBlankRecord) Sid() uint16 {
	return MULBLANK_SID
}

func (r *MulBlankRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(6 + 2*len(r.XFIndexes))
	out.WriteShort(r.Row)
	out.WriteShort(r.FirstColumn)
	for _, xf := range r.XFIndexes {
		out.WriteShort(xf)
	}
	out.WriteShort(r.LastColumn())
	return serializeRecord(MULBLANK_SID, out.Bytes()), nil
}

func (r *MulBlankRecord) String() string {
	return fmt.Sprintf("[MULBLANK] row=%d cols=%d..%d", r.Row, r.FirstColumn, r.LastColumn())
}

// LabelSSTRecord is a cell holding an index into the shared string table.
type LabelSSTRecord struct {
	CellRecord
	SSTIndex int
}

func readLabelSSTRecord(in *recordInput) ([]Record, error) {
	r := &LabelSSTRecord{}
	r.read(in)
	r.SSTIndex = int(in.ReadUInt())
	return []Record{r}, nil
}

func (r *LabelSSTRecord) Sid() uint16 {
	return LABELSST_SID
}

func (r *LabelSSTRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(10)
	r.write(out)
	out.WriteInt(r.SSTIndex)
	return serializeRecord(LABELSST_SID, out.Bytes()), nil
}

func (r *LabelSSTRecord) String() string {
	return fmt.Sprintf("[LABELSST] row=%d col=%d xf=%d sst=%d", r.Row, r.Column, r.XFIndex, r.SSTIndex)
}

// CellRangeAddress is an inclusive block of cells.
type CellRangeAddress struct {
	FirstRow    int
	LastRow     int
	FirstColumn int
	LastColumn  int
}

func (c CellRangeAddress) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", c.FirstRow, c.FirstColumn, c.LastRow, c.LastColumn)
}

// MergeCellsRecord lists merged regions of a sheet. Serialize writes
// several MERGECELLS records when the list is too long for one.
type MergeCellsRecord struct {
	Regions []CellRangeAddress
}

func readMergeCellsRecord(in *recordInput) ([]Record, error) {
	n := in.ReadUShort()
	if in.Err() == nil && in.Available() < n*8 {
		return nil, util.FormatErrorf("merged cells: %d regions declared, room for %d", n, in.Available()/8)
	}
	r := &MergeCellsRecord{Regions: make([]CellRangeAddress, n)}
	for i := range r.Regions {
		r.Regions[i] = CellRangeAddress{
			FirstRow:    in.ReadUShort(),
			LastRow:     in.ReadUShort(),
			FirstColumn: in.ReadUShort(),
			LastColumn:  in.ReadUShort(),
		}
	}
	return []Record{r}, nil
}

func (r *MergeCellsRecord) Sid() uint16 {
	return MERGECELLS_SID
}

func (r *MergeCellsRecord) Serialize() ([]byte, error) {
	out := util.NewLittleEndianOutput(0)
	regions := r.Regions
	for first := true; first || len(regions) > 0; first = false {
		n := min(len(regions), _max_merged_regions)
		payload := util.NewLittleEndianOutput(2 + 8*n)
		payload.WriteShort(n)
		for _, c := range regions[:n] {
			payload.WriteShort(c.FirstRow)
			payload.WriteShort(c.LastRow)
			payload.WriteShort(c.FirstColumn)
			payload.WriteShort(c.LastColumn)
		}
		out.Write(serializeRecord(MERGECELLS_SID, payload.Bytes()))
		regions = regions[n:]
	}
	return out.Bytes(), nil
}

func (r *MergeCellsRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[MERGEDCELLS] %d regions", len(r.Regions))
	for _, c := range r.Regions {
		sb.WriteString(" ")
		sb.WriteString(c.String())
	}
	return sb.String()
}
