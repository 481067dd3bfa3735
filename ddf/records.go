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
	"github.com/naqvis/poi4go/util"
)

// leafInput returns a reader over the body of the record at offset.
func leafInput(data []byte, offset int) (*util.LittleEndianInput, int, error) {
	_, _, remaining, err := readHeader(data, offset)
	if err != nil {
		return nil, 0, err
	}
	return util.NewLittleEndianInputAt(data, offset+HEADER_SIZE, remaining), remaining, nil
}

// expect checks that a fixed size record declared its size.
func expect(r EscherRecord, remaining, size int) error {
	if remaining != size {
		return util.FormatErrorf("%s declares %d bytes, expected %d", r.GetRecordName(), remaining, size)
	}
	return nil
}

// Shape flags of EscherSpRecord.
const (
	FLAG_GROUP        = 0x0001
	FLAG_CHILD        = 0x0002
	FLAG_PATRIARCH    = 0x0004
	FLAG_DELETED      = 0x0008
	FLAG_OLESHAPE     = 0x0010
	FLAG_HAVEMASTER   = 0x0020
	FLAG_FLIPHORIZ    = 0x0040
	FLAG_FLIPVERT     = 0x0080
	FLAG_CONNECTOR    = 0x0100
	FLAG_HAVEANCHOR   = 0x0200
	FLAG_BACKGROUND   = 0x0400
	FLAG_HASSHAPETYPE = 0x0800
)

// EscherSpRecord identifies a shape. The instance is the shape type.
type EscherSpRecord struct {
	EscherRecordBase
	ShapeId uint32
	Flags   uint32
}

func NewEscherSpRecord(shapeType int, shapeId, flags uint32) *EscherSpRecord {
	r := &EscherSpRecord{ShapeId: shapeId, Flags: flags}
	r.setHeader(0x0002, SP_RECORD)
	r.SetInstance(shapeType)
	return r
}

func (r *EscherSpRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if err := expect(r, remaining, 8); err != nil {
		return 0, err
	}
	r.ShapeId = in.ReadUInt()
	r.Flags = in.ReadUInt()
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherSpRecord) GetRecordSize() int {
	return HEADER_SIZE + 8
}

func (r *EscherSpRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, 8)
	out.WriteInt(int(r.ShapeId))
	out.WriteInt(int(r.Flags))
	return nil
}

func (r *EscherSpRecord) GetShapeType() int {
	return r.GetInstance()
}

// EscherSpgrRecord is the coordinate system of a group shape.
type EscherSpgrRecord struct {
	EscherRecordBase
	RectX1 int32
	RectY1 int32
	RectX2 int32
	RectY2 int32
}

func NewEscherSpgrRecord() *EscherSpgrRecord {
	r := &EscherSpgrRecord{}
	r.setHeader(0x0001, SPGR_RECORD)
	return r
}

func (r *EscherSpgrRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if err := expect(r, remaining, 16); err != nil {
		return 0, err
	}
	r.RectX1 = int32(in.ReadInt())
	r.RectY1 = int32(in.ReadInt())
	r.RectX2 = int32(in.ReadInt())
	r.RectY2 = int32(in.ReadInt())
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherSpgrRecord) GetRecordSize() int {
	return HEADER_SIZE + 16
}

func (r *EscherSpgrRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, 16)
	out.WriteInt(int(r.RectX1))
	out.WriteInt(int(r.RectY1))
	out.WriteInt(int(r.RectX2))
	out.WriteInt(int(r.RectY2))
	return nil
}

// EscherDgRecord counts the shapes of one drawing. The instance is the
// drawing id.
type EscherDgRecord struct {
	EscherRecordBase
	NumShapes   uint32
	LastMSOSPID uint32
}

func NewEscherDgRecord(drawingId int) *EscherDgRecord {
	r := &EscherDgRecord{}
	r.setHeader(0x0000, DG_RECORD)
	r.SetInstance(drawingId)
	return r
}

func (r *EscherDgRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if err := expect(r, remaining, 8); err != nil {
		return 0, err
	}
	r.NumShapes = in.ReadUInt()
	r.LastMSOSPID = in.ReadUInt()
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherDgRecord) GetRecordSize() int {
	return HEADER_SIZE + 8
}

func (r *EscherDgRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, 8)
	out.WriteInt(int(r.NumShapes))
	out.WriteInt(int(r.LastMSOSPID))
	return nil
}

func (r *EscherDgRecord) GetDrawingGroupId() int {
	return r.GetInstance()
}

// FileIdCluster reserves shape ids for one drawing.
type FileIdCluster struct {
	DrawingGroupId  uint32
	NumShapeIdsUsed uint32
}

// EscherDggRecord is the drawing group: shape id bookkeeping shared by
// every drawing of the document.
type EscherDggRecord struct {
	EscherRecordBase
	ShapeIdMax     uint32
	NumShapesSaved uint32
	DrawingsSaved  uint32
	Clusters       []FileIdCluster
}

func NewEscherDggRecord() *EscherDggRecord {
	r := &EscherDggRecord{}
	r.setHeader(0x0000, DGG_RECORD)
	return r
}

func (r *EscherDggRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if remaining < 16 || (remaining-16)%8 != 0 {
		return 0, util.FormatErrorf("%s: %d bytes is not a header plus whole clusters", r.GetRecordName(), remaining)
	}
	r.ShapeIdMax = in.ReadUInt()
	// cluster count plus one, implied by the length
	in.ReadUInt()
	r.NumShapesSaved = in.ReadUInt()
	r.DrawingsSaved = in.ReadUInt()
	r.Clusters = make([]FileIdCluster, (remaining-16)/8)
	for i := range r.Clusters {
		r.Clusters[i] = FileIdCluster{DrawingGroupId: in.ReadUInt(), NumShapeIdsUsed: in.ReadUInt()}
	}
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherDggRecord) GetNumIdClusters() int {
	return len(r.Clusters) + 1
}

// AddCluster records that drawing dgId uses numShapes more ids.
func (r *EscherDggRecord) AddCluster(dgId, numShapes uint32) {
	r.Clusters = append(r.Clusters, FileIdCluster{DrawingGroupId: dgId, NumShapeIdsUsed: numShapes})
}

func (r *EscherDggRecord) GetRecordSize() int {
	return HEADER_SIZE + 16 + 8*len(r.Clusters)
}

func (r *EscherDggRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	out.WriteInt(int(r.ShapeIdMax))
	out.WriteInt(r.GetNumIdClusters())
	out.WriteInt(int(r.NumShapesSaved))
	out.WriteInt(int(r.DrawingsSaved))
	for _, c := range r.Clusters {
		out.WriteInt(int(c.DrawingGroupId))
		out.WriteInt(int(c.NumShapeIdsUsed))
	}
	return nil
}

// EscherClientAnchorRecord anchors a top level shape to host cells: a
// corner cell plus an offset for each side. Some writers store only the
// flag and a partial anchor; those bytes are kept as they are.
type EscherClientAnchorRecord struct {
	EscherRecordBase
	Flag          int
	Col1          int
	Dx1           int
	Row1          int
	Dy1           int
	Col2          int
	Dx2           int
	Row2          int
	Dy2           int
	shortRecord   bool
	RemainingData []byte
}

func NewEscherClientAnchorRecord() *EscherClientAnchorRecord {
	r := &EscherClientAnchorRecord{}
	r.setHeader(0x0000, CLIENT_ANCHOR)
	return r
}

func (r *EscherClientAnchorRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if remaining >= 18 {
		r.Flag = in.ReadUShort()
		r.Col1 = in.ReadUShort()
		r.Dx1 = in.ReadUShort()
		r.Row1 = in.ReadUShort()
		r.Dy1 = in.ReadUShort()
		r.Col2 = in.ReadUShort()
		r.Dx2 = in.ReadUShort()
		r.Row2 = in.ReadUShort()
		r.Dy2 = in.ReadUShort()
	} else {
		r.shortRecord = true
	}
	r.RemainingData = in.ReadRemainder()
	if len(r.RemainingData) == 0 {
		r.RemainingData = nil
	}
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherClientAnchorRecord) GetRecordSize() int {
	size := HEADER_SIZE + len(r.RemainingData)
	if !r.shortRecord {
		size += 18
	}
	return size
}

func (r *EscherClientAnchorRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	if !r.shortRecord {
		for _, v := range []int{r.Flag, r.Col1, r.Dx1, r.Row1, r.Dy1, r.Col2, r.Dx2, r.Row2, r.Dy2} {
			out.WriteShort(v)
		}
	}
	out.Write(r.RemainingData)
	return nil
}

// EscherChildAnchorRecord places a shape inside its group's coordinate
// system. Word writes a short form of four 16 bit values.
type EscherChildAnchorRecord struct {
	EscherRecordBase
	Dx1   int32
	Dy1   int32
	Dx2   int32
	Dy2   int32
	short bool
}

func NewEscherChildAnchorRecord() *EscherChildAnchorRecord {
	r := &EscherChildAnchorRecord{}
	r.setHeader(0x0000, CHILD_ANCHOR)
	return r
}

func (r *EscherChildAnchorRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	switch remaining {
	case 16:
		r.Dx1 = int32(in.ReadInt())
		r.Dy1 = int32(in.ReadInt())
		r.Dx2 = int32(in.ReadInt())
		r.Dy2 = int32(in.ReadInt())
	case 8:
		r.short = true
		r.Dx1 = int32(in.ReadShort())
		r.Dy1 = int32(in.ReadShort())
		r.Dx2 = int32(in.ReadShort())
		r.Dy2 = int32(in.ReadShort())
	default:
		return 0, util.FormatErrorf("%s declares %d bytes, expected 8 or 16", r.GetRecordName(), remaining)
	}
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherChildAnchorRecord) GetRecordSize() int {
	if r.short {
		return HEADER_SIZE + 8
	}
	return HEADER_SIZE + 16
}

func (r *EscherChildAnchorRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	for _, v := range []int32{r.Dx1, r.Dy1, r.Dx2, r.Dy2} {
		if r.short {
			out.WriteShort(int(v))
		} else {
			out.WriteInt(int(v))
		}
	}
	return nil
}

// EscherSplitMenuColorsRecord holds the four most recently used colors.
type EscherSplitMenuColorsRecord struct {
	EscherRecordBase
	Colors [4]uint32
}

func NewEscherSplitMenuColorsRecord() *EscherSplitMenuColorsRecord {
	r := &EscherSplitMenuColorsRecord{}
	r.setHeader(0x0040, SPLIT_MENU_COLORS)
	return r
}

func (r *EscherSplitMenuColorsRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	if err := expect(r, remaining, 16); err != nil {
		return 0, err
	}
	for i := range r.Colors {
		r.Colors[i] = in.ReadUInt()
	}
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherSplitMenuColorsRecord) GetRecordSize() int {
	return HEADER_SIZE + 16
}

func (r *EscherSplitMenuColorsRecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, 16)
	for _, c := range r.Colors {
		out.WriteInt(int(c))
	}
	return nil
}
