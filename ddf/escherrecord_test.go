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
	"bytes"
	"testing"

	"github.com/naqvis/poi4go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// rec frames body parts as one escher record.
func rec(options, recordId uint16, body ...[]byte) []byte {
	var payload []byte
	for _, b := range body {
		payload = append(payload, b...)
	}
	out := util.NewLittleEndianOutput(HEADER_SIZE + len(payload))
	out.WriteShort(int(options))
	out.WriteShort(int(recordId))
	out.WriteInt(len(payload))
	out.Write(payload)
	return out.Bytes()
}

func ints(values ...int) []byte {
	out := util.NewLittleEndianOutput(4 * len(values))
	for _, v := range values {
		out.WriteInt(v)
	}
	return out.Bytes()
}

func shorts(values ...int) []byte {
	out := util.NewLittleEndianOutput(2 * len(values))
	for _, v := range values {
		out.WriteShort(v)
	}
	return out.Bytes()
}

// prop is the fixed part of one property.
func prop(id, value int) []byte {
	return append(shorts(id), ints(value)...)
}

func mustSerialize(t *testing.T, r EscherRecord) []byte {
	t.Helper()
	data, err := Serialize(r)
	require.NoError(t, err)
	return data
}

func drawingTree() []byte {
	name := []byte{'a', 0, 'b', 0, 'c', 0, 0, 0}
	opt := rec(0x0033, OPT_RECORD,
		prop(PROTECTION_LOCKAGAINSTGROUP, 0x00040004),
		prop(FILL_FILLCOLOR, 0xFF),
		prop(GROUPSHAPE_SHAPENAME|0x8000, len(name)),
		name)
	sp := rec(0x00C2, SP_RECORD, ints(0x401, FLAG_HAVEANCHOR|FLAG_HASSHAPETYPE))
	spContainer := rec(0x000F, SP_CONTAINER,
		rec(0x0001, SPGR_RECORD, ints(0, 0, 100, 200)),
		sp,
		opt,
		rec(0x0000, CLIENT_ANCHOR, shorts(2, 1, 10, 3, 20, 4, 30, 5, 40)),
		rec(0x0000, CLIENT_DATA),
		rec(0x0000, 0xF123, []byte{1, 2, 3}),
		rec(0x000F, TEXTBOX_RECORD, []byte{9, 8, 7, 6}))
	return rec(0x000F, DG_CONTAINER,
		rec(0x0010, DG_RECORD, ints(3, 0x402)),
		rec(0x000F, SPGR_CONTAINER, spContainer))
}

func TestContainerRoundTrip(t *testing.T) {
	data := drawingTree()
	factory := NewEscherRecordFactory(zaptest.NewLogger(t))
	records, err := ParseRecords(data, factory)
	require.NoError(t, err)
	require.Len(t, records, 1)

	dg, ok := records[0].(*EscherContainerRecord)
	require.True(t, ok)
	assert.Equal(t, DG_CONTAINER, dg.GetRecordId())
	assert.Equal(t, len(data), dg.GetRecordSize())
	require.Len(t, dg.GetChildRecords(), 2)

	dgRecord := dg.GetChildRecords()[0].(*EscherDgRecord)
	assert.Equal(t, 1, dgRecord.GetDrawingGroupId())
	assert.Equal(t, uint32(3), dgRecord.NumShapes)
	assert.Equal(t, uint32(0x402), dgRecord.LastMSOSPID)

	sps := dg.GetRecordsById(SP_CONTAINER)
	require.Len(t, sps, 1)
	children := sps[0].GetChildRecords()
	require.Len(t, children, 7)

	sp := children[1].(*EscherSpRecord)
	assert.Equal(t, 0x0C, sp.GetShapeType())
	assert.Equal(t, uint32(0x401), sp.ShapeId)

	opt := children[2].(*EscherOptRecord)
	require.Len(t, opt.GetEscherProperties(), 3)
	lock, ok := opt.GetEscherProperty(0).(*EscherBoolProperty)
	require.True(t, ok)
	assert.True(t, lock.IsTrue())
	fill, ok := opt.Lookup(FILL_FILLCOLOR)
	require.True(t, ok)
	assert.Equal(t, int32(0xFF), fill.(*EscherSimpleProperty).GetPropertyValue())
	name, ok := opt.Lookup(GROUPSHAPE_SHAPENAME)
	require.True(t, ok)
	assert.Equal(t, "abc", name.(*EscherComplexProperty).StringValue())

	anchor := children[3].(*EscherClientAnchorRecord)
	assert.Equal(t, 1, anchor.Col1)
	assert.Equal(t, 3, anchor.Row1)
	assert.Equal(t, 40, anchor.Dy2)

	assert.IsType(t, &EscherClientDataRecord{}, children[4])
	unknown := children[5].(*UnknownEscherRecord)
	assert.Equal(t, []byte{1, 2, 3}, unknown.Data)
	assert.Equal(t, "Unknown0xF123", unknown.GetRecordName())

	// version 0xF, yet a leaf
	textbox := children[6].(*EscherTextboxRecord)
	assert.Equal(t, 0xF, textbox.GetVersion())
	assert.Equal(t, []byte{9, 8, 7, 6}, textbox.Data)
	assert.Empty(t, textbox.GetChildRecords())

	assert.Equal(t, data, mustSerialize(t, dg))
}

func TestUnknownContainerByVersion(t *testing.T) {
	data := rec(0x000F, 0xF200, rec(0x0000, 0xF201, []byte{5}))
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	c, ok := r.(*EscherContainerRecord)
	require.True(t, ok)
	require.Len(t, c.GetChildRecords(), 1)
	assert.IsType(t, &UnknownEscherRecord{}, c.GetChildRecords()[0])
	assert.Equal(t, data, mustSerialize(t, r))
}

func TestContainerEditing(t *testing.T) {
	c := NewEscherContainerRecord(SP_CONTAINER)
	sp := NewEscherSpRecord(1, 0x400, FLAG_HAVEANCHOR)
	anchor := NewEscherClientAnchorRecord()
	c.AddChildRecord(sp)
	c.AddChildRecord(anchor)
	opt := NewEscherOptRecord()
	c.AddChildBefore(opt, CLIENT_ANCHOR)

	require.Len(t, c.GetChildRecords(), 3)
	assert.Same(t, opt, c.GetChildRecords()[1])
	found, ok := c.GetChildById(SP_RECORD)
	require.True(t, ok)
	assert.Same(t, sp, found)

	assert.True(t, c.RemoveChildRecord(opt))
	assert.False(t, c.RemoveChildRecord(opt))
	_, ok = c.GetChildById(OPT_RECORD)
	assert.False(t, ok)

	parsed, err := ParseRecord(mustSerialize(t, c), nil)
	require.NoError(t, err)
	assert.Len(t, parsed.GetChildRecords(), 2)
	assert.Equal(t, c.GetRecordSize(), parsed.GetRecordSize())
}

func TestMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0x0F, 0x00, 0x02, 0xF0}},
		{"length past data", rec(0x0000, DG_RECORD, ints(1, 2))[:12]},
		{"child past container", func() []byte {
			child := rec(0x0000, DG_RECORD, ints(1, 2))
			data := rec(0x000F, DG_CONTAINER, child)
			// shrink the container so the child no longer fits
			util.PutInt(data, 4, 10)
			return data[:HEADER_SIZE+10]
		}()},
		{"trailing bytes in container", rec(0x000F, DG_CONTAINER, rec(0x0000, CLIENT_DATA), []byte{1, 2, 3, 4})},
		{"wrong fixed size", rec(0x0000, DG_RECORD, ints(1))},
		{"opt length mismatch", rec(0x0013, OPT_RECORD, prop(FILL_FILLCOLOR, 1), []byte{0, 0, 0, 0})},
		{"complex data past record", rec(0x0013, OPT_RECORD, prop(GROUPSHAPE_SHAPENAME|0x8000, 4))},
		{"more properties than bytes", rec(0x0023, OPT_RECORD, prop(FILL_FILLCOLOR, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(tt.data, NewEscherRecordFactory(zaptest.NewLogger(t)))
			assert.ErrorIs(t, err, util.ErrFormat)
		})
	}
}

func TestLeafRecordsRoundTrip(t *testing.T) {
	dgg := NewEscherDggRecord()
	dgg.ShapeIdMax = 0x802
	dgg.NumShapesSaved = 3
	dgg.DrawingsSaved = 1
	dgg.AddCluster(1, 3)

	child := NewEscherChildAnchorRecord()
	child.Dx1, child.Dy1, child.Dx2, child.Dy2 = -5, 10, 500, 1000

	colors := NewEscherSplitMenuColorsRecord()
	colors.Colors = [4]uint32{0x0800000D, 0x0800000C, 0x08000017, 0x100000F7}

	spgr := NewEscherSpgrRecord()
	spgr.RectX2, spgr.RectY2 = 1023, 255

	for _, r := range []EscherRecord{dgg, child, colors, spgr, NewEscherDgRecord(2)} {
		t.Run(r.GetRecordName(), func(t *testing.T) {
			data := mustSerialize(t, r)
			assert.Len(t, data, r.GetRecordSize())
			parsed, err := ParseRecord(data, nil)
			require.NoError(t, err)
			assert.Equal(t, r, parsed)
		})
	}

	data := mustSerialize(t, dgg)
	// the stored cluster count is one more than the clusters present
	assert.Equal(t, 2, util.GetInt(data, HEADER_SIZE+4))
}

func TestShortAnchors(t *testing.T) {
	data := rec(0x0000, CHILD_ANCHOR, shorts(1, 2, 3, 0xFFFF))
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	child := r.(*EscherChildAnchorRecord)
	assert.Equal(t, int32(-1), child.Dy2)
	assert.Equal(t, data, mustSerialize(t, r))

	data = rec(0x0000, CLIENT_ANCHOR, shorts(2, 7))
	r, err = ParseRecord(data, nil)
	require.NoError(t, err)
	anchor := r.(*EscherClientAnchorRecord)
	assert.Zero(t, anchor.Col1)
	assert.Equal(t, shorts(2, 7), anchor.RemainingData)
	assert.Equal(t, data, mustSerialize(t, r))
}

func TestDump(t *testing.T) {
	records, err := ParseRecords(drawingTree(), nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "DgContainer [0xF002]")
	assert.Contains(t, out, "\n  Dg [0xF008] ver=0x0 inst=0x1 size=16 shapes=3")
	assert.Contains(t, out, "\n      Opt [0xF00B]")
	assert.Contains(t, out, "fill.fillcolor (0x0181) = 255")
	assert.Contains(t, out, "ClientTextbox [0xF00D]")
}
