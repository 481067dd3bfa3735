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
	"testing"

	"github.com/naqvis/poi4go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOpt(t *testing.T, data []byte) *EscherOptRecord {
	t.Helper()
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	opt, ok := r.(*EscherOptRecord)
	require.True(t, ok)
	return opt
}

func TestComplexDataFollowsFixedParts(t *testing.T) {
	opt := NewEscherOptRecord()
	require.NoError(t, opt.AddEscherProperty(NewEscherComplexProperty(GROUPSHAPE_SHAPENAME, []byte("AB"))))
	require.NoError(t, opt.AddEscherProperty(NewEscherSimpleProperty(FILL_FILLCOLOR, 7)))
	require.NoError(t, opt.AddEscherProperty(NewEscherComplexProperty(GROUPSHAPE_DESCRIPTION, []byte("CDE"))))

	want := rec(0x0033, OPT_RECORD,
		prop(GROUPSHAPE_SHAPENAME|0x8000, 2),
		prop(FILL_FILLCOLOR, 7),
		prop(GROUPSHAPE_DESCRIPTION|0x8000, 3),
		[]byte("AB"), []byte("CDE"))
	data := mustSerialize(t, opt)
	assert.Equal(t, want, data)

	parsed := parseOpt(t, data)
	desc, ok := parsed.Lookup(GROUPSHAPE_DESCRIPTION)
	require.True(t, ok)
	assert.Equal(t, []byte("CDE"), desc.(*EscherComplexProperty).GetComplexData())
	assert.Equal(t, 3, parsed.GetInstance())
}

func TestPropertyKinds(t *testing.T) {
	data := rec(0x0033, OPT_RECORD,
		prop(FILL_NOFILLHITTEST, 0x00100010),
		prop(BLIP_BLIPTODISPLAY|0x4000, 1),
		prop(TRANSFORM_ROTATION, -90<<16))
	opt := parseOpt(t, data)
	props := opt.GetEscherProperties()
	require.Len(t, props, 3)

	b, ok := props[0].(*EscherBoolProperty)
	require.True(t, ok)
	assert.True(t, b.IsTrue())
	assert.Equal(t, "fill.nofillhittest", b.GetName())

	blip := props[1].(*EscherSimpleProperty)
	assert.True(t, blip.IsBlipId())
	assert.False(t, blip.IsComplex())
	assert.Equal(t, BLIP_BLIPTODISPLAY, blip.GetPropertyNumber())
	assert.Equal(t, BLIP_BLIPTODISPLAY|0x4000, blip.GetId())

	rotation := props[2].(*EscherSimpleProperty)
	assert.Equal(t, int32(-90<<16), rotation.GetPropertyValue())

	assert.Equal(t, data, mustSerialize(t, opt))
	assert.Equal(t, "unknown.0x0123", PropertyName(0x0123))
}

func TestEditProperties(t *testing.T) {
	opt := NewEscherTertiaryOptRecord()
	require.NoError(t, opt.AddEscherProperty(NewEscherSimpleProperty(LINESTYLE_COLOR, 1)))
	require.NoError(t, opt.AddEscherProperty(NewEscherSimpleProperty(FILL_FILLCOLOR, 2)))
	require.NoError(t, opt.SetEscherProperty(NewEscherSimpleProperty(LINESTYLE_COLOR, 3)))
	require.NoError(t, opt.SetEscherProperty(NewEscherBoolProperty(GROUPSHAPE_PRINT, 0x00010001)))
	require.Len(t, opt.GetEscherProperties(), 3)

	opt.SortProperties()
	numbers := []int{}
	for _, p := range opt.GetEscherProperties() {
		numbers = append(numbers, p.GetPropertyNumber())
	}
	assert.Equal(t, []int{FILL_FILLCOLOR, LINESTYLE_COLOR, GROUPSHAPE_PRINT}, numbers)
	line, _ := opt.Lookup(LINESTYLE_COLOR)
	assert.Equal(t, int32(3), line.(*EscherSimpleProperty).GetPropertyValue())

	assert.True(t, opt.RemoveEscherProperty(FILL_FILLCOLOR))
	assert.False(t, opt.RemoveEscherProperty(FILL_FILLCOLOR))
	assert.Equal(t, 2, opt.GetInstance())

	parsed := parseOpt(t, mustSerialize(t, opt))
	assert.Equal(t, TERTIARY_OPT, parsed.GetRecordId())
	assert.Len(t, parsed.GetEscherProperties(), 2)
}

func TestPropertyLimit(t *testing.T) {
	opt := NewEscherOptRecord()
	for i := 0; i < MAX_PROPERTIES; i++ {
		require.NoError(t, opt.AddEscherProperty(NewEscherSimpleProperty(FILL_FILLCOLOR, int32(i))))
	}
	err := opt.AddEscherProperty(NewEscherSimpleProperty(FILL_FILLCOLOR, 0))
	assert.ErrorIs(t, err, util.ErrCapacity)

	parsed := parseOpt(t, mustSerialize(t, opt))
	assert.Len(t, parsed.GetEscherProperties(), MAX_PROPERTIES)
	last := parsed.GetEscherProperty(MAX_PROPERTIES - 1).(*EscherSimpleProperty)
	assert.Equal(t, int32(MAX_PROPERTIES-1), last.GetPropertyValue())
}

func TestEmptyArrayKeepsZeroLength(t *testing.T) {
	data := rec(0x0013, OPT_RECORD, prop(GEOMETRY_VERTICES|0x8000, 0))
	opt := parseOpt(t, data)
	arr, ok := opt.GetEscherProperty(0).(*EscherArrayProperty)
	require.True(t, ok)
	assert.Zero(t, arr.GetNumberOfElementsInArray())
	assert.Equal(t, PROPERTY_SIZE, arr.GetPropertySize())
	assert.Equal(t, data, mustSerialize(t, opt))
}

func TestConstructedArrayWritesHeader(t *testing.T) {
	opt := NewEscherOptRecord()
	arr := NewEscherArrayProperty(GEOMETRY_SEGMENTINFO, 2)
	require.NoError(t, opt.AddEscherProperty(arr))

	want := rec(0x0013, OPT_RECORD, prop(GEOMETRY_SEGMENTINFO|0x8000, ARRAY_HEADER_SIZE), shorts(0, 0, 2))
	assert.Equal(t, want, mustSerialize(t, opt))

	require.NoError(t, arr.AddElement(shorts(0x4000)))
	require.NoError(t, arr.AddElement(shorts(0xAC00)))
	assert.Equal(t, 2, arr.GetNumberOfElementsInArray())
	assert.Equal(t, 2, arr.GetNumberOfElementsInMemory())
	assert.ErrorIs(t, arr.SetElement(0, []byte{1}), util.ErrCapacity)
	assert.ErrorIs(t, arr.SetElement(5, shorts(1)), util.ErrState)
	assert.ErrorIs(t, arr.SetNumberOfElementsInArray(70000), util.ErrCapacity)

	parsed := parseOpt(t, mustSerialize(t, opt))
	got := parsed.GetEscherProperty(0).(*EscherArrayProperty)
	el, ok := got.GetElement(1)
	require.True(t, ok)
	assert.Equal(t, shorts(0xAC00), el)
	_, ok = got.GetElement(2)
	assert.False(t, ok)
}

func TestArrayLengthWithoutHeader(t *testing.T) {
	// the declared length counts only the elements
	data := rec(0x0013, OPT_RECORD,
		prop(GEOMETRY_VERTICES|0x8000, 8),
		shorts(2, 2, 4),
		ints(0x00010002, 0x00030004))
	opt := parseOpt(t, data)
	arr := opt.GetEscherProperty(0).(*EscherArrayProperty)
	assert.Equal(t, 2, arr.GetNumberOfElementsInArray())
	assert.Equal(t, 4, arr.GetSizeOfElements())
	el, ok := arr.GetElement(1)
	require.True(t, ok)
	assert.Equal(t, ints(0x00030004), el)
	assert.Equal(t, data, mustSerialize(t, opt))
}

func TestArrayNegativeElementSize(t *testing.T) {
	// -16 stores 4 byte elements
	data := rec(0x0013, OPT_RECORD,
		prop(GEOMETRY_SEGMENTINFO|0x8000, 14),
		shorts(2, 2, 0xFFF0),
		ints(7, 8))
	opt := parseOpt(t, data)
	arr := opt.GetEscherProperty(0).(*EscherArrayProperty)
	assert.Equal(t, 4, arr.GetSizeOfElements())
	el, ok := arr.GetElement(0)
	require.True(t, ok)
	assert.Equal(t, ints(7), el)
	assert.Equal(t, data, mustSerialize(t, opt))
}

func TestArrayPastRecord(t *testing.T) {
	data := rec(0x0013, OPT_RECORD,
		prop(GEOMETRY_VERTICES|0x8000, 30),
		shorts(2, 2, 4))
	_, err := ParseRecord(data, nil)
	assert.ErrorIs(t, err, util.ErrFormat)
}
