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
	"math"

	"github.com/naqvis/poi4go/util"
)

const (
	// fixed part of every property: id and value or complex length
	PROPERTY_SIZE = 6
	// element count, allocated count and element size before array data
	ARRAY_HEADER_SIZE = 6

	_property_number_mask = 0x3FFF
	_blip_flag            = 0x4000
	_complex_flag         = 0x8000
	_bool_group_mask      = 0x003F
)

// Common property numbers.
const (
	TRANSFORM_ROTATION          = 0x0004
	PROTECTION_LOCKAGAINSTGROUP = 0x007F
	TEXT_TEXTID                 = 0x0080
	BLIP_BLIPTODISPLAY          = 0x0104
	BLIP_BLIPFILENAME           = 0x0105
	GEOMETRY_VERTICES           = 0x0145
	GEOMETRY_SEGMENTINFO        = 0x0146
	GEOMETRY_ADJUSTHANDLES      = 0x0147
	GEOMETRY_GUIDES             = 0x0148
	GEOMETRY_INSCRIBE           = 0x0149
	GEOMETRY_CONNECTIONSITES    = 0x0155
	GEOMETRY_CONNECTIONSITESDIR = 0x0156
	FILL_FILLCOLOR              = 0x0181
	FILL_SHADECOLORS            = 0x0197
	FILL_NOFILLHITTEST          = 0x01BF
	LINESTYLE_COLOR             = 0x01C0
	LINESTYLE_LINEDASHSTYLE     = 0x01CF
	LINESTYLE_NOLINEDRAWDASH    = 0x01FF
	SHADOWSTYLE_COLOR           = 0x0201
	SHAPE_BACKGROUNDSHAPE       = 0x033F
	GROUPSHAPE_SHAPENAME        = 0x0380
	GROUPSHAPE_DESCRIPTION      = 0x0381
	GROUPSHAPE_WRAPPOLYGON      = 0x0383
	GROUPSHAPE_PRINT            = 0x03BF
)

var propertyNames = map[int]string{
	TRANSFORM_ROTATION:          "transform.rotation",
	PROTECTION_LOCKAGAINSTGROUP: "protection.lockagainstgrouping",
	TEXT_TEXTID:                 "text.textid",
	BLIP_BLIPTODISPLAY:          "blip.bliptodisplay",
	BLIP_BLIPFILENAME:           "blip.blipfilename",
	GEOMETRY_VERTICES:           "geometry.vertices",
	GEOMETRY_SEGMENTINFO:        "geometry.segmentinfo",
	GEOMETRY_ADJUSTHANDLES:      "geometry.adjusthandles",
	GEOMETRY_GUIDES:             "geometry.guides",
	GEOMETRY_INSCRIBE:           "geometry.inscribe",
	GEOMETRY_CONNECTIONSITES:    "geometry.connectionsites",
	GEOMETRY_CONNECTIONSITESDIR: "geometry.connectionsitesdir",
	FILL_FILLCOLOR:              "fill.fillcolor",
	FILL_SHADECOLORS:            "fill.shadecolors",
	FILL_NOFILLHITTEST:          "fill.nofillhittest",
	LINESTYLE_COLOR:             "linestyle.color",
	LINESTYLE_LINEDASHSTYLE:     "linestyle.linedashstyle",
	LINESTYLE_NOLINEDRAWDASH:    "linestyle.nolinedrawdash",
	SHADOWSTYLE_COLOR:           "shadowstyle.color",
	SHAPE_BACKGROUNDSHAPE:       "shape.backgroundshape",
	GROUPSHAPE_SHAPENAME:        "groupshape.shapename",
	GROUPSHAPE_DESCRIPTION:      "groupshape.description",
	GROUPSHAPE_WRAPPOLYGON:      "groupshape.wrappolygonvertices",
	GROUPSHAPE_PRINT:            "groupshape.print",
}

// property numbers whose complex data is an array with its own header
var arrayProperties = map[int]bool{
	GEOMETRY_VERTICES:           true,
	GEOMETRY_SEGMENTINFO:        true,
	GEOMETRY_ADJUSTHANDLES:      true,
	GEOMETRY_GUIDES:             true,
	GEOMETRY_INSCRIBE:           true,
	GEOMETRY_CONNECTIONSITES:    true,
	GEOMETRY_CONNECTIONSITESDIR: true,
	FILL_SHADECOLORS:            true,
	LINESTYLE_LINEDASHSTYLE:     true,
	GROUPSHAPE_WRAPPOLYGON:      true,
}

// PropertyName returns the name of a property number.
func PropertyName(number int) string {
	if name, ok := propertyNames[number]; ok {
		return name
	}
	return fmt.Sprintf("unknown.0x%04X", number)
}

// EscherProperty is one entry of an opt record.
type EscherProperty interface {
	// GetId is the full 16 bit id: number plus the blip and complex flags.
	GetId() int
	GetPropertyNumber() int
	IsComplex() bool
	IsBlipId() bool
	GetName() string
	// GetPropertySize is the fixed part plus the complex data.
	GetPropertySize() int

	serializeSimplePart(out *util.LittleEndianOutput)
	serializeComplexPart(out *util.LittleEndianOutput)
}

type propertyBase struct {
	id int
}

func (p *propertyBase) GetId() int {
	return p.id
}

func (p *propertyBase) GetPropertyNumber() int {
	return p.id & _property_number_mask
}

func (p *propertyBase) IsComplex() bool {
	return p.id&_complex_flag != 0
}

func (p *propertyBase) IsBlipId() bool {
	return p.id&_blip_flag != 0
}

func (p *propertyBase) GetName() string {
	return PropertyName(p.GetPropertyNumber())
}

// EscherSimpleProperty stores its value in the fixed part.
type EscherSimpleProperty struct {
	propertyBase
	value int32
}

func NewEscherSimpleProperty(number int, value int32) *EscherSimpleProperty {
	return &EscherSimpleProperty{propertyBase{number & _property_number_mask}, value}
}

// NewEscherBlipProperty references an entry of the blip store.
func NewEscherBlipProperty(number int, blipIndex int32) *EscherSimpleProperty {
	return &EscherSimpleProperty{propertyBase{number&_property_number_mask | _blip_flag}, blipIndex}
}

func (p *EscherSimpleProperty) GetPropertyValue() int32 {
	return p.value
}

func (p *EscherSimpleProperty) SetPropertyValue(v int32) {
	p.value = v
}

func (p *EscherSimpleProperty) GetPropertySize() int {
	return PROPERTY_SIZE
}

func (p *EscherSimpleProperty) serializeSimplePart(out *util.LittleEndianOutput) {
	out.WriteShort(p.id)
	out.WriteInt(int(p.value))
}

func (p *EscherSimpleProperty) serializeComplexPart(*util.LittleEndianOutput) {}

func (p *EscherSimpleProperty) String() string {
	return fmt.Sprintf("%s (0x%04X) = %d", p.GetName(), p.id, p.value)
}

// EscherBoolProperty is a group of boolean flags. The low 16 bits hold
// the values, the high 16 bits mark which values are set.
type EscherBoolProperty struct {
	EscherSimpleProperty
}

func NewEscherBoolProperty(number int, value int32) *EscherBoolProperty {
	return &EscherBoolProperty{*NewEscherSimpleProperty(number, value)}
}

func (p *EscherBoolProperty) IsTrue() bool {
	return p.value != 0
}

// EscherComplexProperty keeps a variable length value after the fixed
// parts of all properties.
type EscherComplexProperty struct {
	propertyBase
	data []byte
}

func NewEscherComplexProperty(number int, data []byte) *EscherComplexProperty {
	return &EscherComplexProperty{propertyBase{number&_property_number_mask | _complex_flag}, data}
}

func (p *EscherComplexProperty) GetComplexData() []byte {
	return p.data
}

func (p *EscherComplexProperty) SetComplexData(data []byte) {
	p.data = data
}

func (p *EscherComplexProperty) GetPropertySize() int {
	return PROPERTY_SIZE + len(p.data)
}

func (p *EscherComplexProperty) serializeSimplePart(out *util.LittleEndianOutput) {
	out.WriteShort(p.id)
	out.WriteInt(len(p.data))
}

func (p *EscherComplexProperty) serializeComplexPart(out *util.LittleEndianOutput) {
	out.Write(p.data)
}

// StringValue decodes the complex data as a NUL terminated UTF-16 string,
// the form of shape names and descriptions.
func (p *EscherComplexProperty) StringValue() string {
	n := len(p.data) / util.SHORT_SIZE
	s := util.GetFromUnicodeLE(p.data, 0, n)
	for i, r := range s {
		if r == 0 {
			return s[:i]
		}
	}
	return s
}

func (p *EscherComplexProperty) String() string {
	return fmt.Sprintf("%s (0x%04X) = %d bytes", p.GetName(), p.id, len(p.data))
}

// EscherArrayProperty is a complex property holding fixed size elements.
// The complex data starts with a 6 byte header: element count, allocated
// element count and element size. A negative element size stores the
// actual size times -4.
type EscherArrayProperty struct {
	propertyBase
	data []byte

	// the declared length did not count the array header
	sizeExcludesHeader bool

	// the declared length was 0, which writes no header at all
	emptyComplexPart bool
}

// NewEscherArrayProperty returns an empty array of elements of
// elementSize bytes.
func NewEscherArrayProperty(number int, elementSize int) *EscherArrayProperty {
	p := &EscherArrayProperty{propertyBase: propertyBase{number&_property_number_mask | _complex_flag}}
	p.data = make([]byte, ARRAY_HEADER_SIZE)
	util.PutShort(p.data, 4, elementSize)
	return p
}

func actualElementSize(stored int16) int {
	if stored < 0 {
		return -int(stored) >> 2
	}
	return int(stored)
}

// setArrayData reads the complex data of an array whose fixed part
// declared length bytes.
func (p *EscherArrayProperty) setArrayData(data []byte, offset, length int) (int, error) {
	if length == 0 {
		p.emptyComplexPart = true
		p.data = nil
		return 0, nil
	}
	if offset+ARRAY_HEADER_SIZE > len(data) {
		return 0, util.FormatErrorf("%s: array header runs past the record", p.GetName())
	}
	count := util.GetUShort(data, offset)
	size := actualElementSize(util.GetShort(data, offset+4))
	arraySize := count * size
	total := length
	if length == arraySize {
		p.sizeExcludesHeader = true
		total = length + ARRAY_HEADER_SIZE
	} else if length < ARRAY_HEADER_SIZE {
		return 0, util.FormatErrorf("%s: %d bytes can not hold the array header", p.GetName(), length)
	}
	if offset+total > len(data) {
		return 0, util.FormatErrorf("%s: %d bytes of array data run past the record", p.GetName(), total)
	}
	p.data = append([]byte(nil), data[offset:offset+total]...)
	return total, nil
}

func (p *EscherArrayProperty) GetNumberOfElementsInArray() int {
	if len(p.data) < ARRAY_HEADER_SIZE {
		return 0
	}
	return util.GetUShort(p.data, 0)
}

func (p *EscherArrayProperty) GetNumberOfElementsInMemory() int {
	if len(p.data) < ARRAY_HEADER_SIZE {
		return 0
	}
	return util.GetUShort(p.data, 2)
}

func (p *EscherArrayProperty) GetSizeOfElements() int {
	if len(p.data) < ARRAY_HEADER_SIZE {
		return 0
	}
	return actualElementSize(util.GetShort(p.data, 4))
}

// SetNumberOfElementsInArray resizes the array, keeping the elements that
// still fit and zeroing new ones.
func (p *EscherArrayProperty) SetNumberOfElementsInArray(n int) error {
	if n < 0 || n > math.MaxUint16 {
		return util.CapacityErrorf("%s: %d elements, at most %d fit", p.GetName(), n, math.MaxUint16)
	}
	if len(p.data) < ARRAY_HEADER_SIZE {
		p.data = make([]byte, ARRAY_HEADER_SIZE)
	}
	size := p.GetSizeOfElements()
	total := ARRAY_HEADER_SIZE + n*size
	if total > math.MaxInt32 {
		return util.CapacityErrorf("%s: %d elements of %d bytes overflow the property", p.GetName(), n, size)
	}
	data := make([]byte, total)
	copy(data, p.data)
	util.PutShort(data, 0, n)
	util.PutShort(data, 2, n)
	p.data = data
	p.emptyComplexPart = false
	return nil
}

// GetElement returns a copy of element i, false when out of range.
func (p *EscherArrayProperty) GetElement(i int) ([]byte, bool) {
	size := p.GetSizeOfElements()
	start := ARRAY_HEADER_SIZE + i*size
	if i < 0 || i >= p.GetNumberOfElementsInArray() || start+size > len(p.data) {
		return nil, false
	}
	return append([]byte(nil), p.data[start:start+size]...), true
}

// SetElement overwrites element i; element must be the element size.
func (p *EscherArrayProperty) SetElement(i int, element []byte) error {
	size := p.GetSizeOfElements()
	if len(element) != size {
		return util.CapacityErrorf("%s: element of %d bytes, elements are %d", p.GetName(), len(element), size)
	}
	start := ARRAY_HEADER_SIZE + i*size
	if i < 0 || i >= p.GetNumberOfElementsInArray() || start+size > len(p.data) {
		return util.StateErrorf("%s: element %d out of range", p.GetName(), i)
	}
	copy(p.data[start:], element)
	return nil
}

// AddElement appends element, growing the array by one.
func (p *EscherArrayProperty) AddElement(element []byte) error {
	n := p.GetNumberOfElementsInArray()
	if err := p.SetNumberOfElementsInArray(n + 1); err != nil {
		return err
	}
	return p.SetElement(n, element)
}

func (p *EscherArrayProperty) GetComplexData() []byte {
	return p.data
}

func (p *EscherArrayProperty) GetPropertySize() int {
	return PROPERTY_SIZE + len(p.data)
}

func (p *EscherArrayProperty) serializeSimplePart(out *util.LittleEndianOutput) {
	out.WriteShort(p.id)
	length := len(p.data)
	if p.sizeExcludesHeader && length >= ARRAY_HEADER_SIZE {
		length -= ARRAY_HEADER_SIZE
	}
	out.WriteInt(length)
}

func (p *EscherArrayProperty) serializeComplexPart(out *util.LittleEndianOutput) {
	out.Write(p.data)
}

func (p *EscherArrayProperty) String() string {
	return fmt.Sprintf("%s (0x%04X) = %d elements of %d bytes", p.GetName(), p.id,
		p.GetNumberOfElementsInArray(), p.GetSizeOfElements())
}

// readProperties reads count properties: all fixed parts first, then the
// complex data of each complex property in the same order.
func readProperties(data []byte, offset, count int) ([]EscherProperty, int, error) {
	pos := offset
	if pos+count*PROPERTY_SIZE > len(data) {
		return nil, 0, util.FormatErrorf("%d properties need %d bytes, %d available",
			count, count*PROPERTY_SIZE, len(data)-pos)
	}
	props := make([]EscherProperty, count)
	lengths := make([]int, count)
	for i := range props {
		id := util.GetUShort(data, pos)
		value := util.GetInt(data, pos+2)
		number := id & _property_number_mask
		pos += PROPERTY_SIZE
		switch {
		case id&_complex_flag == 0 && number&_bool_group_mask == _bool_group_mask:
			props[i] = &EscherBoolProperty{EscherSimpleProperty{propertyBase{id}, int32(value)}}
		case id&_complex_flag == 0:
			props[i] = &EscherSimpleProperty{propertyBase{id}, int32(value)}
		case arrayProperties[number]:
			props[i] = &EscherArrayProperty{propertyBase: propertyBase{id}}
			lengths[i] = int(uint32(value))
		default:
			props[i] = &EscherComplexProperty{propertyBase: propertyBase{id}}
			lengths[i] = int(uint32(value))
		}
	}
	for i, p := range props {
		switch p := p.(type) {
		case *EscherArrayProperty:
			n, err := p.setArrayData(data, pos, lengths[i])
			if err != nil {
				return nil, 0, err
			}
			pos += n
		case *EscherComplexProperty:
			if lengths[i] > len(data)-pos {
				return nil, 0, util.FormatErrorf("%s: %d bytes of complex data, %d available",
					p.GetName(), lengths[i], len(data)-pos)
			}
			p.data = append([]byte(nil), data[pos:pos+lengths[i]]...)
			pos += lengths[i]
		}
	}
	return props, pos - offset, nil
}
