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

package poifs

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/naqvis/poi4go/util"
)

// FixedField is a value living at a fixed offset of an on-disk structure.
type FixedField interface {
	ReadFromBytes(data []byte)
	WriteToBytes(data []byte)
	String() string
}

type IntegerField struct {
	value, offset int
}

type ShortField struct {
	value  int
	offset int
}

type ByteField struct {
	value  byte
	offset int
}

func NewIntegerFieldFromBytes(offset int, data []byte) *IntegerField {
	f := &IntegerField{offset: offset}
	f.ReadFromBytes(data)
	return f
}

func NewIntegerField(offset, value int, data []byte) *IntegerField {
	f := &IntegerField{offset: offset}
	f.Set(value, data)
	return f
}

func (f *IntegerField) Get() int {
	return f.value
}

func (f *IntegerField) ReadFromBytes(data []byte) {
	f.value = util.GetInt(data, f.offset)
}

func (f *IntegerField) Set(val int, data []byte) {
	f.value = val
	f.WriteToBytes(data)
}

func (f *IntegerField) WriteToBytes(data []byte) {
	util.PutInt(data, f.offset, f.value)
}

func (f *IntegerField) String() string {
	return strconv.Itoa(f.value)
}

func NewShortFieldFromBytes(offset int, data []byte) *ShortField {
	f := &ShortField{offset: offset}
	f.ReadFromBytes(data)
	return f
}

func NewShortField(offset, value int, data []byte) *ShortField {
	f := &ShortField{offset: offset}
	f.Set(value, data)
	return f
}

func (f *ShortField) Get() int {
	return f.value
}

// ReadFromBytes reads the field unsigned.
func (f *ShortField) ReadFromBytes(data []byte) {
	f.value = util.GetUShort(data, f.offset)
}

func (f *ShortField) Set(val int, data []byte) {
	f.value = val
	f.WriteToBytes(data)
}

func (f *ShortField) WriteToBytes(data []byte) {
	util.PutShort(data, f.offset, f.value)
}

func (f *ShortField) String() string {
	return strconv.Itoa(f.value)
}

func NewByteFieldFromBytes(offset int, data []byte) *ByteField {
	f := &ByteField{offset: offset}
	f.ReadFromBytes(data)
	return f
}

func NewByteField(offset int, value byte, data []byte) *ByteField {
	f := &ByteField{offset: offset}
	f.Set(value, data)
	return f
}

func (f *ByteField) Get() byte {
	return f.value
}

func (f *ByteField) ReadFromBytes(data []byte) {
	f.value = data[f.offset]
}

func (f *ByteField) Set(val byte, data []byte) {
	f.value = val
	f.WriteToBytes(data)
}

func (f *ByteField) WriteToBytes(data []byte) {
	data[f.offset] = f.value
}

func (f *ByteField) String() string {
	return strconv.Itoa(int(f.value))
}

// ClassID is a GUID as stored in storages and in the header. On disk the
// first three groups are little-endian; the UUID keeps them in display order.
type ClassID struct {
	uuid.UUID
}

const CLASS_ID_LENGTH = 16

func ClassIDFromBytes(src []byte, offset int) ClassID {
	var cid ClassID
	cid.Read(src, offset)
	return cid
}

func ClassIDFromString(str string) (ClassID, error) {
	u, err := uuid.Parse(strings.Trim(str, "{}"))
	if err != nil {
		return ClassID{}, util.FormatErrorf("invalid class id %q: %v", str, err)
	}
	return ClassID{u}, nil
}

func (cid *ClassID) Read(src []byte, offset int) {
	b := src[offset : offset+CLASS_ID_LENGTH]

	//Read double word
	cid.UUID[0], cid.UUID[1], cid.UUID[2], cid.UUID[3] = b[3], b[2], b[1], b[0]

	//Read first word
	cid.UUID[4], cid.UUID[5] = b[5], b[4]

	//Read second word
	cid.UUID[6], cid.UUID[7] = b[7], b[6]

	copy(cid.UUID[8:], b[8:])
}

func (cid ClassID) Write(dst []byte, offset int) {
	b := dst[offset : offset+CLASS_ID_LENGTH]
	b[0], b[1], b[2], b[3] = cid.UUID[3], cid.UUID[2], cid.UUID[1], cid.UUID[0]
	b[4], b[5] = cid.UUID[5], cid.UUID[4]
	b[6], b[7] = cid.UUID[7], cid.UUID[6]
	copy(b[8:], cid.UUID[8:])
}

func (cid ClassID) IsZero() bool {
	return cid.UUID == uuid.Nil
}

func (cid ClassID) String() string {
	return "{" + strings.ToUpper(cid.UUID.String()) + "}"
}
