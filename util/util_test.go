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

package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsDecodeNegative(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFD, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, -2, GetInt(data, 0))
	assert.Equal(t, -3, GetInt(data, 4))
	assert.Equal(t, uint32(0xFFFFFFFE), GetUInt(data, 0))

	PutInt(data, 0, -1)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, data[:4])
}

func TestLittleEndianInput(t *testing.T) {
	out := NewLittleEndianOutput(32)
	out.WriteUByte(0x81)
	out.WriteShort(-2)
	out.WriteInt(0x01020304)
	out.WriteLong(-5)
	out.WriteDouble(1.5)
	require.Equal(t, 23, out.Len())

	in := NewLittleEndianInput(out.Bytes())
	assert.Equal(t, int8(-127), in.ReadSByte())
	assert.Equal(t, int16(-2), in.ReadShort())
	assert.Equal(t, 0x01020304, in.ReadInt())
	assert.Equal(t, int64(-5), in.ReadLong())
	assert.Equal(t, 1.5, in.ReadDouble())
	assert.Zero(t, in.Available())
	require.NoError(t, in.Err())
}

func TestLittleEndianInputUnderrun(t *testing.T) {
	in := NewLittleEndianInput([]byte{1, 2, 3})
	assert.Equal(t, 0x0201, in.ReadUShort())
	assert.Zero(t, in.ReadInt())
	assert.True(t, errors.Is(in.Err(), ErrFormat))
	// sticky: later reads keep failing even if they would fit
	assert.Zero(t, in.ReadUByte())
	assert.Zero(t, in.Available())
}

func TestLittleEndianInputAtRange(t *testing.T) {
	in := NewLittleEndianInputAt([]byte{1, 2, 3, 4}, 1, 2)
	assert.Equal(t, 2, in.Available())
	assert.Equal(t, []byte{2, 3}, in.ReadRemainder())

	bad := NewLittleEndianInputAt([]byte{1, 2}, 1, 5)
	assert.ErrorIs(t, bad.Err(), ErrFormat)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "café", GetFromCompressedUnicode([]byte{'c', 'a', 'f', 0xE9}, 0, 4))
	assert.Equal(t, "Ab", GetFromUnicodeLE([]byte{'A', 0, 'b', 0}, 0, 2))

	assert.False(t, HasMultibyte("café"))
	assert.True(t, HasMultibyte("中"))
	assert.Equal(t, 2, UnicodeLength("\U0001F600"))

	_, err := CompressedUnicodeBytes("中")
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestUnicodeStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "Sheet1", "café", "中文"} {
		out := NewLittleEndianOutput(16)
		WriteUnicodeString(out, s)
		in := NewLittleEndianInput(out.Bytes())
		assert.Equal(t, s, ReadUnicodeString(in))
		assert.NoError(t, in.Err())
		assert.Zero(t, in.Available())
	}
}

func TestErrorKinds(t *testing.T) {
	err := FormatErrorf("sector %d", 7)
	assert.ErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, ErrState)
	assert.Contains(t, err.Error(), "sector 7")
	assert.ErrorIs(t, StateErrorf("x"), ErrState)
	assert.ErrorIs(t, CapacityErrorf("x"), ErrCapacity)
}
