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
	"encoding/binary"
	"math"
)

const (
	BYTE_SIZE   = 1
	SHORT_SIZE  = 2
	INT_SIZE    = 4
	LONG_SIZE   = 8
	DOUBLE_SIZE = 8
)

func GetShort(data []byte, offset int) int16 {
	return int16(binary.LittleEndian.Uint16(data[offset:]))
}

func GetUShort(data []byte, offset int) int {
	return int(binary.LittleEndian.Uint16(data[offset:]))
}

// GetInt reads a signed 32 bit value. Sector sentinels such as 0xFFFFFFFE
// come back negative, which is what the allocation tables expect.
func GetInt(data []byte, offset int) int {
	return int(int32(binary.LittleEndian.Uint32(data[offset:])))
}

func GetUInt(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset:])
}

func GetLong(data []byte, offset int) int64 {
	return int64(binary.LittleEndian.Uint64(data[offset:]))
}

func GetDouble(data []byte, offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
}

func PutShort(data []byte, offset int, value int) {
	binary.LittleEndian.PutUint16(data[offset:], uint16(value))
}

func PutInt(data []byte, offset int, value int) {
	binary.LittleEndian.PutUint32(data[offset:], uint32(value))
}

func PutUInt(data []byte, offset int, value uint32) {
	binary.LittleEndian.PutUint32(data[offset:], value)
}

func PutLong(data []byte, offset int, value int64) {
	binary.LittleEndian.PutUint64(data[offset:], uint64(value))
}

func PutDouble(data []byte, offset int, value float64) {
	binary.LittleEndian.PutUint64(data[offset:], math.Float64bits(value))
}
