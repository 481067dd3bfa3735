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
	"encoding/binary"
	"io"

	"github.com/naqvis/poi4go/util"
)

const (
	// useful offsets
	_signature_offset        = 0
	_minor_version_offset    = 0x18
	_major_version_offset    = 0x1A
	_byte_order_offset       = 0x1C
	_sector_shift_offset     = 0x1E
	_mini_sector_shift       = 0x20
	_dir_count_offset        = 0x28
	_bat_count_offset        = 0x2C
	_property_start_offset   = 0x30
	_mini_cutoff_offset      = 0x38
	_sbat_start_offset       = 0x3C
	_sbat_block_count_offset = 0x40
	_xbat_start_offset       = 0x44
	_xbat_count_offset       = 0x48
	_bat_array_offset        = 0x4c

	_header_size = SMALLER_BIG_BLOCK_SIZE
)

var (
	_max_bats_in_header = (SMALLER_BIG_BLOCK_SIZE - _bat_array_offset) / util.INT_SIZE // If 4k blocks, rest is blank
)

// HeaderBlock is the 512 byte preamble of a compound file.
type HeaderBlock struct {
	bigBlockSize   POIFSBigBlockSize
	bat_count      int
	property_start int
	sbat_start     int
	sbat_count     int
	xbat_start     int
	xbat_count     int
	dir_count      int
	data           []byte
}

//Create Header Block initialized with default values
func NewHeaderBlock(bigBlockSize POIFSBigBlockSize) *HeaderBlock {
	h := new(HeaderBlock)
	h.bigBlockSize = bigBlockSize

	// Set all default values. Out data is always 512 no matter what
	h.data = make([]byte, _header_size)
	for i := 0; i < len(h.data); i++ {
		h.data[i] = byte(0xFF)
	}
	binary.LittleEndian.PutUint64(h.data, SIGNATURE)
	// class id is zero
	for i := 0x08; i < _minor_version_offset; i++ {
		h.data[i] = 0
	}
	major := 3
	if bigBlockSize.BigBlockSize == LARGER_BIG_BLOCK_SIZE {
		major = 4
	}
	NewShortField(_minor_version_offset, 0x3E, h.data)
	NewShortField(_major_version_offset, major, h.data)
	NewShortField(_byte_order_offset, BYTE_ORDER_MARK, h.data)
	NewShortField(_sector_shift_offset, int(bigBlockSize.HeaderValue), h.data)
	NewShortField(_mini_sector_shift, SMALL_BLOCK_SHIFT, h.data)
	NewShortField(0x22, 0, h.data)
	NewIntegerField(0x24, 0, h.data)
	NewIntegerField(0x34, 0, h.data)
	NewIntegerField(_mini_cutoff_offset, BIG_BLOCK_MINIMUM_DOCUMENT_SIZE, h.data)

	// Initialize the variables
	h.property_start = END_OF_CHAIN
	h.sbat_start = END_OF_CHAIN
	h.xbat_start = END_OF_CHAIN
	return h
}

func newHeaderBlockFromBytes(data []byte) (*HeaderBlock, error) {
	if len(data) < _header_size {
		return nil, util.FormatErrorf("header: %d bytes read, expected %d", len(data), _header_size)
	}
	hb := &HeaderBlock{data: data[:_header_size]}
	signature := binary.LittleEndian.Uint64(hb.data[_signature_offset:])
	if signature != SIGNATURE {
		if hb.data[0] == OOXML_FILE_HEADER[0] && hb.data[1] == OOXML_FILE_HEADER[1] &&
			hb.data[2] == OOXML_FILE_HEADER[2] && hb.data[3] == OOXML_FILE_HEADER[3] {
			return nil, OOXML_FILE_FORMAT
		}
		if (signature & 0xFF8FFFFFFFFFFFFF) == 0x0010000200040009 {
			return nil, BIFF2_FILE_FORMAT
		}
		return nil, util.FormatErrorf("header: invalid signature %016X, expected %016X", signature, SIGNATURE)
	}
	if bom := util.GetUShort(hb.data, _byte_order_offset); bom != BYTE_ORDER_MARK {
		return nil, util.FormatErrorf("header: byte order mark %04X, expected %04X", bom, BYTE_ORDER_MARK)
	}

	// Figure out our block size
	switch shift := hb.data[_sector_shift_offset]; shift {
	case 12:
		hb.bigBlockSize = LARGER_BIG_BLOCK_SIZE_DETAILS
	case 9:
		hb.bigBlockSize = SMALLER_BIG_BLOCK_SIZE_DETAILS
	default:
		return nil, util.FormatErrorf("header: unsupported block size (2^%d), expected 2^9 or 2^12", shift)
	}
	if shift := util.GetUShort(hb.data, _mini_sector_shift); shift != SMALL_BLOCK_SHIFT {
		return nil, util.FormatErrorf("header: unsupported mini block size (2^%d), expected 2^%d", shift, SMALL_BLOCK_SHIFT)
	}

	hb.bat_count = NewIntegerFieldFromBytes(_bat_count_offset, hb.data).Get()
	hb.property_start = NewIntegerFieldFromBytes(_property_start_offset, hb.data).Get()
	hb.sbat_start = NewIntegerFieldFromBytes(_sbat_start_offset, hb.data).Get()
	hb.sbat_count = NewIntegerFieldFromBytes(_sbat_block_count_offset, hb.data).Get()
	hb.xbat_start = NewIntegerFieldFromBytes(_xbat_start_offset, hb.data).Get()
	hb.xbat_count = NewIntegerFieldFromBytes(_xbat_count_offset, hb.data).Get()
	hb.dir_count = NewIntegerFieldFromBytes(_dir_count_offset, hb.data).Get()

	if hb.bat_count < 0 || hb.bat_count > MAX_BLOCK_COUNT {
		return nil, util.FormatErrorf("header: BAT count %d out of range", hb.bat_count)
	}
	if hb.xbat_count < 0 || hb.sbat_count < 0 {
		return nil, util.FormatErrorf("header: negative XBAT (%d) or SBAT (%d) count", hb.xbat_count, hb.sbat_count)
	}
	return hb, nil
}

func NewHeaderBlockFromReader(r io.Reader) (*HeaderBlock, error) {
	// Grab the first 512 bytes
	// (For 4096 sized blocks, the remaining 3584 bytes are zero)
	// Then, process the contents
	head := make([]byte, _header_size)
	n, err := io.ReadFull(r, head)
	if err != nil {
		return nil, util.FormatErrorf("header: unable to read entire header, %d read; expected %d bytes", n, _header_size)
	}
	return newHeaderBlockFromBytes(head)
}

func (hb *HeaderBlock) GetPropertyStart() int {
	return hb.property_start
}

func (hb *HeaderBlock) SetPropertyStart(startBlock int) {
	hb.property_start = startBlock
}

//return start of small block (MiniFAT) allocation table
func (hb *HeaderBlock) GetSBATStart() int {
	return hb.sbat_start
}
func (hb *HeaderBlock) GetSBATCount() int {
	return hb.sbat_count
}

func (hb *HeaderBlock) SetSBATStart(startBlock int) {
	hb.sbat_start = startBlock
}

func (hb *HeaderBlock) SetSBATBlockCount(count int) {
	hb.sbat_count = count
}

func (hb *HeaderBlock) GetBATCount() int {
	return hb.bat_count
}

func (hb *HeaderBlock) SetBATCount(count int) {
	hb.bat_count = count
}

// GetBATArray returns the BAT sector indices held inline in the header.
func (hb *HeaderBlock) GetBATArray() []int {
	result := make([]int, min(hb.bat_count, _max_bats_in_header))
	offset := _bat_array_offset
	for j := 0; j < len(result); j++ {
		result[j] = util.GetInt(hb.data, offset)
		offset += util.INT_SIZE
	}
	return result
}

func (hb *HeaderBlock) SetBATArray(bat_array []int) {
	count := min(len(bat_array), _max_bats_in_header)
	offset := _bat_array_offset
	for i := 0; i < _max_bats_in_header; i++ {
		v := UNUSED_BLOCK
		if i < count {
			v = bat_array[i]
		}
		util.PutInt(hb.data, offset, v)
		offset += util.INT_SIZE
	}
}

func (hb *HeaderBlock) GetXBATCount() int {
	return hb.xbat_count
}

func (hb *HeaderBlock) SetXBATCount(count int) {
	hb.xbat_count = count
}

func (hb *HeaderBlock) GetXBATIndex() int {
	return hb.xbat_start
}

func (hb *HeaderBlock) SetXBATStart(sb int) {
	hb.xbat_start = sb
}

// SetDirectoryCount records the directory sector count, which only 4096
// byte files carry; 512 byte files keep zero there.
func (hb *HeaderBlock) SetDirectoryCount(count int) {
	if hb.bigBlockSize.BigBlockSize == SMALLER_BIG_BLOCK_SIZE {
		count = 0
	}
	hb.dir_count = count
}

func (hb *HeaderBlock) GetBigBlockSize() POIFSBigBlockSize {
	return hb.bigBlockSize
}

// Bytes returns the header padded to one big block.
func (hb *HeaderBlock) Bytes() []byte {
	NewIntegerField(_dir_count_offset, hb.dir_count, hb.data)
	NewIntegerField(_bat_count_offset, hb.bat_count, hb.data)
	NewIntegerField(_property_start_offset, hb.property_start, hb.data)
	NewIntegerField(_sbat_start_offset, hb.sbat_start, hb.data)
	NewIntegerField(_sbat_block_count_offset, hb.sbat_count, hb.data)
	NewIntegerField(_xbat_start_offset, hb.xbat_start, hb.data)
	NewIntegerField(_xbat_count_offset, hb.xbat_count, hb.data)

	block := make([]byte, hb.bigBlockSize.BigBlockSize)
	copy(block, hb.data)
	return block
}

func (hb *HeaderBlock) WriteData(w io.Writer) error {
	_, err := w.Write(hb.Bytes())
	return err
}
