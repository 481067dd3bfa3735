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
	"github.com/naqvis/poi4go/util"
)

// BATBlock is one sector worth of allocation table entries. The same type
// holds BAT, SBAT and XBAT sectors; an XBAT keeps its chain pointer in the
// last entry.
type BATBlock struct {
	bigBlockSize     POIFSBigBlockSize
	values           []int
	has_free_sectors bool
	ourBlockIndex    int
}

//Create a single instance initialized with default values
func NewBATBlock(bigBlockSize POIFSBigBlockSize) *BATBlock {
	bb := &BATBlock{bigBlockSize: bigBlockSize,
		values:           make([]int, bigBlockSize.BATEntriesPerBlock()),
		has_free_sectors: true,
		ourBlockIndex:    UNUSED_BLOCK}
	fillArray(bb.values, UNUSED_BLOCK)
	return bb
}

// CreateBATBlock decodes a block read from disk.
func CreateBATBlock(bigBlockSize POIFSBigBlockSize, data []byte) *BATBlock {
	block := NewBATBlock(bigBlockSize)
	for i := 0; i < len(block.values); i++ {
		block.values[i] = util.GetInt(data, i*util.INT_SIZE)
	}
	block.recomputeFree()
	return block
}

func CreateEmptyBATBlock(bigBlockSize POIFSBigBlockSize, isXBAT bool) *BATBlock {
	block := NewBATBlock(bigBlockSize)
	if isXBAT {
		block.setXBATChain(END_OF_CHAIN)
	}
	return block
}

func (bb *BATBlock) recomputeFree() {
	hasFree := false
	for k := 0; k < len(bb.values); k++ {
		if bb.values[k] == UNUSED_BLOCK {
			hasFree = true
			break
		}
	}
	bb.has_free_sectors = hasFree
}

func (bb *BATBlock) GetValueAt(offset int) (int, error) {
	if offset < 0 || offset >= len(bb.values) {
		return 0, util.FormatErrorf("unable to fetch offset %d as the BAT only contains %d entries",
			offset, len(bb.values))
	}
	return bb.values[offset], nil
}

func (bb *BATBlock) SetValueAt(offset, val int) {
	oldValue := bb.values[offset]
	bb.values[offset] = val

	//Do we need to re-compute the free?
	if val == UNUSED_BLOCK {
		bb.has_free_sectors = true
		return
	}
	if oldValue == UNUSED_BLOCK {
		bb.recomputeFree()
	}
}

func (bb *BATBlock) SetOurBlockIndex(index int) {
	bb.ourBlockIndex = index
}

func (bb *BATBlock) GetOurBlockIndex() int {
	return bb.ourBlockIndex
}

func (bb *BATBlock) setXBATChain(chainIndex int) {
	bb.values[bb.bigBlockSize.XBATEntriesPerBlock()] = chainIndex
}

func (bb *BATBlock) getXBATChain() int {
	return bb.values[bb.bigBlockSize.XBATEntriesPerBlock()]
}

func (bb *BATBlock) HasFreeSectors() bool {
	return bb.has_free_sectors
}

// usedSectors counts the entries that are not free.
func (bb *BATBlock) usedSectors() int {
	used := 0
	for _, v := range bb.values {
		if v != UNUSED_BLOCK {
			used++
		}
	}
	return used
}

func calculateXBATStorageRequirements(bigBlockSize POIFSBigBlockSize, entryCount int) int {
	return (entryCount + bigBlockSize.XBATEntriesPerBlock() - 1) / bigBlockSize.XBATEntriesPerBlock()
}

/**
 * Calculates the maximum size of a file which is addressable given the
 *  number of FAT (BAT) sectors specified. (We don't care if those BAT
 *  blocks come from the 109 in the header, or from header + XBATS, it
 *  won't affect the calculation)
 */
func calculateMaximumSize(bigBlockSize POIFSBigBlockSize, numBAT int) int64 {
	size := int64(-1) //Header isn't FAT addressed
	size += int64(numBAT) * int64(bigBlockSize.BATEntriesPerBlock())
	return size * int64(bigBlockSize.BigBlockSize)
}

// getBATBlockAndIndex returns the BATBlock that handles the specified
// offset and the relative index within it. bats must be in sequential order.
func getBATBlockAndIndex(offset int, bigBlockSize POIFSBigBlockSize, bats []*BATBlock) (*BATBlock, int) {
	perBlock := bigBlockSize.BATEntriesPerBlock()
	which := offset / perBlock
	if offset < 0 || which >= len(bats) {
		return nil, 0
	}
	return bats[which], offset % perBlock
}

func (bb *BATBlock) serialize() []byte {
	data := make([]byte, bb.bigBlockSize.BigBlockSize)
	offset := 0
	for i := 0; i < len(bb.values); i++ {
		util.PutInt(data, offset, bb.values[i])
		offset += util.INT_SIZE
	}
	return data
}
