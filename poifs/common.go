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

type POIFSBigBlockSize struct {
	BigBlockSize int
	HeaderValue  int16
}

func NewBigBlockSize(blocksize int, headval int16) POIFSBigBlockSize {
	return POIFSBigBlockSize{blocksize, headval}
}

// bigBlockSizeFor maps a sector size in bytes to its details.
func bigBlockSizeFor(size int) (POIFSBigBlockSize, error) {
	switch size {
	case SMALLER_BIG_BLOCK_SIZE:
		return SMALLER_BIG_BLOCK_SIZE_DETAILS, nil
	case LARGER_BIG_BLOCK_SIZE:
		return LARGER_BIG_BLOCK_SIZE_DETAILS, nil
	}
	return POIFSBigBlockSize{}, util.CapacityErrorf("unsupported block size %d, expected %d or %d",
		size, SMALLER_BIG_BLOCK_SIZE, LARGER_BIG_BLOCK_SIZE)
}

func (b POIFSBigBlockSize) PropertiesPerBlock() int {
	return b.BigBlockSize / PROPERTY_SIZE
}

func (b POIFSBigBlockSize) BATEntriesPerBlock() int {
	return b.BigBlockSize / util.INT_SIZE
}

func (b POIFSBigBlockSize) XBATEntriesPerBlock() int {
	return b.BATEntriesPerBlock() - 1
}

func (b POIFSBigBlockSize) NextXBATChainOffset() int {
	return b.XBATEntriesPerBlock() * util.INT_SIZE
}

func fillArray(a []int, val int) {
	for i := range a {
		a[i] = val
	}
}

// chainLoopDetector remembers every block a walk has visited, so a chain
// that points back into itself, or into another chain checked with the same
// detector, is reported instead of looping forever.
type chainLoopDetector struct {
	used []bool
}

func newChainLoopDetector(blockCount int) *chainLoopDetector {
	return &chainLoopDetector{used: make([]bool, blockCount)}
}

func (d *chainLoopDetector) claim(offset int) error {
	if offset < 0 || offset >= len(d.used) {
		return util.FormatErrorf("block %d is outside the %d blocks described by the allocation table",
			offset, len(d.used))
	}
	if d.used[offset] {
		return util.FormatErrorf("potential loop detected: block %d was already used", offset)
	}
	d.used[offset] = true
	return nil
}
