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
	"fmt"

	"github.com/naqvis/poi4go/util"
	"go.uber.org/zap"
)

// miniStore holds streams shorter than BIG_BLOCK_MINIMUM_DOCUMENT_SIZE in 64
// byte blocks. The blocks live inside the mini stream, which is the big
// block chain of the root entry; the SBAT chains them.
type miniStore struct {
	fs         *POIFSFileSystem
	sbatBlocks []*BATBlock

	stream      []int
	streamValid bool
}

func newMiniStore(fs *POIFSFileSystem) (*miniStore, error) {
	ms := &miniStore{fs: fs}
	start := fs.header.GetSBATStart()
	if start == END_OF_CHAIN || start == UNUSED_BLOCK {
		return ms, nil
	}
	chain, err := walkChain(fs, start)
	if err != nil {
		return nil, err
	}
	for _, index := range chain {
		data, err := fs.getBlockAt(index)
		if err != nil {
			return nil, err
		}
		sbat := CreateBATBlock(fs.bigBlockSize, data)
		sbat.SetOurBlockIndex(index)
		ms.sbatBlocks = append(ms.sbatBlocks, sbat)
	}
	if declared := fs.header.GetSBATCount(); declared != len(chain) {
		fs.log.Debug("SBAT chain length differs from header",
			zap.Int("declared", declared), zap.Int("found", len(chain)))
	}
	return ms, nil
}

func (ms *miniStore) getBlockStoreBlockSize() int {
	return SMALL_BLOCK_SIZE
}

func (ms *miniStore) blockCount() int {
	return len(ms.sbatBlocks) * ms.fs.bigBlockSize.BATEntriesPerBlock()
}

// streamBlocks returns the big blocks making up the mini stream.
func (ms *miniStore) streamBlocks() ([]int, error) {
	if !ms.streamValid {
		chain, err := walkChain(ms.fs, ms.fs.properties.GetRoot().startBlock)
		if err != nil {
			return nil, fmt.Errorf("mini stream: %w", err)
		}
		ms.stream = chain
		ms.streamValid = true
	}
	return ms.stream, nil
}

func (ms *miniStore) locate(offset int) (big int, within int, err error) {
	perBig := ms.fs.bigBlockSize.BigBlockSize / SMALL_BLOCK_SIZE
	chain, err := ms.streamBlocks()
	if err != nil {
		return 0, 0, err
	}
	if offset/perBig >= len(chain) {
		return 0, 0, util.FormatErrorf("mini block %d is beyond the end of the mini stream (%d big blocks)",
			offset, len(chain))
	}
	return chain[offset/perBig], (offset % perBig) * SMALL_BLOCK_SIZE, nil
}

func (ms *miniStore) getBlockAt(offset int) ([]byte, error) {
	big, within, err := ms.locate(offset)
	if err != nil {
		return nil, err
	}
	data, err := ms.fs.getBlockAt(big)
	if err != nil {
		return nil, err
	}
	return data[within : within+SMALL_BLOCK_SIZE], nil
}

func (ms *miniStore) writeBlock(offset int, data []byte) error {
	perBig := ms.fs.bigBlockSize.BigBlockSize / SMALL_BLOCK_SIZE
	chain, err := ms.streamBlocks()
	if err != nil {
		return err
	}
	if need := offset/perBig + 1; need > len(chain) {
		if err := ms.growStream(need - len(chain)); err != nil {
			return err
		}
	}
	big, within, err := ms.locate(offset)
	if err != nil {
		return err
	}
	block, err := ms.fs.getBlockAt(big)
	if err != nil {
		return err
	}
	copy(block[within:within+SMALL_BLOCK_SIZE], data)
	if err := ms.fs.writeBlock(big, block); err != nil {
		return err
	}
	root := ms.fs.properties.GetRoot()
	if end := (offset + 1) * SMALL_BLOCK_SIZE; end > root.size {
		root.size = end
	}
	return nil
}

// growStream appends zeroed big blocks to the mini stream.
func (ms *miniStore) growStream(extra int) error {
	root := ms.fs.properties.GetRoot()
	old := len(ms.stream)
	head, err := extendChain(ms.fs, root.startBlock, extra)
	if err != nil {
		return fmt.Errorf("mini stream: %w", err)
	}
	root.startBlock = head
	ms.streamValid = false
	chain, err := ms.streamBlocks()
	if err != nil {
		return err
	}
	for _, big := range chain[old:] {
		if err := ms.fs.writeBlock(big, make([]byte, ms.fs.bigBlockSize.BigBlockSize)); err != nil {
			return err
		}
	}
	return nil
}

func (ms *miniStore) getNextBlock(offset int) int {
	sbat, index := getBATBlockAndIndex(offset, ms.fs.bigBlockSize, ms.sbatBlocks)
	if sbat == nil {
		return UNUSED_BLOCK
	}
	return sbat.values[index]
}

func (ms *miniStore) setNextBlock(offset, nextBlock int) {
	sbat, index := getBATBlockAndIndex(offset, ms.fs.bigBlockSize, ms.sbatBlocks)
	if sbat != nil {
		sbat.SetValueAt(index, nextBlock)
	}
}

func (ms *miniStore) getFreeBlock() (int, error) {
	offset := 0
	perBlock := ms.fs.bigBlockSize.BATEntriesPerBlock()
	for _, sbat := range ms.sbatBlocks {
		if sbat.HasFreeSectors() {
			for j := 0; j < perBlock; j++ {
				if sbat.values[j] == UNUSED_BLOCK {
					return offset + j, nil
				}
			}
		}
		offset += perBlock
	}

	// no free block, add another SBAT sector to the end of its chain
	big, err := ms.fs.getFreeBlock()
	if err != nil {
		return 0, err
	}
	ms.fs.setNextBlock(big, END_OF_CHAIN)
	if len(ms.sbatBlocks) == 0 {
		ms.fs.header.SetSBATStart(big)
	} else {
		ms.fs.setNextBlock(ms.sbatBlocks[len(ms.sbatBlocks)-1].GetOurBlockIndex(), big)
	}
	sbat := CreateEmptyBATBlock(ms.fs.bigBlockSize, false)
	sbat.SetOurBlockIndex(big)
	ms.sbatBlocks = append(ms.sbatBlocks, sbat)
	ms.fs.header.SetSBATBlockCount(len(ms.sbatBlocks))
	if err := ms.fs.writeBlock(big, sbat.serialize()); err != nil {
		return 0, err
	}
	return ms.getFreeBlock()
}

// sync writes the SBAT sectors back into the big block space.
func (ms *miniStore) sync() error {
	for _, sbat := range ms.sbatBlocks {
		if err := ms.fs.writeBlock(sbat.GetOurBlockIndex(), sbat.serialize()); err != nil {
			return err
		}
	}
	ms.fs.header.SetSBATBlockCount(len(ms.sbatBlocks))
	return nil
}
