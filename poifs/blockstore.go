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

// blockStore is a sector space with a chained allocation table. The file
// system implements it for big blocks, the mini store for 64 byte blocks
// inside the mini stream.
type blockStore interface {
	getBlockStoreBlockSize() int
	// blockCount is the number of entries the allocation table describes.
	blockCount() int
	getBlockAt(offset int) ([]byte, error)
	writeBlock(offset int, data []byte) error
	getNextBlock(offset int) int
	setNextBlock(offset, nextBlock int)
	// getFreeBlock returns an unused block, growing the table if needed.
	// The block stays free until setNextBlock is called on it.
	getFreeBlock() (int, error)
}

// walkChain follows the chain starting at head and returns its blocks in
// order. A block outside the table, a free or reserved pointer, or a block
// seen twice is reported as ErrFormat.
func walkChain(store blockStore, head int) ([]int, error) {
	return walkChainWith(store, head, newChainLoopDetector(store.blockCount()))
}

func walkChainWith(store blockStore, head int, detector *chainLoopDetector) ([]int, error) {
	var chain []int
	for current := head; current != END_OF_CHAIN; current = store.getNextBlock(current) {
		if err := detector.claim(current); err != nil {
			if len(chain) > 0 {
				return nil, util.FormatErrorf("chain starting at %d broken after block %d: %v",
					head, chain[len(chain)-1], err)
			}
			return nil, err
		}
		chain = append(chain, current)
	}
	return chain, nil
}

// allocateChain links n free blocks into a new chain and returns its head.
// A zero length chain is END_OF_CHAIN.
func allocateChain(store blockStore, n int) (int, error) {
	head, prev := END_OF_CHAIN, END_OF_CHAIN
	for i := 0; i < n; i++ {
		block, err := store.getFreeBlock()
		if err != nil {
			if head != END_OF_CHAIN {
				_ = freeChain(store, head)
			}
			return END_OF_CHAIN, err
		}
		store.setNextBlock(block, END_OF_CHAIN)
		if prev == END_OF_CHAIN {
			head = block
		} else {
			store.setNextBlock(prev, block)
		}
		prev = block
	}
	return head, nil
}

// freeChain returns every block of the chain to the free list. The chain is
// walked in full first, so a corrupt chain is left untouched.
func freeChain(store blockStore, head int) error {
	if head == END_OF_CHAIN {
		return nil
	}
	chain, err := walkChain(store, head)
	if err != nil {
		return err
	}
	for _, block := range chain {
		store.setNextBlock(block, UNUSED_BLOCK)
	}
	return nil
}

// extendChain appends extra blocks to the chain and returns the (possibly
// new) head.
func extendChain(store blockStore, head, extra int) (int, error) {
	if extra <= 0 {
		return head, nil
	}
	if head == END_OF_CHAIN {
		return allocateChain(store, extra)
	}
	chain, err := walkChain(store, head)
	if err != nil {
		return head, err
	}
	tail, err := allocateChain(store, extra)
	if err != nil {
		return head, err
	}
	store.setNextBlock(chain[len(chain)-1], tail)
	return head, nil
}

func blocksNeeded(store blockStore, size int) int {
	bs := store.getBlockStoreBlockSize()
	return (size + bs - 1) / bs
}

// writeChain stores data in a fresh chain and returns its head.
func writeChain(store blockStore, data []byte) (int, error) {
	head, err := allocateChain(store, blocksNeeded(store, len(data)))
	if err != nil || head == END_OF_CHAIN {
		return head, err
	}
	chain, err := walkChain(store, head)
	if err != nil {
		return END_OF_CHAIN, err
	}
	bs := store.getBlockStoreBlockSize()
	for i, block := range chain {
		buf := make([]byte, bs)
		copy(buf, data[i*bs:])
		if err := store.writeBlock(block, buf); err != nil {
			_ = freeChain(store, head)
			return END_OF_CHAIN, err
		}
	}
	return head, nil
}

// readChain reads size bytes from the chain starting at head.
func readChain(store blockStore, head, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	chain, err := walkChain(store, head)
	if err != nil {
		return nil, err
	}
	bs := store.getBlockStoreBlockSize()
	if len(chain)*bs < size {
		return nil, util.FormatErrorf("chain starting at %d has %d blocks, %d bytes need %d",
			head, len(chain), size, blocksNeeded(store, size))
	}
	out := make([]byte, 0, len(chain)*bs)
	for _, block := range chain {
		data, err := store.getBlockAt(block)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out[:size], nil
}
