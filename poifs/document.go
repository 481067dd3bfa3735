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
	"bytes"
	"fmt"
	"io"

	"github.com/naqvis/poi4go/util"
)

var (
	CLOSED_STREAM_ERROR = fmt.Errorf("%w: cannot perform requested operation on a closed stream", util.ErrState)
)

// POIFSDocument is the content of one stream entry.
type POIFSDocument struct {
	fs       *POIFSFileSystem
	property *Property
}

func (d *POIFSDocument) GetDocumentProperty() *Property {
	return d.property
}

func (d *POIFSDocument) GetSize() int {
	return d.property.size
}

// IsSmall reports whether the content lives in the mini stream.
func (d *POIFSDocument) IsSmall() bool {
	return d.property.ShouldUseSmallBlocks()
}

func (d *POIFSDocument) store() blockStore {
	if d.IsSmall() {
		return d.fs.mini
	}
	return d.fs
}

// chain returns the blocks holding the content and checks they cover it.
func (d *POIFSDocument) chain() ([]int, error) {
	if d.property.size == 0 {
		return nil, nil
	}
	store := d.store()
	chain, err := walkChain(store, d.property.startBlock)
	if err != nil {
		return nil, err
	}
	if len(chain) < blocksNeeded(store, d.property.size) {
		return nil, util.FormatErrorf("%d bytes need %d blocks, the chain has %d",
			d.property.size, blocksNeeded(store, d.property.size), len(chain))
	}
	return chain, nil
}

func (d *POIFSDocument) Bytes() ([]byte, error) {
	return readChain(d.store(), d.property.startBlock, d.property.size)
}

// replace stores data in a new chain of the store its size calls for, and
// only then releases the old chain. A stream that crosses the mini stream
// threshold moves between stores this way.
func (d *POIFSDocument) replace(data []byte) error {
	var target blockStore = d.fs
	if isSmall(len(data)) {
		target = d.fs.mini
	}
	head := END_OF_CHAIN
	if len(data) > 0 {
		var err error
		if head, err = writeChain(target, data); err != nil {
			return err
		}
	}

	oldStore, oldStart, oldSize := d.store(), d.property.startBlock, d.property.size
	d.property.startBlock = head
	d.property.size = len(data)
	if oldSize > 0 {
		if err := freeChain(oldStore, oldStart); err != nil {
			return fmt.Errorf("releasing previous content: %w", err)
		}
	}
	return nil
}

// free returns the content's blocks to its store.
func (d *POIFSDocument) free() error {
	if d.property.size == 0 {
		return nil
	}
	err := freeChain(d.store(), d.property.startBlock)
	d.property.startBlock = END_OF_CHAIN
	d.property.size = 0
	return err
}

// DocumentInputStream reads a stream block by block. It is a view: a
// structural change to the file system invalidates it.
type DocumentInputStream struct {
	property      *Property
	store         blockStore
	blocks        []int
	document_size int
	current       int
	marked        int
	closed        bool
}

func newDocumentInputStream(doc *POIFSDocument) (*DocumentInputStream, error) {
	chain, err := doc.chain()
	if err != nil {
		return nil, err
	}
	return &DocumentInputStream{
		property:      doc.property,
		store:         doc.store(),
		blocks:        chain,
		document_size: doc.GetSize(),
	}, nil
}

func (d *DocumentInputStream) Available() int {
	if d.closed {
		return 0
	}
	return d.document_size - d.current
}

func (d *DocumentInputStream) Size() int {
	return d.document_size
}

func (d *DocumentInputStream) Close() error {
	d.closed = true
	return nil
}

func (d *DocumentInputStream) Mark() {
	d.marked = d.current
}

func (d *DocumentInputStream) Reset() {
	d.current = d.marked
}

func (d *DocumentInputStream) Read(p []byte) (int, error) {
	if d.closed {
		return 0, CLOSED_STREAM_ERROR
	}
	if d.property.index == _NO_INDEX {
		return 0, util.StateErrorf("stream %q was deleted", d.property.GetName())
	}
	if d.current >= d.document_size {
		return 0, io.EOF
	}
	bs := d.store.getBlockStoreBlockSize()
	n := 0
	for n < len(p) && d.current < d.document_size {
		data, err := d.store.getBlockAt(d.blocks[d.current/bs])
		if err != nil {
			return n, err
		}
		within := d.current % bs
		end := min(bs, within+d.document_size-d.current)
		copied := copy(p[n:], data[within:end])
		n += copied
		d.current += copied
	}
	return n, nil
}

func (d *DocumentInputStream) Seek(offset int64, whence int) (int64, error) {
	if d.closed {
		return 0, CLOSED_STREAM_ERROR
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(d.current) + offset
	case io.SeekEnd:
		abs = int64(d.document_size) + offset
	default:
		return 0, util.StateErrorf("invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(d.document_size) {
		return 0, util.FormatErrorf("seek to %d outside stream of %d bytes", abs, d.document_size)
	}
	d.current = int(abs)
	return abs, nil
}

// DocumentOutputStream collects the new content of a stream and replaces
// the old content when closed. Nothing is visible before Close.
type DocumentOutputStream struct {
	node   *DocumentNode
	buf    bytes.Buffer
	closed bool
}

func (w *DocumentOutputStream) Write(p []byte) (int, error) {
	if w.closed {
		return 0, CLOSED_STREAM_ERROR
	}
	return w.buf.Write(p)
}

func (w *DocumentOutputStream) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.node.Replace(w.buf.Bytes())
}
