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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/naqvis/poi4go/util"
	"go.uber.org/zap"
)

// POIFSFileSystem is an OLE2 compound file. Every change is kept in memory
// as a set of dirty big blocks over the original source until Flush,
// WriteFileSystem or WriteFile is called.
type POIFSFileSystem struct {
	header       *HeaderBlock
	bigBlockSize POIFSBigBlockSize
	source       DataSource
	dirty        map[int][]byte
	batBlocks    []*BATBlock
	xbatBlocks   []*BATBlock
	properties   *PropertyTable
	mini         *miniStore
	readOnly     bool
	closed       bool
	log          *zap.Logger
}

// NewFileSystem creates an empty file system intended for writing.
func NewFileSystem(opts ...Option) (*POIFSFileSystem, error) {
	c := defaultCfg()
	for _, o := range opts {
		o(c)
	}
	bbs, err := bigBlockSizeFor(c.bigBlockSize)
	if err != nil {
		return nil, err
	}
	fs := &POIFSFileSystem{
		header:       NewHeaderBlock(bbs),
		bigBlockSize: bbs,
		dirty:        make(map[int][]byte),
		log:          c.log,
	}
	fs.properties = NewPropertyTable(bbs, fs.log)
	fs.mini = &miniStore{fs: fs}

	// the directory starts in block 0, the first BAT in block 1
	bat := CreateEmptyBATBlock(bbs, false)
	bat.SetOurBlockIndex(1)
	bat.SetValueAt(0, END_OF_CHAIN)
	bat.SetValueAt(1, FAT_SECTOR_BLOCK)
	fs.batBlocks = append(fs.batBlocks, bat)
	fs.header.SetPropertyStart(0)
	if err := fs.writeBlock(0, fs.properties.serialize()); err != nil {
		return nil, err
	}
	return fs, fs.syncAllocationTables()
}

// OpenFileSystem reads the file system held by source. A read-only file
// system rejects every change.
func OpenFileSystem(source DataSource, readOnly bool, opts ...Option) (*POIFSFileSystem, error) {
	c := defaultCfg()
	for _, o := range opts {
		o(c)
	}
	fs := &POIFSFileSystem{
		source:   source,
		dirty:    make(map[int][]byte),
		readOnly: readOnly || !source.Writable(),
		log:      c.log,
	}

	head := make([]byte, _header_size)
	if n, err := source.ReadAt(head, 0); n < _header_size {
		if err == nil || err == io.EOF {
			err = util.FormatErrorf("header: %d bytes read, expected %d", n, _header_size)
		}
		return nil, err
	}
	var err error
	if fs.header, err = newHeaderBlockFromBytes(head); err != nil {
		return nil, err
	}
	fs.bigBlockSize = fs.header.GetBigBlockSize()

	if err := fs.readBATs(); err != nil {
		return nil, fmt.Errorf("sector allocation table: %w", err)
	}

	chain, err := walkChain(fs, fs.header.GetPropertyStart())
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	dirData := make([]byte, 0, len(chain)*fs.bigBlockSize.BigBlockSize)
	for _, block := range chain {
		data, err := fs.getBlockAt(block)
		if err != nil {
			return nil, fmt.Errorf("directory: %w", err)
		}
		dirData = append(dirData, data...)
	}
	if fs.properties, err = loadPropertyTable(fs.bigBlockSize, dirData, fs.log); err != nil {
		return nil, err
	}

	if fs.mini, err = newMiniStore(fs); err != nil {
		return nil, fmt.Errorf("mini sector allocation table: %w", err)
	}
	return fs, nil
}

// OpenFile opens the named file. The file stays open until Close.
func OpenFile(name string, readOnly bool, opts ...Option) (*POIFSFileSystem, error) {
	c := defaultCfg()
	for _, o := range opts {
		o(c)
	}
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	file, err := os.OpenFile(name, flag, 0)
	if err != nil {
		return nil, err
	}
	source, err := NewFileBackedDataSource(file, readOnly, c.cacheSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	fs, err := OpenFileSystem(source, readOnly, opts...)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return fs, nil
}

// FileSystemFromReader reads r until EOF. The result can be changed and
// written out, but not flushed in place.
func FileSystemFromReader(r io.Reader, opts ...Option) (*POIFSFileSystem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	source := &ByteArrayBackedDataSource{buf: data, readOnly: true}
	fs, err := OpenFileSystem(source, false, opts...)
	if err != nil {
		return nil, err
	}
	fs.readOnly = false
	return fs, nil
}

// sourceBlockCount is the number of (possibly partial) blocks after the
// header in the source.
func (fs *POIFSFileSystem) sourceBlockCount() int {
	if fs.source == nil {
		return 0
	}
	bs := int64(fs.bigBlockSize.BigBlockSize)
	n := (fs.source.Size() - bs + bs - 1) / bs
	if n < 0 {
		return 0
	}
	return int(n)
}

func (fs *POIFSFileSystem) readBATs() error {
	limit := fs.sourceBlockCount()
	used := newChainLoopDetector(limit)
	load := func(index int) error {
		if err := used.claim(index); err != nil {
			return err
		}
		data, err := fs.getBlockAt(index)
		if err != nil {
			return err
		}
		bat := CreateBATBlock(fs.bigBlockSize, data)
		bat.SetOurBlockIndex(index)
		fs.batBlocks = append(fs.batBlocks, bat)
		return nil
	}

	for _, index := range fs.header.GetBATArray() {
		if err := load(index); err != nil {
			return err
		}
	}

	remaining := fs.header.GetBATCount() - len(fs.batBlocks)
	next := fs.header.GetXBATIndex()
	perXBAT := fs.bigBlockSize.XBATEntriesPerBlock()
	for i := 0; i < fs.header.GetXBATCount() && remaining > 0; i++ {
		if err := used.claim(next); err != nil {
			return fmt.Errorf("XBAT chain: %w", err)
		}
		data, err := fs.getBlockAt(next)
		if err != nil {
			return err
		}
		xbat := CreateBATBlock(fs.bigBlockSize, data)
		xbat.SetOurBlockIndex(next)
		fs.xbatBlocks = append(fs.xbatBlocks, xbat)
		for j := 0; j < perXBAT && remaining > 0; j++ {
			if err := load(xbat.values[j]); err != nil {
				return err
			}
			remaining--
		}
		next = xbat.getXBATChain()
	}
	if remaining > 0 {
		return util.FormatErrorf("header declares %d BAT blocks, only %d could be located",
			fs.header.GetBATCount(), len(fs.batBlocks))
	}
	return nil
}

// getBlockAt returns a copy of a big block, dirty data first.
func (fs *POIFSFileSystem) getBlockAt(offset int) ([]byte, error) {
	bs := fs.bigBlockSize.BigBlockSize
	if data, ok := fs.dirty[offset]; ok {
		out := make([]byte, bs)
		copy(out, data)
		return out, nil
	}
	if offset < 0 || offset >= fs.sourceBlockCount() {
		return nil, util.FormatErrorf("block %d is past the end of the file", offset)
	}
	out := make([]byte, bs)
	n, err := fs.source.ReadAt(out, int64(offset+1)*int64(bs))
	if n == 0 && err != nil {
		return nil, err
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

func (fs *POIFSFileSystem) writeBlock(offset int, data []byte) error {
	if offset < 0 {
		return util.FormatErrorf("cannot write block %d", offset)
	}
	block := make([]byte, fs.bigBlockSize.BigBlockSize)
	copy(block, data)
	fs.dirty[offset] = block
	return nil
}

func (fs *POIFSFileSystem) getBlockStoreBlockSize() int {
	return fs.bigBlockSize.BigBlockSize
}

func (fs *POIFSFileSystem) blockCount() int {
	return len(fs.batBlocks) * fs.bigBlockSize.BATEntriesPerBlock()
}

func (fs *POIFSFileSystem) getNextBlock(offset int) int {
	bat, index := getBATBlockAndIndex(offset, fs.bigBlockSize, fs.batBlocks)
	if bat == nil {
		return UNUSED_BLOCK
	}
	return bat.values[index]
}

func (fs *POIFSFileSystem) setNextBlock(offset, nextBlock int) {
	bat, index := getBATBlockAndIndex(offset, fs.bigBlockSize, fs.batBlocks)
	if bat != nil {
		bat.SetValueAt(index, nextBlock)
	}
}

func (fs *POIFSFileSystem) getFreeBlock() (int, error) {
	perBlock := fs.bigBlockSize.BATEntriesPerBlock()
	offset := 0
	for _, bat := range fs.batBlocks {
		if bat.HasFreeSectors() {
			for j := 0; j < perBlock; j++ {
				if bat.values[j] == UNUSED_BLOCK {
					return offset + j, nil
				}
			}
		}
		offset += perBlock
	}

	// Every block is taken: the new BAT occupies the first block it
	// describes, and an XBAT, when one is needed, the second.
	if int64(offset)+int64(perBlock) > math.MaxInt32 {
		return 0, util.CapacityErrorf("file system cannot address more than %d blocks", offset)
	}
	bat := CreateEmptyBATBlock(fs.bigBlockSize, false)
	bat.SetOurBlockIndex(offset)
	bat.SetValueAt(0, FAT_SECTOR_BLOCK)
	fs.batBlocks = append(fs.batBlocks, bat)

	if overflow := len(fs.batBlocks) - _max_bats_in_header; overflow > 0 {
		if calculateXBATStorageRequirements(fs.bigBlockSize, overflow) > len(fs.xbatBlocks) {
			xbat := CreateEmptyBATBlock(fs.bigBlockSize, true)
			xbat.SetOurBlockIndex(offset + 1)
			bat.SetValueAt(1, DIFAT_SECTOR_BLOCK)
			fs.xbatBlocks = append(fs.xbatBlocks, xbat)
		}
	}
	return fs.getFreeBlock()
}

// usedBlockCount is one past the last allocated block.
func (fs *POIFSFileSystem) usedBlockCount() int {
	for i := fs.blockCount() - 1; i >= 0; i-- {
		if fs.getNextBlock(i) != UNUSED_BLOCK {
			return i + 1
		}
	}
	return 0
}

func (fs *POIFSFileSystem) checkOpen() error {
	if fs.closed {
		return util.StateErrorf("file system is closed")
	}
	return nil
}

func (fs *POIFSFileSystem) checkWritable() error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	if fs.readOnly {
		return util.StateErrorf("file system is read-only")
	}
	return nil
}

// sync brings every allocation structure and the header up to date with
// the in-memory state.
func (fs *POIFSFileSystem) sync() error {
	if err := fs.syncDirectory(); err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if err := fs.mini.sync(); err != nil {
		return fmt.Errorf("mini sector allocation table: %w", err)
	}
	return fs.syncAllocationTables()
}

// syncDirectory rewrites the directory in place while it keeps its block
// count, otherwise writes a new chain and frees the old one.
func (fs *POIFSFileSystem) syncDirectory() error {
	data := fs.properties.serialize()
	bs := fs.bigBlockSize.BigBlockSize
	start := fs.header.GetPropertyStart()
	old, err := walkChain(fs, start)
	if err != nil {
		return err
	}
	if len(old) == len(data)/bs {
		for i, block := range old {
			if err := fs.writeBlock(block, data[i*bs:(i+1)*bs]); err != nil {
				return err
			}
		}
	} else {
		head, err := writeChain(fs, data)
		if err != nil {
			return err
		}
		fs.header.SetPropertyStart(head)
		if err := freeChain(fs, start); err != nil {
			return err
		}
	}
	fs.header.SetDirectoryCount(len(data) / bs)
	return nil
}

func (fs *POIFSFileSystem) syncAllocationTables() error {
	indices := make([]int, len(fs.batBlocks))
	for i, bat := range fs.batBlocks {
		indices[i] = bat.GetOurBlockIndex()
	}
	fs.header.SetBATCount(len(indices))
	fs.header.SetBATArray(indices)

	var rest []int
	if len(indices) > _max_bats_in_header {
		rest = indices[_max_bats_in_header:]
	}
	perXBAT := fs.bigBlockSize.XBATEntriesPerBlock()
	for i, xbat := range fs.xbatBlocks {
		for j := 0; j < perXBAT; j++ {
			v := UNUSED_BLOCK
			if k := i*perXBAT + j; k < len(rest) {
				v = rest[k]
			}
			xbat.SetValueAt(j, v)
		}
		next := END_OF_CHAIN
		if i+1 < len(fs.xbatBlocks) {
			next = fs.xbatBlocks[i+1].GetOurBlockIndex()
		}
		xbat.setXBATChain(next)
		if err := fs.writeBlock(xbat.GetOurBlockIndex(), xbat.serialize()); err != nil {
			return err
		}
	}
	if len(fs.xbatBlocks) > 0 {
		fs.header.SetXBATStart(fs.xbatBlocks[0].GetOurBlockIndex())
	} else {
		fs.header.SetXBATStart(END_OF_CHAIN)
	}
	fs.header.SetXBATCount(len(fs.xbatBlocks))

	for _, bat := range fs.batBlocks {
		if err := fs.writeBlock(bat.GetOurBlockIndex(), bat.serialize()); err != nil {
			return err
		}
	}
	return nil
}

// WriteFileSystem writes the complete file system to w. Unused blocks are
// written as zeros.
func (fs *POIFSFileSystem) WriteFileSystem(w io.Writer) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	if err := fs.sync(); err != nil {
		return err
	}
	out := bufio.NewWriter(w)
	if err := fs.header.WriteData(out); err != nil {
		return err
	}
	empty := make([]byte, fs.bigBlockSize.BigBlockSize)
	for i, n := 0, fs.usedBlockCount(); i < n; i++ {
		data := empty
		if fs.getNextBlock(i) != UNUSED_BLOCK {
			var err error
			if data, err = fs.getBlockAt(i); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return out.Flush()
}

// Bytes returns the serialized file system.
func (fs *POIFSFileSystem) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := fs.WriteFileSystem(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the file system to a temporary file next to name and
// renames it into place.
func (fs *POIFSFileSystem) WriteFile(name string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = fs.WriteFileSystem(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

// Flush writes the changes back into the source the file system was
// opened from.
func (fs *POIFSFileSystem) Flush() error {
	if err := fs.checkWritable(); err != nil {
		return err
	}
	if fs.source == nil || !fs.source.Writable() {
		return util.StateErrorf("file system has no writable source, use WriteFileSystem instead")
	}
	if err := fs.sync(); err != nil {
		return err
	}
	bs := int64(fs.bigBlockSize.BigBlockSize)
	if _, err := fs.source.WriteAt(fs.header.Bytes(), 0); err != nil {
		return err
	}
	offsets := make([]int, 0, len(fs.dirty))
	for offset := range fs.dirty {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	for _, offset := range offsets {
		if _, err := fs.source.WriteAt(fs.dirty[offset], int64(offset+1)*bs); err != nil {
			return fmt.Errorf("block %d: %w", offset, err)
		}
	}
	if end := int64(fs.usedBlockCount()+1) * bs; fs.source.Size() < end {
		pad := make([]byte, end-fs.source.Size())
		if _, err := fs.source.WriteAt(pad, fs.source.Size()); err != nil {
			return err
		}
	}
	fs.dirty = make(map[int][]byte)
	return nil
}

// Close releases the source. The file system cannot be used afterwards.
func (fs *POIFSFileSystem) Close() error {
	if fs.closed {
		return nil
	}
	fs.closed = true
	fs.dirty = nil
	if fs.source != nil {
		return fs.source.Close()
	}
	return nil
}

func (fs *POIFSFileSystem) GetBigBlockSize() int {
	return fs.bigBlockSize.BigBlockSize
}

func (fs *POIFSFileSystem) GetHeaderBlock() *HeaderBlock {
	return fs.header
}

func (fs *POIFSFileSystem) IsReadOnly() bool {
	return fs.readOnly
}

func (fs *POIFSFileSystem) Root() *DirectoryNode {
	return newDirectoryNode(fs.properties.GetRoot(), fs, nil)
}

// lookup resolves a path to an entry; the bool is false when any
// component is missing.
func (fs *POIFSFileSystem) lookup(path string) (Entry, bool, error) {
	if err := fs.checkOpen(); err != nil {
		return nil, false, err
	}
	dp, err := ParsePath(path)
	if err != nil {
		return nil, false, err
	}
	var entry Entry = fs.Root()
	for i := 0; i < dp.Length(); i++ {
		dir, ok := entry.(*DirectoryNode)
		if !ok {
			return nil, false, nil
		}
		if entry, ok = dir.GetEntry(dp.GetComponent(i)); !ok {
			return nil, false, nil
		}
	}
	return entry, true, nil
}

// GetEntry looks a slash separated path up, ignoring case. A malformed
// path counts as absent.
func (fs *POIFSFileSystem) GetEntry(path string) (Entry, bool) {
	entry, ok, err := fs.lookup(path)
	if err != nil {
		return nil, false
	}
	return entry, ok
}

// ensureDirectory walks dp, creating missing storages.
func (fs *POIFSFileSystem) ensureDirectory(dp *POIFSDocumentPath) (*DirectoryNode, error) {
	dir := fs.Root()
	for i := 0; i < dp.Length(); i++ {
		name := dp.GetComponent(i)
		entry, ok := dir.GetEntry(name)
		if !ok {
			var err error
			if dir, err = dir.CreateDirectory(name); err != nil {
				return nil, err
			}
			continue
		}
		next, isDir := entry.(*DirectoryNode)
		if !isDir {
			return nil, util.StateErrorf("%q is a stream, not a storage", dir.path.String()+PATH_SEPARATOR+name)
		}
		dir = next
	}
	return dir, nil
}

// CreateDirectory creates the storage at path along with missing parents.
func (fs *POIFSFileSystem) CreateDirectory(path string) (*DirectoryNode, error) {
	if err := fs.checkWritable(); err != nil {
		return nil, err
	}
	dp, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if dp.Length() == 0 {
		return nil, util.StateErrorf("the root storage already exists")
	}
	parent, err := fs.ensureDirectory(dp.GetParent())
	if err != nil {
		return nil, err
	}
	return parent.CreateDirectory(dp.Name())
}

// CreateDocument creates a stream at path holding everything r yields.
func (fs *POIFSFileSystem) CreateDocument(path string, r io.Reader) (*DocumentNode, error) {
	if err := fs.checkWritable(); err != nil {
		return nil, err
	}
	dp, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if dp.Length() == 0 {
		return nil, util.FormatErrorf("a stream needs a name")
	}
	parent, err := fs.ensureDirectory(dp.GetParent())
	if err != nil {
		return nil, err
	}
	return parent.CreateDocument(dp.Name(), r)
}

func (fs *POIFSFileSystem) document(path string) (*DocumentNode, error) {
	entry, ok, err := fs.lookup(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no such entry %q", os.ErrNotExist, path)
	}
	doc, isDoc := entry.(*DocumentNode)
	if !isDoc {
		return nil, util.StateErrorf("%q is a storage, not a stream", path)
	}
	return doc, nil
}

// OpenDocument returns a reader over the stream at path.
func (fs *POIFSFileSystem) OpenDocument(path string) (*DocumentInputStream, error) {
	doc, err := fs.document(path)
	if err != nil {
		return nil, err
	}
	stream, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return stream, nil
}

// ReadDocument returns the content of the stream at path.
func (fs *POIFSFileSystem) ReadDocument(path string) ([]byte, error) {
	doc, err := fs.document(path)
	if err != nil {
		return nil, err
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return data, nil
}

// Delete removes the stream or empty storage at path.
func (fs *POIFSFileSystem) Delete(path string) error {
	if err := fs.checkWritable(); err != nil {
		return err
	}
	entry, ok, err := fs.lookup(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no such entry %q", os.ErrNotExist, path)
	}
	return entry.Delete()
}

// Walk calls fn for every entry below the root in directory order,
// storages before their children.
func (fs *POIFSFileSystem) Walk(fn func(path *POIFSDocumentPath, entry Entry) error) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	var walk func(dir *DirectoryNode) error
	walk = func(dir *DirectoryNode) error {
		for _, entry := range dir.Entries() {
			path, err := dir.path.Append(entry.GetName())
			if err != nil {
				return err
			}
			if err := fn(path, entry); err != nil {
				return err
			}
			if sub, ok := entry.(*DirectoryNode); ok {
				if err := walk(sub); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(fs.Root())
}

// Check walks every chain of the file system and fails when one is broken,
// when two chains share a block or when an allocated block is unclaimed.
func (fs *POIFSFileSystem) Check() error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	big := newChainLoopDetector(fs.blockCount())
	for _, bat := range fs.batBlocks {
		if err := big.claim(bat.GetOurBlockIndex()); err != nil {
			return fmt.Errorf("BAT: %w", err)
		}
	}
	for _, xbat := range fs.xbatBlocks {
		if err := big.claim(xbat.GetOurBlockIndex()); err != nil {
			return fmt.Errorf("XBAT: %w", err)
		}
	}
	if _, err := walkChainWith(fs, fs.header.GetPropertyStart(), big); err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if start := fs.header.GetSBATStart(); start != UNUSED_BLOCK {
		if _, err := walkChainWith(fs, start, big); err != nil {
			return fmt.Errorf("mini sector allocation table: %w", err)
		}
	}
	if _, err := walkChainWith(fs, fs.properties.GetRoot().startBlock, big); err != nil {
		return fmt.Errorf("mini stream: %w", err)
	}

	mini := newChainLoopDetector(fs.mini.blockCount())
	for _, prop := range fs.properties.entries() {
		if prop.IsDirectory() || prop.size == 0 {
			continue
		}
		var store blockStore = fs
		detector := big
		if prop.ShouldUseSmallBlocks() {
			store, detector = fs.mini, mini
		}
		chain, err := walkChainWith(store, prop.startBlock, detector)
		if err != nil {
			return fmt.Errorf("stream %q: %w", prop.name, err)
		}
		if len(chain) < blocksNeeded(store, prop.size) {
			return fmt.Errorf("stream %q: %w", prop.name,
				util.FormatErrorf("%d blocks cannot hold %d bytes", len(chain), prop.size))
		}
	}
	if err := checkOrphans(fs, big); err != nil {
		return err
	}
	if err := checkOrphans(fs.mini, mini); err != nil {
		return fmt.Errorf("mini stream: %w", err)
	}
	return nil
}

// checkOrphans fails on a block the table marks as used that no chain
// claimed.
func checkOrphans(store blockStore, detector *chainLoopDetector) error {
	for i := 0; i < store.blockCount(); i++ {
		if !detector.used[i] && store.getNextBlock(i) != UNUSED_BLOCK {
			return util.FormatErrorf("block %d is allocated but belongs to no chain", i)
		}
	}
	return nil
}

// IsNotExist reports whether err says a path was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
