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
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/naqvis/poi4go/util"
)

// DataSource is the byte addressable store a file system lives in.
type DataSource interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
	// Writable reports whether WriteAt and Truncate may be used.
	Writable() bool
	Truncate(size int64) error
	Close() error
}

// ByteArrayBackedDataSource keeps the whole container in memory.
type ByteArrayBackedDataSource struct {
	buf      []byte
	readOnly bool
}

func NewByteArrayBackedDataSource(data []byte) *ByteArrayBackedDataSource {
	return &ByteArrayBackedDataSource{buf: data}
}

func (ds *ByteArrayBackedDataSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, util.FormatErrorf("negative offset %d", off)
	}
	if off >= int64(len(ds.buf)) {
		return 0, io.EOF
	}
	n := copy(p, ds.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (ds *ByteArrayBackedDataSource) WriteAt(p []byte, off int64) (int, error) {
	if ds.readOnly {
		return 0, util.StateErrorf("data source is read-only")
	}
	end := off + int64(len(p))
	if end > int64(len(ds.buf)) {
		if end <= int64(cap(ds.buf)) {
			ds.buf = ds.buf[:end]
		} else {
			grown := make([]byte, end, max(end, int64(cap(ds.buf))*2))
			copy(grown, ds.buf)
			ds.buf = grown
		}
	}
	return copy(ds.buf[off:], p), nil
}

func (ds *ByteArrayBackedDataSource) Size() int64 {
	return int64(len(ds.buf))
}

func (ds *ByteArrayBackedDataSource) Writable() bool {
	return !ds.readOnly
}

func (ds *ByteArrayBackedDataSource) Truncate(size int64) error {
	if ds.readOnly {
		return util.StateErrorf("data source is read-only")
	}
	if size < int64(len(ds.buf)) {
		ds.buf = ds.buf[:size]
	}
	return nil
}

// Bytes returns the current contents.
func (ds *ByteArrayBackedDataSource) Bytes() []byte {
	return ds.buf
}

func (ds *ByteArrayBackedDataSource) Close() error {
	ds.buf = nil
	return nil
}

const (
	_page_size          = 4096
	_default_cache_size = 256
)

// FileBackedDataSource reads and writes an os.File. Reads go through an
// LRU cache of 4k pages; writes invalidate the pages they touch.
type FileBackedDataSource struct {
	file     *os.File
	writable bool
	size     int64
	pages    *lru.Cache[int64, []byte]
}

// NewFileBackedDataSource takes ownership of file; Close closes it.
func NewFileBackedDataSource(file *os.File, readOnly bool, cacheSize int) (*FileBackedDataSource, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		cacheSize = _default_cache_size
	}
	pages, err := lru.New[int64, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &FileBackedDataSource{
		file:     file,
		writable: !readOnly,
		size:     info.Size(),
		pages:    pages,
	}, nil
}

func (ds *FileBackedDataSource) page(index int64) ([]byte, error) {
	if p, ok := ds.pages.Get(index); ok {
		return p, nil
	}
	p := make([]byte, _page_size)
	n, err := ds.file.ReadAt(p, index*_page_size)
	if err != nil && err != io.EOF {
		return nil, err
	}
	p = p[:n]
	ds.pages.Add(index, p)
	return p, nil
}

func (ds *FileBackedDataSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, util.FormatErrorf("negative offset %d", off)
	}
	read := 0
	for read < len(p) {
		pos := off + int64(read)
		if pos >= ds.size {
			return read, io.EOF
		}
		page, err := ds.page(pos / _page_size)
		if err != nil {
			return read, err
		}
		within := int(pos % _page_size)
		if within >= len(page) {
			return read, io.EOF
		}
		read += copy(p[read:], page[within:])
	}
	return read, nil
}

func (ds *FileBackedDataSource) WriteAt(p []byte, off int64) (int, error) {
	if !ds.writable {
		return 0, util.StateErrorf("file %s was opened read-only", ds.file.Name())
	}
	n, err := ds.file.WriteAt(p, off)
	for i := off / _page_size; i <= (off+int64(n))/_page_size; i++ {
		ds.pages.Remove(i)
	}
	if end := off + int64(n); end > ds.size {
		ds.size = end
	}
	return n, err
}

func (ds *FileBackedDataSource) Size() int64 {
	return ds.size
}

func (ds *FileBackedDataSource) Writable() bool {
	return ds.writable
}

func (ds *FileBackedDataSource) Truncate(size int64) error {
	if !ds.writable {
		return util.StateErrorf("file %s was opened read-only", ds.file.Name())
	}
	if err := ds.file.Truncate(size); err != nil {
		return err
	}
	ds.pages.Purge()
	ds.size = size
	return nil
}

func (ds *FileBackedDataSource) Close() error {
	ds.pages.Purge()
	return ds.file.Close()
}
