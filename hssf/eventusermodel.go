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

package hssf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/naqvis/poi4go/poifs"
	"go.uber.org/zap"
)

// Names of the workbook stream, current and BIFF5.
var WorkbookDirEntryNames = []string{"Workbook", "Book"}

// ErrStopProcessing may be returned by a listener to end processing
// early; ProcessEvents then returns nil.
var ErrStopProcessing = errors.New("hssf: stop processing")

// HSSFListener receives logical records in stream order.
type HSSFListener interface {
	ProcessRecord(rec Record) error
}

// ListenerFunc adapts a function to HSSFListener.
type ListenerFunc func(rec Record) error

func (f ListenerFunc) ProcessRecord(rec Record) error {
	return f(rec)
}

// HSSFRequest routes records to the listeners registered for their sid.
type HSSFRequest struct {
	listeners map[uint16][]HSSFListener
	all       []HSSFListener
}

func NewHSSFRequest() *HSSFRequest {
	return &HSSFRequest{listeners: make(map[uint16][]HSSFListener)}
}

// AddListener registers l for each of sids.
func (r *HSSFRequest) AddListener(l HSSFListener, sids ...uint16) {
	for _, sid := range sids {
		r.listeners[sid] = append(r.listeners[sid], l)
	}
}

// AddListenerForAllRecords registers l for every record.
func (r *HSSFRequest) AddListenerForAllRecords(l HSSFListener) {
	r.all = append(r.all, l)
}

// processRecord hands rec to the sid listeners, then to the catch-all
// ones, in registration order.
func (r *HSSFRequest) processRecord(rec Record) error {
	for _, l := range r.listeners[rec.Sid()] {
		if err := l.ProcessRecord(rec); err != nil {
			return err
		}
	}
	for _, l := range r.all {
		if err := l.ProcessRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// HSSFEventFactory reads a record stream and feeds a request.
type HSSFEventFactory struct {
	log *zap.Logger
}

func NewHSSFEventFactory(log *zap.Logger) *HSSFEventFactory {
	if log == nil {
		log = zap.L()
	}
	return &HSSFEventFactory{log: log}
}

// ProcessEvents reads every record of r and passes it to req.
func (f *HSSFEventFactory) ProcessEvents(req *HSSFRequest, r io.Reader) error {
	stream := NewRecordFactoryInputStream(r, f.log)
	count := 0
	for {
		rec, err := stream.NextRecord()
		if err == io.EOF {
			f.log.Debug("record stream processed", zap.Int("records", count))
			return nil
		}
		if err != nil {
			return err
		}
		count++
		if err := req.processRecord(rec); err != nil {
			if errors.Is(err, ErrStopProcessing) {
				f.log.Debug("processing stopped by listener", zap.Int("records", count))
				return nil
			}
			return err
		}
	}
}

// ProcessWorkbookEvents processes the workbook stream of fs.
func (f *HSSFEventFactory) ProcessWorkbookEvents(req *HSSFRequest, fs *poifs.POIFSFileSystem) error {
	name, err := WorkbookStreamName(fs.Root())
	if err != nil {
		return err
	}
	stream, err := fs.OpenDocument(name)
	if err != nil {
		return err
	}
	defer stream.Close()
	if err := f.ProcessEvents(req, stream); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// WorkbookStreamName finds the workbook stream below dir.
func WorkbookStreamName(dir *poifs.DirectoryNode) (string, error) {
	for _, name := range WorkbookDirEntryNames {
		if entry, ok := dir.GetEntry(name); ok && entry.IsDocument() {
			return entry.GetName(), nil
		}
	}
	return "", fmt.Errorf("%w: no workbook stream, expected one of %v", os.ErrNotExist, WorkbookDirEntryNames)
}
