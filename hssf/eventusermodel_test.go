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
	"bytes"
	"errors"
	"testing"

	"github.com/naqvis/poi4go/poifs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func workbookRecords() []Record {
	sst := &SSTRecord{}
	sst.AddString("hello")
	sst.AddString("world")
	return []Record{
		NewBOFRecord(BOF_TYPE_WORKBOOK),
		&CodepageRecord{Codepage: 1200},
		&BoundSheetRecord{PositionOfBOF: 0, SheetName: "Sheet1"},
		sst,
		&EOFRecord{},
		NewBOFRecord(BOF_TYPE_WORKSHEET),
		&LabelSSTRecord{CellRecord{Row: 0, Column: 0, XFIndex: 15}, 1},
		&MulRKRecord{Row: 1, FirstColumn: 0, Cells: []RKCell{{15, 1<<2 | 2}, {15, 2<<2 | 2}}},
		&NumberRecord{CellRecord{Row: 2, Column: 0, XFIndex: 15}, 3.5},
		&EOFRecord{},
	}
}

func workbookFileSystem(t *testing.T, streamName string) *poifs.POIFSFileSystem {
	t.Helper()
	data, err := SerializeAll(workbookRecords())
	require.NoError(t, err)
	fs, err := poifs.NewFileSystem(poifs.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	_, err = fs.CreateDocument(streamName, bytes.NewReader(data))
	require.NoError(t, err)
	return fs
}

func TestProcessWorkbookEvents(t *testing.T) {
	fs := workbookFileSystem(t, "Workbook")

	var values []float64
	var sids []uint16
	req := NewHSSFRequest()
	req.AddListener(ListenerFunc(func(rec Record) error {
		values = append(values, rec.(*NumberRecord).Value)
		return nil
	}), NUMBER_SID)
	req.AddListenerForAllRecords(ListenerFunc(func(rec Record) error {
		sids = append(sids, rec.Sid())
		return nil
	}))

	factory := NewHSSFEventFactory(zaptest.NewLogger(t))
	require.NoError(t, factory.ProcessWorkbookEvents(req, fs))

	// the MULRK arrives as two NUMBER records, in column order
	assert.Equal(t, []float64{1, 2, 3.5}, values)
	assert.Equal(t, []uint16{
		BOF_SID, CODEPAGE_SID, BOUNDSHEET_SID, SST_SID, EOF_SID,
		BOF_SID, LABELSST_SID, NUMBER_SID, NUMBER_SID, NUMBER_SID, EOF_SID,
	}, sids)
}

func TestProcessOldBookStream(t *testing.T) {
	fs := workbookFileSystem(t, "BOOK")
	count := 0
	req := NewHSSFRequest()
	req.AddListenerForAllRecords(ListenerFunc(func(Record) error {
		count++
		return nil
	}))
	require.NoError(t, NewHSSFEventFactory(zaptest.NewLogger(t)).ProcessWorkbookEvents(req, fs))
	assert.Equal(t, 11, count)
}

func TestListenerStopsProcessing(t *testing.T) {
	fs := workbookFileSystem(t, "Workbook")
	count := 0
	req := NewHSSFRequest()
	req.AddListener(ListenerFunc(func(Record) error {
		count++
		return ErrStopProcessing
	}), BOF_SID)
	require.NoError(t, NewHSSFEventFactory(zaptest.NewLogger(t)).ProcessWorkbookEvents(req, fs))
	assert.Equal(t, 1, count)

	boom := errors.New("boom")
	req = NewHSSFRequest()
	req.AddListener(ListenerFunc(func(Record) error { return boom }), SST_SID)
	err := NewHSSFEventFactory(zaptest.NewLogger(t)).ProcessWorkbookEvents(req, fs)
	assert.ErrorIs(t, err, boom)
}

func TestMissingWorkbookStream(t *testing.T) {
	fs := workbookFileSystem(t, "Other")
	err := NewHSSFEventFactory(zaptest.NewLogger(t)).ProcessWorkbookEvents(NewHSSFRequest(), fs)
	assert.True(t, poifs.IsNotExist(err))
}
