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
	"testing"

	"github.com/naqvis/poi4go/ddf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDrawingGroupAcrossContinue(t *testing.T) {
	picture := filled(12000, 3)
	blip := ddf.NewEscherBitmapBlip(ddf.BLIP_PNG, ddf.INSTANCE_PNG, picture)
	bse := ddf.NewEscherBSERecord()
	bse.BlipTypeWin32 = ddf.BT_PNG
	bse.UID = blip.UID
	bse.Blip = blip
	store := ddf.NewEscherContainerRecord(ddf.BSTORE_CONTAINER)
	store.AddChildRecord(bse)
	root := ddf.NewEscherContainerRecord(ddf.DGG_CONTAINER)
	root.AddChildRecord(ddf.NewEscherDggRecord())
	root.AddChildRecord(store)

	group := &DrawingGroupRecord{}
	require.NoError(t, group.SetEscherRecords([]ddf.EscherRecord{root}))
	require.Greater(t, len(group.Data), MAX_RECORD_DATA_SIZE)

	// the payload is split into a CONTINUE and merged back on read
	recs := readAll(t, mustSerialize(t, group))
	require.Len(t, recs, 1)
	read, ok := recs[0].(*DrawingGroupRecord)
	require.True(t, ok)
	assert.Equal(t, group.Data, read.Data)

	escher, err := read.EscherRecords(ddf.NewEscherRecordFactory(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.Len(t, escher, 1)
	found := escher[0].(*ddf.EscherContainerRecord).GetRecordsById(ddf.BSE_RECORD)
	require.Len(t, found, 1)
	got, err := found[0].(*ddf.EscherBSERecord).Blip.(*ddf.EscherBitmapBlip).Picture()
	require.NoError(t, err)
	assert.Equal(t, picture, got)
}

func TestDrawingRecordShapes(t *testing.T) {
	opt := ddf.NewEscherOptRecord()
	require.NoError(t, opt.AddEscherProperty(ddf.NewEscherSimpleProperty(ddf.FILL_FILLCOLOR, 0x0000FF)))
	sp := ddf.NewEscherContainerRecord(ddf.SP_CONTAINER)
	sp.AddChildRecord(ddf.NewEscherSpRecord(1, 0x401, ddf.FLAG_HAVEANCHOR))
	sp.AddChildRecord(opt)
	sp.AddChildRecord(ddf.NewEscherClientAnchorRecord())
	sp.AddChildRecord(ddf.NewEscherClientDataRecord())
	dg := ddf.NewEscherContainerRecord(ddf.DG_CONTAINER)
	dg.AddChildRecord(ddf.NewEscherDgRecord(1))
	dg.AddChildRecord(sp)

	drawing := &DrawingRecord{}
	require.NoError(t, drawing.SetEscherRecords([]ddf.EscherRecord{dg}))
	data := mustSerialize(t, drawing)

	recs, err := ReadRecord(DRAWING_SID, data[RECORD_HEADER_SIZE:])
	require.NoError(t, err)
	require.Len(t, recs, 1)
	escher, err := recs[0].(*DrawingRecord).EscherRecords(nil)
	require.NoError(t, err)
	require.Len(t, escher, 1)
	assert.Len(t, escher[0].(*ddf.EscherContainerRecord).GetRecordsById(ddf.SP_RECORD), 1)
	assert.Equal(t, "[MSODRAWING] 96 bytes", recs[0].(*DrawingRecord).String())
}
