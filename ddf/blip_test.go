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

package ddf

import (
	"bytes"
	"crypto/md5"
	"testing"

	"github.com/naqvis/poi4go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetafileBlipCompression(t *testing.T) {
	picture := bytes.Repeat([]byte("metafile record "), 200)
	blip, err := NewEscherMetafileBlip(BLIP_WMF, INSTANCE_WMF, picture)
	require.NoError(t, err)
	blip.Bounds = Rect{Right: 1000, Bottom: 500}
	blip.SizeX, blip.SizeY = 12700*1000, 12700*500

	assert.Less(t, len(blip.RawPicture), len(picture))
	assert.Equal(t, uint32(len(picture)), blip.CacheSize)
	assert.Equal(t, md5.Sum(picture), blip.UID)

	data := mustSerialize(t, blip)
	assert.Len(t, data, blip.GetRecordSize())
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	parsed, ok := r.(*EscherMetafileBlip)
	require.True(t, ok)
	assert.Equal(t, blip, parsed)

	got, err := parsed.Picture()
	require.NoError(t, err)
	assert.Equal(t, picture, got)
}

func TestMetafileBlipSecondUID(t *testing.T) {
	blip, err := NewEscherMetafileBlip(BLIP_EMF, INSTANCE_EMF+1, []byte("emf"))
	require.NoError(t, err)
	blip.PrimaryUID = bytes.Repeat([]byte{7}, UID_SIZE)
	blip.RemainingData = []byte{1, 2}

	r, err := ParseRecord(mustSerialize(t, blip), nil)
	require.NoError(t, err)
	parsed := r.(*EscherMetafileBlip)
	assert.Equal(t, blip.PrimaryUID, parsed.PrimaryUID)
	assert.Equal(t, []byte{1, 2}, parsed.RemainingData)
	got, err := parsed.Picture()
	require.NoError(t, err)
	assert.Equal(t, []byte("emf"), got)
}

func TestMetafileBlipStoredPicture(t *testing.T) {
	blip, err := NewEscherMetafileBlip(BLIP_PICT, INSTANCE_PICT, nil)
	require.NoError(t, err)
	blip.Compression = COMPRESSION_NONE
	blip.RawPicture = []byte("plain")
	got, err := blip.Picture()
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), got)

	blip.Compression = COMPRESSION_DEFLATE
	blip.RawPicture = []byte{1, 2, 3}
	_, err = blip.Picture()
	assert.ErrorIs(t, err, util.ErrFormat)
}

func TestMetafileBlipOverrun(t *testing.T) {
	body := append(make([]byte, UID_SIZE), ints(0, 0, 0, 0, 0, 0, 0, 100)...)
	body = append(body, COMPRESSION_DEFLATE, FILTER_NONE)
	_, err := ParseRecord(rec(INSTANCE_WMF<<4, BLIP_WMF, body, []byte{1, 2, 3}), nil)
	assert.ErrorIs(t, err, util.ErrFormat)
}

func TestBitmapBlip(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)
	blip := NewEscherBitmapBlip(BLIP_PNG, INSTANCE_PNG, png)
	assert.Equal(t, INSTANCE_PNG, blip.GetInstance())

	r, err := ParseRecord(mustSerialize(t, blip), nil)
	require.NoError(t, err)
	assert.Equal(t, blip, r)
	got, err := r.(*EscherBitmapBlip).Picture()
	require.NoError(t, err)
	assert.Equal(t, png, got)

	// the odd instance carries a second uid
	data := rec((INSTANCE_JPEG+1)<<4, BLIP_JPEG, bytes.Repeat([]byte{1}, UID_SIZE), bytes.Repeat([]byte{2}, UID_SIZE), []byte{0xFF, 0xD8, 0xFF})
	r, err = ParseRecord(data, nil)
	require.NoError(t, err)
	jpeg := r.(*EscherBitmapBlip)
	assert.Equal(t, bytes.Repeat([]byte{2}, UID_SIZE), jpeg.SecondaryUID)
	assert.Equal(t, byte(0xFF), jpeg.Marker)
	assert.Equal(t, []byte{0xD8, 0xFF}, jpeg.PictureData)
	assert.Equal(t, data, mustSerialize(t, r))
}

func TestGenericBlip(t *testing.T) {
	data := rec(0x0000, 0xF100, []byte{1, 2, 3, 4})
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	assert.IsType(t, &EscherBlipRecord{}, r)
	assert.Equal(t, "Blip0xF100", r.GetRecordName())
	assert.Equal(t, data, mustSerialize(t, r))
}

func blipStore(t *testing.T, picture []byte) (*EscherContainerRecord, *EscherBSERecord) {
	t.Helper()
	blip := NewEscherBitmapBlip(BLIP_PNG, INSTANCE_PNG, picture)
	bse := NewEscherBSERecord()
	bse.SetInstance(BT_PNG)
	bse.BlipTypeWin32 = BT_PNG
	bse.BlipTypeMacOS = BT_PNG
	bse.UID = blip.UID
	bse.Size = uint32(blip.GetRecordSize())
	bse.Ref = 1
	bse.Blip = blip

	store := NewEscherContainerRecord(BSTORE_CONTAINER)
	store.SetInstance(1)
	store.AddChildRecord(bse)

	dgg := NewEscherDggRecord()
	dgg.ShapeIdMax = 0x400
	root := NewEscherContainerRecord(DGG_CONTAINER)
	root.AddChildRecord(dgg)
	root.AddChildRecord(store)
	return root, bse
}

func TestBSEWithEmbeddedBlip(t *testing.T) {
	picture := bytes.Repeat([]byte{0xAB, 0xCD}, 300)
	root, bse := blipStore(t, picture)
	data := mustSerialize(t, root)

	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	found := r.(*EscherContainerRecord).GetRecordsById(BSE_RECORD)
	require.Len(t, found, 1)
	parsed := found[0].(*EscherBSERecord)
	assert.Equal(t, bse, parsed)
	require.Len(t, parsed.GetChildRecords(), 1)

	got, err := parsed.Blip.(*EscherBitmapBlip).Picture()
	require.NoError(t, err)
	assert.Equal(t, picture, got)
	assert.Equal(t, data, mustSerialize(t, r))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, []EscherRecord{r}))
	assert.Contains(t, buf.String(), "\n    BSE [0xF007]")
	assert.Contains(t, buf.String(), "\n      BlipPng [0xF01E]")
}

func TestBSEWithoutBlip(t *testing.T) {
	bse := NewEscherBSERecord()
	bse.BlipTypeWin32 = BT_EMF
	bse.Offset = 0x1234
	bse.Ref = 2
	bse.RemainingData = []byte{1, 2, 3}

	data := mustSerialize(t, bse)
	assert.Len(t, data, HEADER_SIZE+36+3)
	r, err := ParseRecord(data, nil)
	require.NoError(t, err)
	parsed := r.(*EscherBSERecord)
	assert.Nil(t, parsed.Blip)
	assert.Empty(t, parsed.GetChildRecords())
	assert.Equal(t, bse, parsed)
}
