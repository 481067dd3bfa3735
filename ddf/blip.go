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
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/naqvis/poi4go/util"
)

const (
	UID_SIZE = 16

	// fCompression of a metafile blip
	COMPRESSION_DEFLATE = 0x00
	COMPRESSION_NONE    = 0xFE
	FILTER_NONE         = 0xFE

	_metafile_header_size = 34
)

// Blip types as stored in the BSE record.
const (
	BT_ERROR   = 0
	BT_UNKNOWN = 1
	BT_EMF     = 2
	BT_WMF     = 3
	BT_PICT    = 4
	BT_JPEG    = 5
	BT_PNG     = 6
	BT_DIB     = 7
)

// Single uid instances of the blip records; the instance plus one means a
// second uid follows the first.
const (
	INSTANCE_EMF  = 0x3D4
	INSTANCE_WMF  = 0x216
	INSTANCE_PICT = 0x542
	INSTANCE_JPEG = 0x46A
	INSTANCE_PNG  = 0x6E0
	INSTANCE_DIB  = 0x7A8
	INSTANCE_TIFF = 0x6E4
)

func newBlipRecord(recordId uint16) EscherRecord {
	switch recordId {
	case BLIP_EMF, BLIP_WMF, BLIP_PICT:
		return &EscherMetafileBlip{}
	case BLIP_JPEG, BLIP_PNG, BLIP_DIB, BLIP_TIFF, BLIP_JPEG_CMYK:
		return &EscherBitmapBlip{}
	}
	return &EscherBlipRecord{}
}

// hasSecondaryUID reports whether the instance is the two uid variant.
func hasSecondaryUID(instance int) bool {
	return instance&1 == 1
}

// EscherBlipRecord is a picture whose layout is not decoded.
type EscherBlipRecord struct {
	rawRecord
}

// EscherBitmapBlip holds a JPEG, PNG, DIB or TIFF picture unchanged.
type EscherBitmapBlip struct {
	EscherRecordBase
	UID          [UID_SIZE]byte
	SecondaryUID []byte
	Marker       byte
	PictureData  []byte
}

// NewEscherBitmapBlip wraps picture data; the uid is its MD5 digest.
func NewEscherBitmapBlip(recordId uint16, instance int, data []byte) *EscherBitmapBlip {
	r := &EscherBitmapBlip{Marker: 0xFF, PictureData: data, UID: md5.Sum(data)}
	r.setHeader(0, recordId)
	r.SetInstance(instance)
	return r
}

func (r *EscherBitmapBlip) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	in.ReadFully(r.UID[:])
	if hasSecondaryUID(r.GetInstance()) {
		r.SecondaryUID = in.ReadBytes(UID_SIZE)
	}
	r.Marker = byte(in.ReadUByte())
	r.PictureData = in.ReadRemainder()
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherBitmapBlip) GetRecordSize() int {
	return HEADER_SIZE + UID_SIZE + len(r.SecondaryUID) + 1 + len(r.PictureData)
}

func (r *EscherBitmapBlip) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	out.Write(r.UID[:])
	out.Write(r.SecondaryUID)
	out.WriteUByte(int(r.Marker))
	out.Write(r.PictureData)
	return nil
}

// Picture returns the picture bytes.
func (r *EscherBitmapBlip) Picture() ([]byte, error) {
	return r.PictureData, nil
}

// Rect is a bounding box in metafile units.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// EscherMetafileBlip holds an EMF, WMF or PICT picture, normally deflate
// compressed.
type EscherMetafileBlip struct {
	EscherRecordBase
	UID           [UID_SIZE]byte
	PrimaryUID    []byte
	CacheSize     uint32
	Bounds        Rect
	SizeX         int32
	SizeY         int32
	Compression   byte
	Filter        byte
	RawPicture    []byte
	RemainingData []byte
}

// NewEscherMetafileBlip compresses picture into a new blip.
func NewEscherMetafileBlip(recordId uint16, instance int, picture []byte) (*EscherMetafileBlip, error) {
	r := &EscherMetafileBlip{}
	r.setHeader(0, recordId)
	r.SetInstance(instance)
	if err := r.SetPictureData(picture); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *EscherMetafileBlip) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	in.ReadFully(r.UID[:])
	if hasSecondaryUID(r.GetInstance()) {
		r.PrimaryUID = in.ReadBytes(UID_SIZE)
	}
	r.CacheSize = in.ReadUInt()
	r.Bounds = Rect{int32(in.ReadInt()), int32(in.ReadInt()), int32(in.ReadInt()), int32(in.ReadInt())}
	r.SizeX = int32(in.ReadInt())
	r.SizeY = int32(in.ReadInt())
	saved := int(in.ReadUInt())
	r.Compression = byte(in.ReadUByte())
	r.Filter = byte(in.ReadUByte())
	if in.Err() != nil {
		return 0, in.Err()
	}
	if saved < 0 || saved > in.Available() {
		return 0, util.FormatErrorf("%s: %d bytes of picture, %d available", r.GetRecordName(), saved, in.Available())
	}
	r.RawPicture = in.ReadBytes(saved)
	r.RemainingData = in.ReadRemainder()
	if len(r.RemainingData) == 0 {
		r.RemainingData = nil
	}
	return HEADER_SIZE + remaining, in.Err()
}

func (r *EscherMetafileBlip) GetRecordSize() int {
	return HEADER_SIZE + UID_SIZE + len(r.PrimaryUID) + _metafile_header_size + len(r.RawPicture) + len(r.RemainingData)
}

func (r *EscherMetafileBlip) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	out.Write(r.UID[:])
	out.Write(r.PrimaryUID)
	out.WriteInt(int(r.CacheSize))
	out.WriteInt(int(r.Bounds.Left))
	out.WriteInt(int(r.Bounds.Top))
	out.WriteInt(int(r.Bounds.Right))
	out.WriteInt(int(r.Bounds.Bottom))
	out.WriteInt(int(r.SizeX))
	out.WriteInt(int(r.SizeY))
	out.WriteInt(len(r.RawPicture))
	out.WriteUByte(int(r.Compression))
	out.WriteUByte(int(r.Filter))
	out.Write(r.RawPicture)
	out.Write(r.RemainingData)
	return nil
}

// Picture returns the uncompressed metafile.
func (r *EscherMetafileBlip) Picture() ([]byte, error) {
	if r.Compression != COMPRESSION_DEFLATE {
		return r.RawPicture, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(r.RawPicture))
	if err != nil {
		return nil, util.FormatErrorf("%s: %v", r.GetRecordName(), err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, util.FormatErrorf("%s: %v", r.GetRecordName(), err)
	}
	return data, nil
}

// SetPictureData stores picture deflate compressed and updates the sizes
// and the uid.
func (r *EscherMetafileBlip) SetPictureData(picture []byte) error {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(picture); err != nil {
		return fmt.Errorf("compressing %s: %w", r.GetRecordName(), err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing %s: %w", r.GetRecordName(), err)
	}
	r.RawPicture = buf.Bytes()
	r.CacheSize = uint32(len(picture))
	r.Compression = COMPRESSION_DEFLATE
	r.Filter = FILTER_NONE
	r.UID = md5.Sum(picture)
	return nil
}

// EscherBSERecord is a blip store entry: the picture's type, digest and
// reference count, optionally followed by the picture itself.
type EscherBSERecord struct {
	EscherRecordBase
	BlipTypeWin32 byte
	BlipTypeMacOS byte
	UID           [UID_SIZE]byte
	Tag           int
	Size          uint32
	Ref           uint32
	Offset        uint32
	Usage         byte
	NameLength    byte
	Unused2       byte
	Unused3       byte
	// Blip is the embedded picture, nil when it lives in the delay stream.
	Blip          EscherRecord
	RemainingData []byte
}

func NewEscherBSERecord() *EscherBSERecord {
	r := &EscherBSERecord{}
	r.setHeader(0x0002, BSE_RECORD)
	return r
}

func (r *EscherBSERecord) fillFields(data []byte, offset int, factory *EscherRecordFactory) (int, error) {
	in, remaining, err := leafInput(data, offset)
	if err != nil {
		return 0, err
	}
	r.BlipTypeWin32 = byte(in.ReadUByte())
	r.BlipTypeMacOS = byte(in.ReadUByte())
	in.ReadFully(r.UID[:])
	r.Tag = in.ReadUShort()
	r.Size = in.ReadUInt()
	r.Ref = in.ReadUInt()
	r.Offset = in.ReadUInt()
	r.Usage = byte(in.ReadUByte())
	r.NameLength = byte(in.ReadUByte())
	r.Unused2 = byte(in.ReadUByte())
	r.Unused3 = byte(in.ReadUByte())
	if in.Err() != nil {
		return 0, in.Err()
	}
	end := offset + HEADER_SIZE + remaining
	pos := in.Position()
	if end-pos >= HEADER_SIZE {
		blip, n, err := factory.parse(data[:end], pos)
		if err != nil {
			return 0, err
		}
		r.Blip = blip
		pos += n
	}
	if pos < end {
		r.RemainingData = append([]byte(nil), data[pos:end]...)
	}
	return HEADER_SIZE + remaining, nil
}

func (r *EscherBSERecord) GetRecordSize() int {
	size := HEADER_SIZE + 36 + len(r.RemainingData)
	if r.Blip != nil {
		size += r.Blip.GetRecordSize()
	}
	return size
}

func (r *EscherBSERecord) serialize(out *util.LittleEndianOutput) error {
	r.writeHeader(out, r.GetRecordSize()-HEADER_SIZE)
	out.WriteUByte(int(r.BlipTypeWin32))
	out.WriteUByte(int(r.BlipTypeMacOS))
	out.Write(r.UID[:])
	out.WriteShort(r.Tag)
	out.WriteInt(int(r.Size))
	out.WriteInt(int(r.Ref))
	out.WriteInt(int(r.Offset))
	out.WriteUByte(int(r.Usage))
	out.WriteUByte(int(r.NameLength))
	out.WriteUByte(int(r.Unused2))
	out.WriteUByte(int(r.Unused3))
	if r.Blip != nil {
		if err := r.Blip.serialize(out); err != nil {
			return err
		}
	}
	out.Write(r.RemainingData)
	return nil
}

func (r *EscherBSERecord) GetChildRecords() []EscherRecord {
	if r.Blip == nil {
		return nil
	}
	return []EscherRecord{r.Blip}
}
