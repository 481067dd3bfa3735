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
	"fmt"
	"io"
	"strings"
)

// Dump writes records as an indented tree, one line per record and one
// per opt property.
func Dump(w io.Writer, records []EscherRecord) error {
	for _, r := range records {
		if err := dumpRecord(w, r, 0); err != nil {
			return err
		}
	}
	return nil
}

func dumpRecord(w io.Writer, r EscherRecord, depth int) error {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s [0x%04X] ver=0x%X inst=0x%X size=%d", indent, r.GetRecordName(),
		r.GetRecordId(), r.GetVersion(), r.GetInstance(), r.GetRecordSize())
	if detail := describe(r); detail != "" {
		line += " " + detail
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	if opt, ok := r.(*EscherOptRecord); ok {
		for _, p := range opt.GetEscherProperties() {
			if _, err := fmt.Fprintf(w, "%s  - %v\n", indent, p); err != nil {
				return err
			}
		}
	}
	for _, child := range r.GetChildRecords() {
		if err := dumpRecord(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func describe(r EscherRecord) string {
	switch r := r.(type) {
	case *EscherSpRecord:
		return fmt.Sprintf("shapeId=%d flags=0x%X", r.ShapeId, r.Flags)
	case *EscherSpgrRecord:
		return fmt.Sprintf("rect=(%d,%d)-(%d,%d)", r.RectX1, r.RectY1, r.RectX2, r.RectY2)
	case *EscherDgRecord:
		return fmt.Sprintf("shapes=%d lastId=%d", r.NumShapes, r.LastMSOSPID)
	case *EscherDggRecord:
		return fmt.Sprintf("shapeIdMax=%d clusters=%d shapes=%d drawings=%d", r.ShapeIdMax,
			r.GetNumIdClusters(), r.NumShapesSaved, r.DrawingsSaved)
	case *EscherClientAnchorRecord:
		if r.shortRecord {
			return fmt.Sprintf("partial=%d bytes", len(r.RemainingData))
		}
		return fmt.Sprintf("from=(%d,%d) to=(%d,%d)", r.Col1, r.Row1, r.Col2, r.Row2)
	case *EscherChildAnchorRecord:
		return fmt.Sprintf("rect=(%d,%d)-(%d,%d)", r.Dx1, r.Dy1, r.Dx2, r.Dy2)
	case *EscherBSERecord:
		return fmt.Sprintf("type=%d uid=%X size=%d ref=%d", r.BlipTypeWin32, r.UID, r.Size, r.Ref)
	case *EscherBitmapBlip:
		return fmt.Sprintf("uid=%X picture=%d bytes", r.UID, len(r.PictureData))
	case *EscherMetafileBlip:
		return fmt.Sprintf("uid=%X uncompressed=%d saved=%d compression=0x%02X", r.UID,
			r.CacheSize, len(r.RawPicture), r.Compression)
	case *EscherOptRecord:
		return fmt.Sprintf("properties=%d", len(r.GetEscherProperties()))
	case *EscherSplitMenuColorsRecord:
		return fmt.Sprintf("colors=%X", r.Colors)
	case *EscherClientDataRecord:
		return fmt.Sprintf("data=%d bytes", len(r.Data))
	case *EscherTextboxRecord:
		return fmt.Sprintf("data=%d bytes", len(r.Data))
	case *UnknownEscherRecord:
		return fmt.Sprintf("data=%d bytes", len(r.Data))
	case *EscherBlipRecord:
		return fmt.Sprintf("data=%d bytes", len(r.Data))
	}
	return ""
}
