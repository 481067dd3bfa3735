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
	"fmt"

	"github.com/naqvis/poi4go/ddf"
)

// DrawingRecord (MSODRAWING) carries the escher records of one sheet's
// drawing layer, continuations merged.
type DrawingRecord struct {
	Data []byte
}

func readDrawingRecord(in *recordInput) ([]Record, error) {
	return []Record{&DrawingRecord{Data: in.ReadRemainder()}}, nil
}

// EscherRecords parses the payload; a nil factory uses the default one.
func (r *DrawingRecord) EscherRecords(factory *ddf.EscherRecordFactory) ([]ddf.EscherRecord, error) {
	return ddf.ParseRecords(r.Data, factory)
}

// SetEscherRecords replaces the payload with the serialized records.
func (r *DrawingRecord) SetEscherRecords(records []ddf.EscherRecord) error {
	data, err := ddf.SerializeRecords(records)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

func (r *DrawingRecord) Sid() uint16 {
	return DRAWING_SID
}

func (r *DrawingRecord) Serialize() ([]byte, error) {
	return serializeRecord(DRAWING_SID, r.Data), nil
}

func (r *DrawingRecord) String() string {
	return fmt.Sprintf("[MSODRAWING] %d bytes", len(r.Data))
}

// DrawingGroupRecord (MSODRAWINGGROUP) carries the workbook wide escher
// records: the drawing group and the blip store.
type DrawingGroupRecord struct {
	Data []byte
}

func readDrawingGroupRecord(in *recordInput) ([]Record, error) {
	return []Record{&DrawingGroupRecord{Data: in.ReadRemainder()}}, nil
}

func (r *DrawingGroupRecord) EscherRecords(factory *ddf.EscherRecordFactory) ([]ddf.EscherRecord, error) {
	return ddf.ParseRecords(r.Data, factory)
}

func (r *DrawingGroupRecord) SetEscherRecords(records []ddf.EscherRecord) error {
	data, err := ddf.SerializeRecords(records)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

func (r *DrawingGroupRecord) Sid() uint16 {
	return DRAWINGGROUP_SID
}

func (r *DrawingGroupRecord) Serialize() ([]byte, error) {
	return serializeRecord(DRAWINGGROUP_SID, r.Data), nil
}

func (r *DrawingGroupRecord) String() string {
	return fmt.Sprintf("[MSODRAWINGGROUP] %d bytes", len(r.Data))
}
