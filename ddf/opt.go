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
	"sort"

	"github.com/naqvis/poi4go/util"
)

// the instance field counts the properties in 12 bits
const MAX_PROPERTIES = 0x0FFF

// EscherOptRecord is the property table of a shape. The tertiary variant
// (TERTIARY_OPT) has the same layout.
type EscherOptRecord struct {
	EscherRecordBase
	properties []EscherProperty
}

func NewEscherOptRecord() *EscherOptRecord {
	r := &EscherOptRecord{}
	r.setHeader(0x0003, OPT_RECORD)
	return r
}

func NewEscherTertiaryOptRecord() *EscherOptRecord {
	r := &EscherOptRecord{}
	r.setHeader(0x0003, TERTIARY_OPT)
	return r
}

func (r *EscherOptRecord) fillFields(data []byte, offset int, _ *EscherRecordFactory) (int, error) {
	_, _, remaining, err := readHeader(data, offset)
	if err != nil {
		return 0, err
	}
	body := data[:offset+HEADER_SIZE+remaining]
	props, n, err := readProperties(body, offset+HEADER_SIZE, r.GetInstance())
	if err != nil {
		return 0, err
	}
	if n != remaining {
		return 0, util.FormatErrorf("properties use %d of %d bytes", n, remaining)
	}
	r.properties = props
	return HEADER_SIZE + remaining, nil
}

func (r *EscherOptRecord) propertiesSize() int {
	size := 0
	for _, p := range r.properties {
		size += p.GetPropertySize()
	}
	return size
}

func (r *EscherOptRecord) GetRecordSize() int {
	return HEADER_SIZE + r.propertiesSize()
}

func (r *EscherOptRecord) serialize(out *util.LittleEndianOutput) error {
	if len(r.properties) > MAX_PROPERTIES {
		return util.CapacityErrorf("%s: %d properties, at most %d fit", r.GetRecordName(), len(r.properties), MAX_PROPERTIES)
	}
	r.SetInstance(len(r.properties))
	r.writeHeader(out, r.propertiesSize())
	for _, p := range r.properties {
		p.serializeSimplePart(out)
	}
	for _, p := range r.properties {
		p.serializeComplexPart(out)
	}
	return nil
}

func (r *EscherOptRecord) GetEscherProperties() []EscherProperty {
	return r.properties
}

// GetEscherProperty returns the property at index.
func (r *EscherOptRecord) GetEscherProperty(index int) EscherProperty {
	return r.properties[index]
}

// Lookup returns the property with the given number.
func (r *EscherOptRecord) Lookup(number int) (EscherProperty, bool) {
	for _, p := range r.properties {
		if p.GetPropertyNumber() == number {
			return p, true
		}
	}
	return nil, false
}

// AddEscherProperty appends p.
func (r *EscherOptRecord) AddEscherProperty(p EscherProperty) error {
	if len(r.properties) >= MAX_PROPERTIES {
		return util.CapacityErrorf("%s: already holds %d properties", r.GetRecordName(), MAX_PROPERTIES)
	}
	r.properties = append(r.properties, p)
	r.SetInstance(len(r.properties))
	return nil
}

// SetEscherProperty replaces the property with the same number, or adds p.
func (r *EscherOptRecord) SetEscherProperty(p EscherProperty) error {
	for i, q := range r.properties {
		if q.GetPropertyNumber() == p.GetPropertyNumber() {
			r.properties[i] = p
			return nil
		}
	}
	return r.AddEscherProperty(p)
}

// RemoveEscherProperty removes the property with the given number.
func (r *EscherOptRecord) RemoveEscherProperty(number int) bool {
	for i, p := range r.properties {
		if p.GetPropertyNumber() == number {
			r.properties = append(r.properties[:i], r.properties[i+1:]...)
			r.SetInstance(len(r.properties))
			return true
		}
	}
	return false
}

// SortProperties orders the properties by number, the order Office writes.
func (r *EscherOptRecord) SortProperties() {
	sort.SliceStable(r.properties, func(i, j int) bool {
		return r.properties[i].GetPropertyNumber() < r.properties[j].GetPropertyNumber()
	})
}
