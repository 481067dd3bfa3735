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
	"github.com/naqvis/poi4go/util"
)

// EscherContainerRecord holds child records and nothing else.
type EscherContainerRecord struct {
	EscherRecordBase
	children []EscherRecord
}

// NewEscherContainerRecord returns an empty container with the given id.
func NewEscherContainerRecord(recordId uint16) *EscherContainerRecord {
	c := &EscherContainerRecord{}
	c.setHeader(_container_version, recordId)
	return c
}

// fillFields parses exactly the declared length as children; a child that
// does not fit is an error, not a reason to stop early.
func (c *EscherContainerRecord) fillFields(data []byte, offset int, factory *EscherRecordFactory) (int, error) {
	_, _, remaining, err := readHeader(data, offset)
	if err != nil {
		return 0, err
	}
	end := offset + HEADER_SIZE + remaining
	bounded := data[:end]
	c.children = nil
	for pos := offset + HEADER_SIZE; pos < end; {
		if end-pos < HEADER_SIZE {
			return 0, util.FormatErrorf("%d trailing bytes after the last child", end-pos)
		}
		child, n, err := factory.parse(bounded, pos)
		if err != nil {
			return 0, err
		}
		c.children = append(c.children, child)
		pos += n
	}
	return HEADER_SIZE + remaining, nil
}

func (c *EscherContainerRecord) GetRecordSize() int {
	size := HEADER_SIZE
	for _, child := range c.children {
		size += child.GetRecordSize()
	}
	return size
}

func (c *EscherContainerRecord) serialize(out *util.LittleEndianOutput) error {
	c.writeHeader(out, c.GetRecordSize()-HEADER_SIZE)
	for _, child := range c.children {
		if err := child.serialize(out); err != nil {
			return err
		}
	}
	return nil
}

func (c *EscherContainerRecord) GetChildRecords() []EscherRecord {
	return c.children
}

func (c *EscherContainerRecord) SetChildRecords(children []EscherRecord) {
	c.children = children
}

func (c *EscherContainerRecord) AddChildRecord(child EscherRecord) {
	c.children = append(c.children, child)
}

// AddChildBefore inserts child before the first child with the given id,
// or appends it when there is none.
func (c *EscherContainerRecord) AddChildBefore(child EscherRecord, recordId uint16) {
	for i, r := range c.children {
		if r.GetRecordId() == recordId {
			c.children = append(c.children[:i], append([]EscherRecord{child}, c.children[i:]...)...)
			return
		}
	}
	c.AddChildRecord(child)
}

// RemoveChildRecord removes child and reports whether it was present.
func (c *EscherContainerRecord) RemoveChildRecord(child EscherRecord) bool {
	for i, r := range c.children {
		if r == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return true
		}
	}
	return false
}

// GetChildById returns the first direct child with the given id.
func (c *EscherContainerRecord) GetChildById(recordId uint16) (EscherRecord, bool) {
	for _, r := range c.children {
		if r.GetRecordId() == recordId {
			return r, true
		}
	}
	return nil, false
}

// GetChildContainers returns the direct children that are containers.
func (c *EscherContainerRecord) GetChildContainers() []*EscherContainerRecord {
	var containers []*EscherContainerRecord
	for _, r := range c.children {
		if sub, ok := r.(*EscherContainerRecord); ok {
			containers = append(containers, sub)
		}
	}
	return containers
}

// GetRecordsById collects every record below c with the given id, depth
// first.
func (c *EscherContainerRecord) GetRecordsById(recordId uint16) []EscherRecord {
	var found []EscherRecord
	for _, r := range c.children {
		if r.GetRecordId() == recordId {
			found = append(found, r)
		}
		if sub, ok := r.(*EscherContainerRecord); ok {
			found = append(found, sub.GetRecordsById(recordId)...)
		}
	}
	return found
}
