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

package sprm

import (
	"fmt"

	"go.uber.org/zap"
)

// Decompressor derives property sets by applying grpprls to a parent.
// The parent is never modified.
type Decompressor struct {
	log *zap.Logger
}

// NewDecompressor returns a decompressor logging skipped opcodes to log;
// nil means zap.L().
func NewDecompressor(log *zap.Logger) *Decompressor {
	if log == nil {
		log = zap.L()
	}
	return &Decompressor{log: log}
}

// ApplyCHP returns a copy of parent with the character sprms of grpprl,
// starting at offset, applied in order. A nil parent stands for NewCHP.
func (d *Decompressor) ApplyCHP(parent *CHP, grpprl []byte, offset int) (*CHP, error) {
	if parent == nil {
		parent = NewCHP()
	}
	chp := parent.derive()
	it := NewSprmIterator(grpprl, offset)
	for it.HasNext() {
		op, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("applying character properties: %w", err)
		}
		if op.Type() != TYPE_CHP {
			d.log.Debug("sprm of another group in a chpx", zap.Stringer("sprm", op))
			continue
		}
		if !applyCHP(chp, parent, op) {
			d.log.Warn("unknown character sprm", zap.Stringer("sprm", op))
		}
	}
	return chp, nil
}

// ApplyPAP returns a copy of parent with the paragraph sprms of grpprl,
// starting at offset, applied in order. A nil parent stands for NewPAP.
func (d *Decompressor) ApplyPAP(parent *PAP, grpprl []byte, offset int) (*PAP, error) {
	if parent == nil {
		parent = NewPAP()
	}
	pap := parent.derive()
	it := NewSprmIterator(grpprl, offset)
	for it.HasNext() {
		op, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("applying paragraph properties: %w", err)
		}
		if op.Type() != TYPE_PAP {
			// table sprms share paragraph grpprls
			d.log.Debug("sprm of another group in a papx", zap.Stringer("sprm", op))
			continue
		}
		handled, err := applyPAP(pap, op)
		if err != nil {
			return nil, fmt.Errorf("applying paragraph properties: %s: %w", op, err)
		}
		if !handled {
			d.log.Warn("unknown paragraph sprm", zap.Stringer("sprm", op))
		}
	}
	return pap, nil
}
