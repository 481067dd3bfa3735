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
	"sort"

	"github.com/naqvis/poi4go/util"
)

// Paragraph opcodes.
const (
	SPRM_PISTD             uint16 = 0x4600
	SPRM_PJC80             uint16 = 0x2403
	SPRM_PFKEEP            uint16 = 0x2405
	SPRM_PFKEEPFOLLOW      uint16 = 0x2406
	SPRM_PFPAGEBREAKBEFORE uint16 = 0x2407
	SPRM_PILVL             uint16 = 0x260A
	SPRM_PILFO             uint16 = 0x460B
	SPRM_PFNOLINENUMB      uint16 = 0x240C
	SPRM_PCHGTABSPAPX      uint16 = 0xC60D
	SPRM_PDXARIGHT80       uint16 = 0x840E
	SPRM_PDXALEFT80        uint16 = 0x840F
	SPRM_PDXALEFT180       uint16 = 0x8411
	SPRM_PDYALINE          uint16 = 0x6412
	SPRM_PDYABEFORE        uint16 = 0xA413
	SPRM_PDYAAFTER         uint16 = 0xA414
	SPRM_PCHGTABS          uint16 = 0xC615
	SPRM_PFINTABLE         uint16 = 0x2416
	SPRM_PFTTP             uint16 = 0x2417
	SPRM_PFWIDOWCONTROL    uint16 = 0x2431
	SPRM_PJC               uint16 = 0x2461
)

// LineSpacing is the LSPD structure: a height in twips, or a multiple of
// single spacing in 240ths when Multiple is set.
type LineSpacing struct {
	DyaLine  int
	Multiple bool
}

// TabStop is one tab position in twips and its TBD descriptor.
type TabStop struct {
	Position   int
	Descriptor byte
}

// Alignment is the jc field of the descriptor.
func (t TabStop) Alignment() int {
	return int(t.Descriptor & 0x07)
}

// Leader is the tlc field of the descriptor.
func (t TabStop) Leader() int {
	return int(t.Descriptor>>3) & 0x07
}

// PAP holds the properties of a paragraph.
type PAP struct {
	// Parent is the property set this one was derived from.
	Parent *PAP

	Istd             int
	Jc               int
	FKeep            bool
	FKeepFollow      bool
	FPageBreakBefore bool
	Ilvl             int
	Ilfo             int
	FNoLnn           bool
	DxaRight         int
	DxaLeft          int
	DxaLeft1         int
	LineSpacing      LineSpacing
	DyaBefore        int
	DyaAfter         int
	FInTable         bool
	FTtp             bool
	FWidowControl    bool

	// TabStops is ordered by position.
	TabStops []TabStop
}

// NewPAP returns the properties of a paragraph with no formatting applied.
func NewPAP() *PAP {
	return &PAP{
		FWidowControl: true,
		LineSpacing:   LineSpacing{DyaLine: 240, Multiple: true},
	}
}

func (p *PAP) derive() *PAP {
	child := *p
	child.Parent = p
	child.TabStops = append([]TabStop(nil), p.TabStops...)
	return &child
}

// applyPAP sets one paragraph property. It reports false for opcodes it
// does not handle.
func applyPAP(pap *PAP, op *SprmOperation) (bool, error) {
	v := op.Operand()
	switch op.Opcode {
	case SPRM_PISTD:
		pap.Istd = v
	case SPRM_PJC80, SPRM_PJC:
		pap.Jc = v
	case SPRM_PFKEEP:
		pap.FKeep = v != 0
	case SPRM_PFKEEPFOLLOW:
		pap.FKeepFollow = v != 0
	case SPRM_PFPAGEBREAKBEFORE:
		pap.FPageBreakBefore = v != 0
	case SPRM_PILVL:
		pap.Ilvl = v
	case SPRM_PILFO:
		pap.Ilfo = v
	case SPRM_PFNOLINENUMB:
		pap.FNoLnn = v != 0
	case SPRM_PCHGTABSPAPX:
		return true, changeTabs(pap, op.Payload(), false)
	case SPRM_PCHGTABS:
		return true, changeTabs(pap, op.Payload(), true)
	case SPRM_PDXARIGHT80:
		pap.DxaRight = v
	case SPRM_PDXALEFT80:
		pap.DxaLeft = v
	case SPRM_PDXALEFT180:
		pap.DxaLeft1 = v
	case SPRM_PDYALINE:
		pap.LineSpacing = LineSpacing{DyaLine: int(int16(v)), Multiple: v>>16&0xFFFF != 0}
	case SPRM_PDYABEFORE:
		pap.DyaBefore = v
	case SPRM_PDYAAFTER:
		pap.DyaAfter = v
	case SPRM_PFINTABLE:
		pap.FInTable = v != 0
	case SPRM_PFTTP:
		pap.FTtp = v != 0
	case SPRM_PFWIDOWCONTROL:
		pap.FWidowControl = v != 0
	default:
		return false, nil
	}
	return true, nil
}

// changeTabs deletes and adds tab stops. With tolerances every deleted
// position also removes the tabs within its tolerance.
func changeTabs(pap *PAP, payload []byte, withTolerance bool) error {
	in := util.NewLittleEndianInput(payload)
	del := make([]int, in.ReadUByte())
	for i := range del {
		del[i] = int(in.ReadShort())
	}
	tolerance := make([]int, len(del))
	if withTolerance {
		for i := range tolerance {
			tolerance[i] = int(in.ReadShort())
		}
	}
	add := make([]TabStop, in.ReadUByte())
	for i := range add {
		add[i].Position = int(in.ReadShort())
	}
	for i := range add {
		add[i].Descriptor = byte(in.ReadUByte())
	}
	if in.Err() != nil {
		return in.Err()
	}

	tabs := pap.TabStops[:0]
	for _, t := range pap.TabStops {
		if !deleted(t.Position, del, tolerance) {
			tabs = append(tabs, t)
		}
	}
	for _, a := range add {
		replaced := false
		for i := range tabs {
			if tabs[i].Position == a.Position {
				tabs[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			tabs = append(tabs, a)
		}
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Position < tabs[j].Position })
	pap.TabStops = tabs
	return nil
}

func deleted(pos int, del, tolerance []int) bool {
	for i, d := range del {
		if pos >= d-tolerance[i] && pos <= d+tolerance[i] {
			return true
		}
	}
	return false
}
