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

// Character opcodes.
const (
	SPRM_CFRMARKDEL   uint16 = 0x0800
	SPRM_CFRMARK      uint16 = 0x0801
	SPRM_CFFLDVANISH  uint16 = 0x0802
	SPRM_CPICLOCATION uint16 = 0x6A03
	SPRM_CFDATA       uint16 = 0x0806
	SPRM_CFOLE2       uint16 = 0x080A
	SPRM_CISTD        uint16 = 0x4A30
	SPRM_CPLAIN       uint16 = 0x2A33
	SPRM_CFBOLD       uint16 = 0x0835
	SPRM_CFITALIC     uint16 = 0x0836
	SPRM_CFSTRIKE     uint16 = 0x0837
	SPRM_CFOUTLINE    uint16 = 0x0838
	SPRM_CFSHADOW     uint16 = 0x0839
	SPRM_CFSMALLCAPS  uint16 = 0x083A
	SPRM_CFCAPS       uint16 = 0x083B
	SPRM_CFVANISH     uint16 = 0x083C
	SPRM_CKUL         uint16 = 0x2A3E
	SPRM_CICO         uint16 = 0x2A42
	SPRM_CHPS         uint16 = 0x4A43
	SPRM_CHPSINC      uint16 = 0x2A44
	SPRM_CHPSPOS      uint16 = 0x4845
	SPRM_CISS         uint16 = 0x2A48
	SPRM_CRGFTC0      uint16 = 0x4A4F
	SPRM_CRGFTC1      uint16 = 0x4A50
	SPRM_CRGFTC2      uint16 = 0x4A51
	SPRM_CFDSTRIKE    uint16 = 0x2A53
	SPRM_CFIMPRINT    uint16 = 0x0854
	SPRM_CFSPEC       uint16 = 0x0855
	SPRM_CFOBJ        uint16 = 0x0856
	SPRM_CFEMBOSS     uint16 = 0x0858
	SPRM_CRGLID0      uint16 = 0x486D
	SPRM_CRGLID1      uint16 = 0x486E
	SPRM_CCV          uint16 = 0x6870

	// smallest font size, in half points
	_min_hps = 2
)

// CHP holds the character properties of a run.
type CHP struct {
	// Parent is the property set this one was derived from.
	Parent *CHP

	Istd       int
	FRMarkDel  bool
	FRMark     bool
	FFldVanish bool
	FcPic      int
	FData      bool
	FOle2      bool
	FBold      bool
	FItalic    bool
	FStrike    bool
	FOutline   bool
	FShadow    bool
	FSmallCaps bool
	FCaps      bool
	FVanish    bool
	FDStrike   bool
	FImprint   bool
	FSpec      bool
	FObj       bool
	FEmboss    bool
	Kul        int
	Ico        int
	Hps        int
	HpsPos     int
	Iss        int
	FtcAscii   int
	FtcFE      int
	FtcOther   int
	LidDefault int
	LidFE      int
	Cv         uint32

	// Resets lists the opcodes that restored the parent's properties.
	Resets []uint16
}

// NewCHP returns the properties of text with no formatting applied.
func NewCHP() *CHP {
	return &CHP{
		Istd:       10,
		FcPic:      -1,
		Hps:        20,
		LidDefault: 0x0400,
		LidFE:      0x0400,
	}
}

// derive returns a copy of c whose parent is c.
func (c *CHP) derive() *CHP {
	child := *c
	child.Parent = c
	child.Resets = nil
	return &child
}

// flag decodes a toggle operand against the parent value.
func flag(operand int, parent bool) bool {
	switch operand {
	case 0x00:
		return false
	case 0x01:
		return true
	case 0x80:
		return parent
	case 0x81:
		return !parent
	}
	return false
}

// applyCHP sets one character property. It reports false for opcodes it
// does not handle.
func applyCHP(chp, parent *CHP, op *SprmOperation) bool {
	v := op.Operand()
	switch op.Opcode {
	case SPRM_CFRMARKDEL:
		chp.FRMarkDel = v != 0
	case SPRM_CFRMARK:
		chp.FRMark = v != 0
	case SPRM_CFFLDVANISH:
		chp.FFldVanish = v != 0
	case SPRM_CPICLOCATION:
		chp.FcPic = v
		chp.FSpec = true
	case SPRM_CFDATA:
		chp.FData = v != 0
	case SPRM_CFOLE2:
		chp.FOle2 = v != 0
	case SPRM_CISTD:
		chp.Istd = v
	case SPRM_CPLAIN:
		fSpec := chp.FSpec
		resets := append(chp.Resets, op.Opcode)
		*chp = *parent
		chp.Parent = parent
		chp.FSpec = fSpec
		chp.Resets = resets
	case SPRM_CFBOLD:
		chp.FBold = flag(v, parent.FBold)
	case SPRM_CFITALIC:
		chp.FItalic = flag(v, parent.FItalic)
	case SPRM_CFSTRIKE:
		chp.FStrike = flag(v, parent.FStrike)
	case SPRM_CFOUTLINE:
		chp.FOutline = flag(v, parent.FOutline)
	case SPRM_CFSHADOW:
		chp.FShadow = flag(v, parent.FShadow)
	case SPRM_CFSMALLCAPS:
		chp.FSmallCaps = flag(v, parent.FSmallCaps)
	case SPRM_CFCAPS:
		chp.FCaps = flag(v, parent.FCaps)
	case SPRM_CFVANISH:
		chp.FVanish = flag(v, parent.FVanish)
	case SPRM_CFDSTRIKE:
		chp.FDStrike = flag(v, parent.FDStrike)
	case SPRM_CFIMPRINT:
		chp.FImprint = flag(v, parent.FImprint)
	case SPRM_CFSPEC:
		chp.FSpec = v != 0
	case SPRM_CFOBJ:
		chp.FObj = v != 0
	case SPRM_CFEMBOSS:
		chp.FEmboss = flag(v, parent.FEmboss)
	case SPRM_CKUL:
		chp.Kul = v
	case SPRM_CICO:
		chp.Ico = v
	case SPRM_CHPS:
		chp.Hps = max(v, _min_hps)
	case SPRM_CHPSINC:
		// signed steps of one point
		chp.Hps = max(chp.Hps+int(int8(v))*2, _min_hps)
	case SPRM_CHPSPOS:
		chp.HpsPos = v
	case SPRM_CISS:
		chp.Iss = v
	case SPRM_CRGFTC0:
		chp.FtcAscii = v
	case SPRM_CRGFTC1:
		chp.FtcFE = v
	case SPRM_CRGFTC2:
		chp.FtcOther = v
	case SPRM_CRGLID0:
		chp.LidDefault = v
	case SPRM_CRGLID1:
		chp.LidFE = v
	case SPRM_CCV:
		chp.Cv = uint32(v)
	default:
		return false
	}
	return true
}
