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
	"github.com/naqvis/poi4go/util"
)

// addSprm writes one fixed size operation.
func addSprm(out *util.LittleEndianOutput, opcode uint16, operand int) {
	out.WriteShort(int(opcode))
	switch operandSize(int(opcode >> 13)) {
	case 1:
		out.WriteUByte(operand)
	case 2:
		out.WriteShort(operand)
	case 3:
		out.WriteUByte(operand)
		out.WriteShort(operand >> 8)
	case 4:
		out.WriteInt(operand)
	}
}

func boolOperand(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CompressCHP returns the grpprl that turns oldCHP into newCHP when
// applied with oldCHP as the parent. Only differing properties are
// written.
func CompressCHP(newCHP, oldCHP *CHP) []byte {
	out := util.NewLittleEndianOutput(0)
	flags := []struct {
		opcode   uint16
		to, from bool
	}{
		{SPRM_CFRMARKDEL, newCHP.FRMarkDel, oldCHP.FRMarkDel},
		{SPRM_CFRMARK, newCHP.FRMark, oldCHP.FRMark},
		{SPRM_CFFLDVANISH, newCHP.FFldVanish, oldCHP.FFldVanish},
		{SPRM_CFDATA, newCHP.FData, oldCHP.FData},
		{SPRM_CFOLE2, newCHP.FOle2, oldCHP.FOle2},
		{SPRM_CFBOLD, newCHP.FBold, oldCHP.FBold},
		{SPRM_CFITALIC, newCHP.FItalic, oldCHP.FItalic},
		{SPRM_CFSTRIKE, newCHP.FStrike, oldCHP.FStrike},
		{SPRM_CFOUTLINE, newCHP.FOutline, oldCHP.FOutline},
		{SPRM_CFSHADOW, newCHP.FShadow, oldCHP.FShadow},
		{SPRM_CFSMALLCAPS, newCHP.FSmallCaps, oldCHP.FSmallCaps},
		{SPRM_CFCAPS, newCHP.FCaps, oldCHP.FCaps},
		{SPRM_CFVANISH, newCHP.FVanish, oldCHP.FVanish},
		{SPRM_CFDSTRIKE, newCHP.FDStrike, oldCHP.FDStrike},
		{SPRM_CFIMPRINT, newCHP.FImprint, oldCHP.FImprint},
		{SPRM_CFOBJ, newCHP.FObj, oldCHP.FObj},
		{SPRM_CFEMBOSS, newCHP.FEmboss, oldCHP.FEmboss},
	}
	for _, f := range flags {
		if f.to != f.from {
			addSprm(out, f.opcode, boolOperand(f.to))
		}
	}

	// the picture location also sets fSpec
	fSpec := oldCHP.FSpec
	if newCHP.FcPic != oldCHP.FcPic {
		addSprm(out, SPRM_CPICLOCATION, newCHP.FcPic)
		fSpec = true
	}
	if newCHP.FSpec != fSpec {
		addSprm(out, SPRM_CFSPEC, boolOperand(newCHP.FSpec))
	}

	values := []struct {
		opcode   uint16
		to, from int
	}{
		{SPRM_CISTD, newCHP.Istd, oldCHP.Istd},
		{SPRM_CKUL, newCHP.Kul, oldCHP.Kul},
		{SPRM_CICO, newCHP.Ico, oldCHP.Ico},
		{SPRM_CHPS, newCHP.Hps, oldCHP.Hps},
		{SPRM_CHPSPOS, newCHP.HpsPos, oldCHP.HpsPos},
		{SPRM_CISS, newCHP.Iss, oldCHP.Iss},
		{SPRM_CRGFTC0, newCHP.FtcAscii, oldCHP.FtcAscii},
		{SPRM_CRGFTC1, newCHP.FtcFE, oldCHP.FtcFE},
		{SPRM_CRGFTC2, newCHP.FtcOther, oldCHP.FtcOther},
		{SPRM_CRGLID0, newCHP.LidDefault, oldCHP.LidDefault},
		{SPRM_CRGLID1, newCHP.LidFE, oldCHP.LidFE},
		{SPRM_CCV, int(newCHP.Cv), int(oldCHP.Cv)},
	}
	for _, v := range values {
		if v.to != v.from {
			addSprm(out, v.opcode, v.to)
		}
	}
	return out.Bytes()
}
