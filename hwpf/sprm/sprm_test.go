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
	"testing"

	"github.com/naqvis/poi4go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// sprm encodes an opcode followed by raw operand bytes.
func sprm(opcode uint16, operand ...byte) []byte {
	return append([]byte{byte(opcode), byte(opcode >> 8)}, operand...)
}

func grpprl(ops ...[]byte) []byte {
	var b []byte
	for _, op := range ops {
		b = append(b, op...)
	}
	return b
}

func TestOperationFields(t *testing.T) {
	it := NewSprmIterator(sprm(SPRM_CHPS, 24, 0), 0)
	require.True(t, it.HasNext())
	op, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 0x43, op.Operation())
	assert.Equal(t, TYPE_CHP, op.Type())
	assert.Equal(t, SPRA_SHORT, op.SizeCode())
	assert.True(t, op.IsSpecial())
	assert.Equal(t, 4, op.Size())
	assert.Equal(t, 24, op.Operand())
	assert.False(t, it.HasNext())
}

func TestOperationSizes(t *testing.T) {
	data := grpprl(
		sprm(SPRM_CFBOLD, 1),
		sprm(SPRM_PDYALINE, 1, 2, 3, 4),
		sprm(0xCA47, 3, 7, 8, 9),
		sprm(SPRM_LONG_TABLE, 5, 0, 1, 2, 3, 4),
		sprm(SPRM_LONG_PARAGRAPH, 3, 0, 6, 7),
		sprm(0xEA3F, 1, 2, 3),
		[]byte{0xFF}, // padding
	)
	it := NewSprmIterator(data, 0)
	var sizes []int
	var payloads [][]byte
	for it.HasNext() {
		op, err := it.Next()
		require.NoError(t, err)
		sizes = append(sizes, op.Size())
		if op.SizeCode() == SPRA_VARIABLE {
			payloads = append(payloads, op.Payload())
		}
		if op.Opcode == 0xEA3F {
			assert.Equal(t, 0x030201, op.Operand())
		}
	}
	assert.Equal(t, []int{3, 6, 6, 8, 6, 5}, sizes)
	assert.Equal(t, [][]byte{{7, 8, 9}, {1, 2, 3, 4}, {6, 7}}, payloads)
}

func TestIteratorOverrun(t *testing.T) {
	tests := map[string][]byte{
		"fixed operand":   sprm(SPRM_CHPS, 24),
		"length byte":     sprm(SPRM_PCHGTABSPAPX),
		"variable":        sprm(SPRM_PCHGTABSPAPX, 4, 1, 2),
		"long length":     sprm(SPRM_LONG_TABLE, 9),
		"long payload":    sprm(SPRM_LONG_TABLE, 9, 0, 1),
		"long zero count": sprm(SPRM_LONG_TABLE, 0, 0),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			it := NewSprmIterator(data, 0)
			require.True(t, it.HasNext())
			_, err := it.Next()
			assert.ErrorIs(t, err, util.ErrFormat)
			assert.False(t, it.HasNext())
		})
	}
}

func TestSetBold(t *testing.T) {
	parent := NewCHP()
	d := NewDecompressor(zaptest.NewLogger(t))
	child, err := d.ApplyCHP(parent, sprm(SPRM_CFBOLD, 1), 0)
	require.NoError(t, err)
	assert.True(t, child.FBold)
	assert.False(t, parent.FBold)
	assert.Same(t, parent, child.Parent)
	assert.Equal(t, parent.Hps, child.Hps)
}

func TestToggleOperands(t *testing.T) {
	tests := []struct {
		parent  bool
		operand byte
		want    bool
	}{
		{false, 0x00, false},
		{true, 0x00, false},
		{false, 0x01, true},
		{true, 0x01, true},
		{false, 0x80, false},
		{true, 0x80, true},
		{false, 0x81, true},
		{true, 0x81, false},
		{true, 0x42, false},
	}
	d := NewDecompressor(zaptest.NewLogger(t))
	for _, tt := range tests {
		parent := NewCHP()
		parent.FItalic = tt.parent
		child, err := d.ApplyCHP(parent, sprm(SPRM_CFITALIC, tt.operand), 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, child.FItalic, "parent %v operand 0x%02X", tt.parent, tt.operand)
		assert.Equal(t, tt.parent, parent.FItalic)
	}
}

func TestPlainResetsToParent(t *testing.T) {
	parent := NewCHP()
	parent.FBold = true
	parent.Hps = 24
	d := NewDecompressor(zaptest.NewLogger(t))
	child, err := d.ApplyCHP(parent, grpprl(
		sprm(SPRM_CFITALIC, 1),
		sprm(SPRM_CFBOLD, 0),
		sprm(SPRM_CFSPEC, 1),
		sprm(SPRM_CHPS, 40, 0),
		sprm(SPRM_CPLAIN, 0),
		sprm(SPRM_CFSTRIKE, 1),
	), 0)
	require.NoError(t, err)
	assert.False(t, child.FItalic)
	assert.True(t, child.FBold)
	assert.Equal(t, 24, child.Hps)
	assert.True(t, child.FSpec)
	assert.True(t, child.FStrike)
	assert.Equal(t, []uint16{SPRM_CPLAIN}, child.Resets)
	assert.Same(t, parent, child.Parent)
	assert.Empty(t, parent.Resets)
	assert.False(t, parent.FSpec)
}

func TestFontSizeIncrementClamps(t *testing.T) {
	parent := NewCHP()
	parent.Hps = 6
	d := NewDecompressor(zaptest.NewLogger(t))

	child, err := d.ApplyCHP(parent, sprm(SPRM_CHPSINC, 0xFB), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, child.Hps)

	child, err = d.ApplyCHP(parent, sprm(SPRM_CHPSINC, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, child.Hps)

	child, err = d.ApplyCHP(parent, sprm(SPRM_CHPS, 0, 0), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, child.Hps)
}

func TestUnknownOpcodesAreSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDecompressor(zap.New(core))
	child, err := d.ApplyCHP(nil, grpprl(
		sprm(0x0857, 1),
		sprm(SPRM_PJC, 2),
		sprm(SPRM_CICO, 6),
	), 0)
	require.NoError(t, err)
	assert.Equal(t, 6, child.Ico)
	assert.Equal(t, 1, logs.FilterMessage("unknown character sprm").Len())
	assert.Equal(t, 1, logs.FilterMessage("sprm of another group in a chpx").Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestApplyCHPOffsetAndErrors(t *testing.T) {
	d := NewDecompressor(zaptest.NewLogger(t))
	data := append([]byte{0xAA, 0xBB}, sprm(SPRM_CKUL, 3)...)
	child, err := d.ApplyCHP(nil, data, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, child.Kul)

	_, err = d.ApplyCHP(nil, sprm(SPRM_CCV, 1, 2), 0)
	assert.ErrorIs(t, err, util.ErrFormat)
}

func TestApplyPAP(t *testing.T) {
	parent := NewPAP()
	parent.TabStops = []TabStop{{Position: 720}, {Position: 1000}}
	d := NewDecompressor(zaptest.NewLogger(t))

	tabs := []byte{1, 0xD0, 0x02, 2, 0xA0, 0x05, 0x40, 0x0B, 0x01, 0x0A}
	pap, err := d.ApplyPAP(parent, grpprl(
		sprm(SPRM_PISTD, 2, 0),
		sprm(SPRM_PJC, 1),
		sprm(SPRM_PDXALEFT80, 0x98, 0xFE),
		sprm(SPRM_PDYALINE, 0x68, 0x01, 0x01, 0x00),
		sprm(SPRM_PDYABEFORE, 0xF0, 0x00),
		sprm(SPRM_PFKEEPFOLLOW, 1),
		sprm(SPRM_PFWIDOWCONTROL, 0),
		sprm(0x5400, 1, 0),
		sprm(SPRM_PCHGTABSPAPX, append([]byte{byte(len(tabs))}, tabs...)...),
	), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, pap.Istd)
	assert.Equal(t, 1, pap.Jc)
	assert.Equal(t, -360, pap.DxaLeft)
	assert.Equal(t, LineSpacing{DyaLine: 360, Multiple: true}, pap.LineSpacing)
	assert.Equal(t, 240, pap.DyaBefore)
	assert.True(t, pap.FKeepFollow)
	assert.False(t, pap.FWidowControl)
	assert.Equal(t, []TabStop{{1000, 0}, {1440, 0x01}, {2880, 0x0A}}, pap.TabStops)
	assert.Equal(t, 2, pap.TabStops[2].Alignment())
	assert.Equal(t, 1, pap.TabStops[2].Leader())

	assert.Same(t, parent, pap.Parent)
	assert.Equal(t, []TabStop{{Position: 720}, {Position: 1000}}, parent.TabStops)
	assert.True(t, parent.FWidowControl)
}

func TestChangeTabsWithTolerance(t *testing.T) {
	parent := NewPAP()
	parent.TabStops = []TabStop{{Position: 700}, {Position: 1000}, {Position: 2000}}
	// delete 720 give or take 30, add nothing
	payload := []byte{1, 0xD0, 0x02, 30, 0, 0}
	data := sprm(SPRM_PCHGTABS, append([]byte{byte(len(payload) + 1), 0}, payload...)...)

	pap, err := NewDecompressor(zaptest.NewLogger(t)).ApplyPAP(parent, data, 0)
	require.NoError(t, err)
	assert.Equal(t, []TabStop{{Position: 1000}, {Position: 2000}}, pap.TabStops)
	assert.Len(t, parent.TabStops, 3)
}

func TestTruncatedTabs(t *testing.T) {
	_, err := NewDecompressor(zaptest.NewLogger(t)).ApplyPAP(nil, sprm(SPRM_PCHGTABSPAPX, 2, 3, 0), 0)
	assert.ErrorIs(t, err, util.ErrFormat)
}

func TestCompressCHP(t *testing.T) {
	old := NewCHP()
	assert.Empty(t, CompressCHP(old, old))

	want := *old
	want.FBold = true
	want.FCaps = true
	want.FcPic = 0x1234
	want.Istd = 11
	want.Hps = 28
	want.HpsPos = -6
	want.Kul = 1
	want.FtcAscii = 3
	want.LidDefault = 0x0409
	want.Cv = 0x00FF8000
	// implied by the picture location
	want.FSpec = true

	data := CompressCHP(&want, old)
	assert.NotContains(t, string(data), string(sprm(SPRM_CFSPEC, 1)))
	got, err := NewDecompressor(zaptest.NewLogger(t)).ApplyCHP(old, data, 0)
	require.NoError(t, err)
	got.Parent = nil
	assert.Equal(t, &want, got)

	// clearing fSpec again needs its own sprm
	want.FSpec = false
	got, err = NewDecompressor(zaptest.NewLogger(t)).ApplyCHP(old, CompressCHP(&want, old), 0)
	require.NoError(t, err)
	assert.False(t, got.FSpec)
	assert.Equal(t, 0x1234, got.FcPic)
}
