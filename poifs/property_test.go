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

package poifs

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/naqvis/poi4go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blackHeight checks the left-leaning red-black rules below h and returns
// the number of black links on every path.
func blackHeight(t *testing.T, pt *PropertyTable, h int) int {
	t.Helper()
	if h == _NO_INDEX {
		return 1
	}
	p := pt.node(h)
	assert.False(t, pt.isRed(p.right), "red right link at %q", p.name)
	if pt.isRed(h) {
		assert.False(t, pt.isRed(p.left), "two red links in a row at %q", p.name)
	}
	left := blackHeight(t, pt, p.left)
	right := blackHeight(t, pt, p.right)
	assert.Equal(t, left, right, "unbalanced at %q", p.name)
	if pt.isRed(h) {
		return left
	}
	return left + 1
}

func assertOrdered(t *testing.T, pt *PropertyTable, parent *Property) {
	t.Helper()
	children := pt.children(parent)
	for i := 1; i < len(children); i++ {
		assert.Negative(t, compareNames(children[i-1].name, children[i].name))
	}
}

func TestCompareNames(t *testing.T) {
	assert.Negative(t, compareNames("Z", "AA"))
	assert.Negative(t, compareNames("AB", "AC"))
	assert.Zero(t, compareNames("workbook", "WorkBook"))
	assert.Positive(t, compareNames("SummaryInformation", "Workbook"))
	assert.Zero(t, compareNames("été", "ÉTÉ"))
	assert.Negative(t, compareNames("\u0005Summary", "\u0005SummaryX"))
}

func TestPropertyTableStaysBalanced(t *testing.T) {
	pt := NewPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, zap.NewNop())
	root := pt.GetRoot()

	names := make([]string, 300)
	for i := range names {
		names[i] = fmt.Sprintf("Entry%d", i)
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	for _, name := range names {
		p, err := NewDocProperty(name, 0)
		require.NoError(t, err)
		require.NoError(t, pt.insert(root, p))
	}
	assert.False(t, pt.isRed(root.child))
	blackHeight(t, pt, root.child)
	assertOrdered(t, pt, root)
	assert.Len(t, pt.children(root), 300)

	for i, name := range names {
		if i%3 == 0 {
			continue
		}
		p, ok := pt.find(root, name)
		require.True(t, ok, name)
		require.NoError(t, pt.remove(root, p))
		pt.removeProperty(p)
		if i%25 == 0 {
			blackHeight(t, pt, root.child)
		}
	}
	blackHeight(t, pt, root.child)
	assertOrdered(t, pt, root)
	assert.Len(t, pt.children(root), 100)

	for i, name := range names {
		_, ok := pt.find(root, name)
		assert.Equal(t, i%3 == 0, ok, name)
	}
}

func TestPropertyTableReusesSlots(t *testing.T) {
	pt := NewPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, zap.NewNop())
	root := pt.GetRoot()
	a, _ := NewDocProperty("A", 0)
	b, _ := NewDocProperty("B", 0)
	require.NoError(t, pt.insert(root, a))
	require.NoError(t, pt.insert(root, b))
	assert.Equal(t, 1, a.GetIndex())
	assert.Equal(t, 2, b.GetIndex())

	require.NoError(t, pt.remove(root, a))
	pt.removeProperty(a)
	c, _ := NewDirProperty("C")
	require.NoError(t, pt.insert(root, c))
	assert.Equal(t, 1, c.GetIndex())

	dup, _ := NewDocProperty("c", 0)
	assert.ErrorIs(t, pt.insert(root, dup), util.ErrState)
	assert.Equal(t, _NO_INDEX, dup.GetIndex())
	assert.ErrorIs(t, pt.remove(root, a), util.ErrState)
}

func TestPropertyTableRoundTrip(t *testing.T) {
	pt := NewPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, zap.NewNop())
	root := pt.GetRoot()
	dir, _ := NewDirProperty("Dir")
	require.NoError(t, pt.insert(root, dir))
	for i := 0; i < 10; i++ {
		p, _ := NewDocProperty(fmt.Sprintf("Doc%d", i), i*100)
		p.startBlock = i
		require.NoError(t, pt.insert(dir, p))
	}
	user, _ := NewDocProperty("\u0005SummaryInformation", 4000)
	user.SetUserFlags(7)
	require.NoError(t, pt.insert(root, user))

	data := pt.serialize()
	assert.Zero(t, len(data)%SMALLER_BIG_BLOCK_SIZE)

	back, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, data, zap.NewNop())
	require.NoError(t, err)
	backRoot := back.GetRoot()
	assert.Equal(t, ROOT_ENTRY_NAME, backRoot.GetName())

	backDir, ok := back.find(backRoot, "DIR")
	require.True(t, ok)
	assert.True(t, backDir.IsDirectory())
	children := back.children(backDir)
	require.Len(t, children, 10)
	for _, c := range children {
		var i int
		_, err := fmt.Sscanf(c.GetName(), "Doc%d", &i)
		require.NoError(t, err)
		assert.Equal(t, i*100, c.GetSize())
		assert.Equal(t, i, c.GetStartBlock())
	}
	backUser, ok := back.find(backRoot, "\u0005SummaryInformation")
	require.True(t, ok)
	assert.Equal(t, 7, backUser.GetUserFlags())
	assert.True(t, backUser.ShouldUseSmallBlocks())
}

func TestLoadRebalancesDegenerateTree(t *testing.T) {
	// a writer that links siblings as a right-leaning list
	pt := NewPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, zap.NewNop())
	root := pt.GetRoot()
	var prev *Property
	for i := 0; i < 40; i++ {
		p, _ := NewDocProperty(fmt.Sprintf("N%02d", i), 0)
		pt.addProperty(p)
		p.nodeColor = _NODE_BLACK
		if prev == nil {
			root.child = p.index
		} else {
			prev.right = p.index
		}
		prev = p
	}
	back, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, pt.serialize(), zap.NewNop())
	require.NoError(t, err)
	blackHeight(t, back, back.GetRoot().child)
	assert.Len(t, back.children(back.GetRoot()), 40)
}

func TestLoadRejectsBrokenTrees(t *testing.T) {
	build := func() *PropertyTable {
		pt := NewPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, zap.NewNop())
		for _, name := range []string{"A", "B", "C"} {
			p, _ := NewDocProperty(name, 0)
			require.NoError(t, pt.insert(pt.GetRoot(), p))
		}
		return pt
	}

	t.Run("out of range", func(t *testing.T) {
		pt := build()
		pt.node(pt.GetRoot().child).left = 77
		_, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, pt.serialize(), zap.NewNop())
		assert.ErrorIs(t, err, util.ErrFormat)
	})
	t.Run("shared child", func(t *testing.T) {
		pt := build()
		top := pt.node(pt.GetRoot().child)
		top.right = top.left
		_, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, pt.serialize(), zap.NewNop())
		assert.ErrorIs(t, err, util.ErrFormat)
	})
	t.Run("duplicate names", func(t *testing.T) {
		pt := build()
		pt.node(pt.GetRoot().child).name = "a"
		_, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, pt.serialize(), zap.NewNop())
		assert.ErrorIs(t, err, util.ErrFormat)
	})
	t.Run("unreachable entries are dropped", func(t *testing.T) {
		pt := build()
		orphan, _ := NewDocProperty("Orphan", 0)
		pt.addProperty(orphan)
		back, err := loadPropertyTable(SMALLER_BIG_BLOCK_SIZE_DETAILS, pt.serialize(), zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, back.entries(), 4)
	})
}

func TestPropertyNames(t *testing.T) {
	_, err := NewDocProperty("", 0)
	assert.ErrorIs(t, err, util.ErrFormat)
	_, err = NewDirProperty("a/b")
	assert.ErrorIs(t, err, util.ErrFormat)

	// 31 code units, the surrogate pair counts twice
	name := "\U0001F600" + "01234567890123456789012345678"
	require.Equal(t, 31, util.UnicodeLength(name))
	p, err := NewDocProperty(name, 0)
	require.NoError(t, err)

	data := make([]byte, PROPERTY_SIZE)
	p.serialize(data, 0)
	assert.Equal(t, 64, util.GetUShort(data, _name_size_offset))
	assert.Equal(t, name, propertyFromBytes(1, data, 0).GetName())

	_, err = NewDocProperty(name+"x", 0)
	assert.ErrorIs(t, err, util.ErrCapacity)
}
