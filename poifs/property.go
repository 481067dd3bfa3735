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
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/naqvis/poi4go/util"
	"go.uber.org/zap"
)

var (
	_max_name_length int = _name_size_offset/util.SHORT_SIZE - 1
)

const (
	_name_size_offset int = 0x40
	_NO_INDEX             = -1

	// useful offsets
	_node_color_offset     = 0x43
	_left_property_offset  = 0x44
	_right_property_offset = 0x48
	_child_property_offset = 0x4C
	_storage_clsid_offset  = 0x50
	_user_flags_offset     = 0x60
	_start_block_offset    = 0x74
	_size_offset           = 0x78

	// node colors
	_NODE_BLACK byte = 1
	_NODE_RED   byte = 0

	PROPERTY_TYPE_OFFSET int = 0x42
	DIRECTORY_TYPE           = 1
	DOCUMENT_TYPE            = 2
	ROOT_TYPE                = 5

	ROOT_ENTRY_NAME = "Root Entry"
)

// Property is one 128 byte directory entry. Tree links are indices into
// the owning PropertyTable.
type Property struct {
	name         string
	propertyType byte
	nodeColor    byte
	left         int
	right        int
	child        int
	clsid        ClassID
	userFlags    int
	startBlock   int
	size         int
	index        int
	// raw_data keeps the fields this package does not interpret (the
	// timestamps) so they are written back unchanged
	raw_data []byte
}

func newProperty(name string, propertyType byte) (*Property, error) {
	p := &Property{
		propertyType: propertyType,
		nodeColor:    _NODE_BLACK,
		left:         _NO_INDEX,
		right:        _NO_INDEX,
		child:        _NO_INDEX,
		startBlock:   END_OF_CHAIN,
		index:        _NO_INDEX,
		raw_data:     make([]byte, PROPERTY_SIZE),
	}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	return p, nil
}

func NewDocProperty(name string, size int) (*Property, error) {
	p, err := newProperty(name, DOCUMENT_TYPE)
	if err != nil {
		return nil, err
	}
	p.size = size
	return p, nil
}

func NewDirProperty(name string) (*Property, error) {
	return newProperty(name, DIRECTORY_TYPE)
}

func NewRootProperty() *Property {
	p, _ := newProperty(ROOT_ENTRY_NAME, ROOT_TYPE)
	return p
}

func propertyFromBytes(index int, data []byte, offset int) *Property {
	raw := make([]byte, PROPERTY_SIZE)
	copy(raw, data[offset:offset+PROPERTY_SIZE])

	nameLength := NewShortFieldFromBytes(_name_size_offset, raw).Get()/util.SHORT_SIZE - 1
	if nameLength < 0 {
		nameLength = 0
	}
	if nameLength > _max_name_length {
		nameLength = _max_name_length
	}
	return &Property{
		name:         util.GetFromUnicodeLE(raw, 0, nameLength),
		propertyType: NewByteFieldFromBytes(PROPERTY_TYPE_OFFSET, raw).Get(),
		nodeColor:    NewByteFieldFromBytes(_node_color_offset, raw).Get(),
		left:         NewIntegerFieldFromBytes(_left_property_offset, raw).Get(),
		right:        NewIntegerFieldFromBytes(_right_property_offset, raw).Get(),
		child:        NewIntegerFieldFromBytes(_child_property_offset, raw).Get(),
		clsid:        ClassIDFromBytes(raw, _storage_clsid_offset),
		userFlags:    NewIntegerFieldFromBytes(_user_flags_offset, raw).Get(),
		startBlock:   NewIntegerFieldFromBytes(_start_block_offset, raw).Get(),
		size:         int(util.GetUInt(raw, _size_offset)),
		index:        index,
		raw_data:     raw,
	}
}

func (p *Property) serialize(data []byte, offset int) {
	raw := p.raw_data
	for i := 0; i < _name_size_offset; i++ {
		raw[i] = 0
	}
	units := utf16.Encode([]rune(p.name))
	for i, u := range units {
		util.PutShort(raw, i*util.SHORT_SIZE, int(u))
	}
	NewShortField(_name_size_offset, (len(units)+1)*util.SHORT_SIZE, raw)
	NewByteField(PROPERTY_TYPE_OFFSET, p.propertyType, raw)
	NewByteField(_node_color_offset, p.nodeColor, raw)
	NewIntegerField(_left_property_offset, p.left, raw)
	NewIntegerField(_right_property_offset, p.right, raw)
	NewIntegerField(_child_property_offset, p.child, raw)
	p.clsid.Write(raw, _storage_clsid_offset)
	NewIntegerField(_user_flags_offset, p.userFlags, raw)
	NewIntegerField(_start_block_offset, p.startBlock, raw)
	util.PutUInt(raw, _size_offset, uint32(p.size))
	NewIntegerField(_size_offset+util.INT_SIZE, 0, raw)
	copy(data[offset:], raw)
}

// writeEmptyProperty fills an unused directory slot.
func writeEmptyProperty(data []byte, offset int) {
	slot := data[offset : offset+PROPERTY_SIZE]
	for i := range slot {
		slot[i] = 0
	}
	util.PutInt(slot, _left_property_offset, _NO_INDEX)
	util.PutInt(slot, _right_property_offset, _NO_INDEX)
	util.PutInt(slot, _child_property_offset, _NO_INDEX)
}

func validateName(name string) error {
	if name == "" {
		return util.FormatErrorf("entry name must not be empty")
	}
	if strings.ContainsRune(name, '/') {
		return util.FormatErrorf("entry name %q must not contain '/'", name)
	}
	if n := util.UnicodeLength(name); n > _max_name_length {
		return util.CapacityErrorf("entry name %q has %d characters, at most %d are allowed",
			name, n, _max_name_length)
	}
	return nil
}

func (p *Property) GetName() string {
	return p.name
}

func (p *Property) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	p.name = name
	return nil
}

func (p *Property) GetSize() int {
	return p.size
}

func (p *Property) GetStartBlock() int {
	return p.startBlock
}

func (p *Property) GetIndex() int {
	return p.index
}

func (p *Property) IsDirectory() bool {
	return p.propertyType == DIRECTORY_TYPE || p.propertyType == ROOT_TYPE
}

func (p *Property) IsRoot() bool {
	return p.propertyType == ROOT_TYPE
}

func (p *Property) GetStorageClsid() ClassID {
	return p.clsid
}

func (p *Property) SetStorageClsid(cid ClassID) {
	p.clsid = cid
}

func (p *Property) GetUserFlags() int {
	return p.userFlags
}

func (p *Property) SetUserFlags(flags int) {
	p.userFlags = flags
}

// ShouldUseSmallBlocks reports whether a stream of this size belongs in
// the mini stream. The root entry always lives in big blocks.
func (p *Property) ShouldUseSmallBlocks() bool {
	return !p.IsDirectory() && isSmall(p.size)
}

func isSmall(length int) bool {
	return length < BIG_BLOCK_MINIMUM_DOCUMENT_SIZE
}

func upperUnit(u uint16) uint16 {
	if u >= 0xD800 && u <= 0xDFFF {
		return u
	}
	up := unicode.ToUpper(rune(u))
	if up > 0xFFFF {
		return u
	}
	return uint16(up)
}

// compareNames orders siblings: shorter names first, then by upper-cased
// UTF-16 code units. Names that differ only in case compare equal.
func compareNames(a, b string) int {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	if len(ua) != len(ub) {
		return len(ua) - len(ub)
	}
	for i := range ua {
		ca, cb := upperUnit(ua[i]), upperUnit(ub[i])
		if ca != cb {
			return int(ca) - int(cb)
		}
	}
	return 0
}

// PropertyTable is the directory: an arena of entries where slot 0 is the
// root storage. Deleted entries leave a nil slot that the next new entry
// reuses. Children of a storage form a left-leaning red-black tree.
type PropertyTable struct {
	bigBlockSize POIFSBigBlockSize
	properties   []*Property
	log          *zap.Logger
}

func NewPropertyTable(bigBlockSize POIFSBigBlockSize, log *zap.Logger) *PropertyTable {
	pt := &PropertyTable{bigBlockSize: bigBlockSize, log: log}
	pt.addProperty(NewRootProperty())
	return pt
}

// loadPropertyTable decodes the directory stream and rebuilds every
// storage's child tree.
func loadPropertyTable(bigBlockSize POIFSBigBlockSize, data []byte, log *zap.Logger) (*PropertyTable, error) {
	pt := &PropertyTable{bigBlockSize: bigBlockSize, log: log}
	n := len(data) / PROPERTY_SIZE
	pt.properties = make([]*Property, n)
	for i := 0; i < n; i++ {
		offset := i * PROPERTY_SIZE
		switch data[offset+PROPERTY_TYPE_OFFSET] {
		case DIRECTORY_TYPE, DOCUMENT_TYPE, ROOT_TYPE:
			pt.properties[i] = propertyFromBytes(i, data, offset)
		case 0:
		default:
			log.Debug("skipping directory entry of unsupported type",
				zap.Int("index", i), zap.Uint8("type", data[offset+PROPERTY_TYPE_OFFSET]))
		}
	}
	if n == 0 || pt.properties[0] == nil || !pt.properties[0].IsRoot() {
		return nil, util.FormatErrorf("directory: entry 0 is not the root storage")
	}

	seen := make([]bool, n)
	seen[0] = true
	if err := pt.rebuild(pt.properties[0], seen); err != nil {
		return nil, err
	}
	for i, p := range pt.properties {
		if p != nil && !seen[i] {
			log.Debug("dropping unreachable directory entry",
				zap.Int("index", i), zap.String("name", p.name))
			pt.properties[i] = nil
		}
	}
	return pt, nil
}

// rebuild collects the children stored under storage in whatever tree
// shape the writer used and re-inserts them into a balanced tree.
func (pt *PropertyTable) rebuild(storage *Property, seen []bool) error {
	var members []*Property
	var collect func(idx int) error
	collect = func(idx int) error {
		if idx == _NO_INDEX {
			return nil
		}
		if idx < 0 || idx >= len(pt.properties) || pt.properties[idx] == nil {
			return util.FormatErrorf("directory: %q refers to missing entry %d", storage.name, idx)
		}
		if seen[idx] {
			return util.FormatErrorf("directory: entry %d is linked more than once", idx)
		}
		seen[idx] = true
		p := pt.properties[idx]
		members = append(members, p)
		if err := collect(p.left); err != nil {
			return err
		}
		return collect(p.right)
	}
	if err := collect(storage.child); err != nil {
		return err
	}

	storage.child = _NO_INDEX
	for _, m := range members {
		if err := pt.insert(storage, m); err != nil {
			return util.FormatErrorf("directory: %v", err)
		}
	}
	for _, m := range members {
		if m.IsDirectory() {
			if err := pt.rebuild(m, seen); err != nil {
				return err
			}
		} else if m.child != _NO_INDEX {
			pt.log.Debug("ignoring child pointer of stream entry", zap.String("name", m.name))
			m.child = _NO_INDEX
		}
	}
	return nil
}

func (pt *PropertyTable) GetRoot() *Property {
	return pt.properties[0]
}

func (pt *PropertyTable) node(index int) *Property {
	return pt.properties[index]
}

// addProperty places p in the first free slot.
func (pt *PropertyTable) addProperty(p *Property) {
	for i := 1; i < len(pt.properties); i++ {
		if pt.properties[i] == nil {
			pt.properties[i] = p
			p.index = i
			return
		}
	}
	p.index = len(pt.properties)
	pt.properties = append(pt.properties, p)
}

func (pt *PropertyTable) removeProperty(p *Property) {
	if p.index > 0 && p.index < len(pt.properties) && pt.properties[p.index] == p {
		pt.properties[p.index] = nil
	}
	p.index = _NO_INDEX
}

// entries returns all live entries.
func (pt *PropertyTable) entries() []*Property {
	out := make([]*Property, 0, len(pt.properties))
	for _, p := range pt.properties {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (pt *PropertyTable) isRed(index int) bool {
	return index != _NO_INDEX && pt.properties[index].nodeColor == _NODE_RED
}

func (pt *PropertyTable) leftOf(index int) int {
	if index == _NO_INDEX {
		return _NO_INDEX
	}
	return pt.properties[index].left
}

func (pt *PropertyTable) rotateLeft(h int) int {
	hp := pt.node(h)
	x := hp.right
	xp := pt.node(x)
	hp.right = xp.left
	xp.left = h
	xp.nodeColor = hp.nodeColor
	hp.nodeColor = _NODE_RED
	return x
}

func (pt *PropertyTable) rotateRight(h int) int {
	hp := pt.node(h)
	x := hp.left
	xp := pt.node(x)
	hp.left = xp.right
	xp.right = h
	xp.nodeColor = hp.nodeColor
	hp.nodeColor = _NODE_RED
	return x
}

func (pt *PropertyTable) flipColors(h int) {
	hp := pt.node(h)
	hp.nodeColor ^= 1
	pt.node(hp.left).nodeColor ^= 1
	pt.node(hp.right).nodeColor ^= 1
}

func (pt *PropertyTable) balance(h int) int {
	if pt.isRed(pt.node(h).right) && !pt.isRed(pt.node(h).left) {
		h = pt.rotateLeft(h)
	}
	if pt.isRed(pt.node(h).left) && pt.isRed(pt.leftOf(pt.node(h).left)) {
		h = pt.rotateRight(h)
	}
	if pt.isRed(pt.node(h).left) && pt.isRed(pt.node(h).right) {
		pt.flipColors(h)
	}
	return h
}

func (pt *PropertyTable) moveRedLeft(h int) int {
	pt.flipColors(h)
	if pt.isRed(pt.leftOf(pt.node(h).right)) {
		hp := pt.node(h)
		hp.right = pt.rotateRight(hp.right)
		h = pt.rotateLeft(h)
		pt.flipColors(h)
	}
	return h
}

func (pt *PropertyTable) moveRedRight(h int) int {
	pt.flipColors(h)
	if pt.isRed(pt.leftOf(pt.node(h).left)) {
		h = pt.rotateRight(h)
		pt.flipColors(h)
	}
	return h
}

// insert adds p (placing it in the arena if needed) under parent.
func (pt *PropertyTable) insert(parent, p *Property) error {
	if p.index == _NO_INDEX {
		if _, exists := pt.find(parent, p.name); exists {
			return util.StateErrorf("%q already contains an entry named %q", parent.name, p.name)
		}
		pt.addProperty(p)
	}
	p.left, p.right = _NO_INDEX, _NO_INDEX
	p.nodeColor = _NODE_RED
	root, err := pt.insertNode(parent.child, p)
	if err != nil {
		return err
	}
	parent.child = root
	pt.node(root).nodeColor = _NODE_BLACK
	return nil
}

func (pt *PropertyTable) insertNode(h int, p *Property) (int, error) {
	if h == _NO_INDEX {
		return p.index, nil
	}
	hp := pt.node(h)
	c := compareNames(p.name, hp.name)
	switch {
	case c < 0:
		l, err := pt.insertNode(hp.left, p)
		if err != nil {
			return h, err
		}
		hp.left = l
	case c > 0:
		r, err := pt.insertNode(hp.right, p)
		if err != nil {
			return h, err
		}
		hp.right = r
	default:
		return h, util.StateErrorf("an entry named %q already exists", hp.name)
	}
	return pt.balance(h), nil
}

// find looks name up among the children of parent, ignoring case.
func (pt *PropertyTable) find(parent *Property, name string) (*Property, bool) {
	for i := parent.child; i != _NO_INDEX; {
		p := pt.node(i)
		c := compareNames(name, p.name)
		if c == 0 {
			return p, true
		}
		if c < 0 {
			i = p.left
		} else {
			i = p.right
		}
	}
	return nil, false
}

// remove unlinks p from the child tree of parent. p stays in the arena.
func (pt *PropertyTable) remove(parent, p *Property) error {
	if found, ok := pt.find(parent, p.name); !ok || found != p {
		return util.StateErrorf("%q is not an entry of %q", p.name, parent.name)
	}
	root := parent.child
	rp := pt.node(root)
	if !pt.isRed(rp.left) && !pt.isRed(rp.right) {
		rp.nodeColor = _NODE_RED
	}
	root = pt.deleteNode(root, p.name)
	if root != _NO_INDEX {
		pt.node(root).nodeColor = _NODE_BLACK
	}
	parent.child = root
	p.left, p.right = _NO_INDEX, _NO_INDEX
	return nil
}

func (pt *PropertyTable) deleteNode(h int, name string) int {
	if compareNames(name, pt.node(h).name) < 0 {
		hp := pt.node(h)
		if !pt.isRed(hp.left) && !pt.isRed(pt.leftOf(hp.left)) {
			h = pt.moveRedLeft(h)
		}
		hp = pt.node(h)
		hp.left = pt.deleteNode(hp.left, name)
	} else {
		if pt.isRed(pt.node(h).left) {
			h = pt.rotateRight(h)
		}
		hp := pt.node(h)
		if compareNames(name, hp.name) == 0 && hp.right == _NO_INDEX {
			return _NO_INDEX
		}
		if !pt.isRed(hp.right) && !pt.isRed(pt.leftOf(hp.right)) {
			h = pt.moveRedRight(h)
		}
		hp = pt.node(h)
		if compareNames(name, hp.name) == 0 {
			// the successor takes the place of the removed entry
			x := pt.minNode(hp.right)
			rest := pt.deleteMin(hp.right)
			xp := pt.node(x)
			xp.left = hp.left
			xp.right = rest
			xp.nodeColor = hp.nodeColor
			h = x
		} else {
			hp.right = pt.deleteNode(hp.right, name)
		}
	}
	return pt.balance(h)
}

func (pt *PropertyTable) minNode(h int) int {
	for pt.node(h).left != _NO_INDEX {
		h = pt.node(h).left
	}
	return h
}

func (pt *PropertyTable) deleteMin(h int) int {
	hp := pt.node(h)
	if hp.left == _NO_INDEX {
		return _NO_INDEX
	}
	if !pt.isRed(hp.left) && !pt.isRed(pt.leftOf(hp.left)) {
		h = pt.moveRedLeft(h)
	}
	hp = pt.node(h)
	hp.left = pt.deleteMin(hp.left)
	return pt.balance(h)
}

// children lists the entries of parent in comparator order.
func (pt *PropertyTable) children(parent *Property) []*Property {
	var out []*Property
	var stack []int
	for i := parent.child; i != _NO_INDEX || len(stack) > 0; {
		for i != _NO_INDEX {
			stack = append(stack, i)
			i = pt.node(i).left
		}
		i = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, pt.node(i))
		i = pt.node(i).right
	}
	return out
}

// rename moves p to its new position in the tree of parent.
func (pt *PropertyTable) rename(parent, p *Property, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}
	if compareNames(newName, p.name) == 0 {
		p.name = newName
		return nil
	}
	if _, exists := pt.find(parent, newName); exists {
		return util.StateErrorf("%q already contains an entry named %q", parent.name, newName)
	}
	if err := pt.remove(parent, p); err != nil {
		return err
	}
	p.name = newName
	return pt.insert(parent, p)
}

// serialize lays the arena out in whole big blocks.
func (pt *PropertyTable) serialize() []byte {
	for len(pt.properties) > 1 && pt.properties[len(pt.properties)-1] == nil {
		pt.properties = pt.properties[:len(pt.properties)-1]
	}
	perBlock := pt.bigBlockSize.PropertiesPerBlock()
	slots := (len(pt.properties) + perBlock - 1) / perBlock * perBlock
	data := make([]byte, slots*PROPERTY_SIZE)
	for i := 0; i < slots; i++ {
		if i < len(pt.properties) && pt.properties[i] != nil {
			pt.properties[i].serialize(data, i*PROPERTY_SIZE)
		} else {
			writeEmptyProperty(data, i*PROPERTY_SIZE)
		}
	}
	return data
}
