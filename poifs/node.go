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
	"io"

	"github.com/naqvis/poi4go/util"
)

type Entry interface {
	GetName() string
	IsDirectory() bool
	IsDocument() bool
	// Parent is nil for the root storage.
	Parent() *DirectoryNode
	Delete() error
	RenameTo(newName string) error
}

type EntryNode struct {
	property *Property
	parent   *DirectoryNode
	fs       *POIFSFileSystem
}

type DirectoryNode struct {
	*EntryNode
	path *POIFSDocumentPath
}

type DocumentNode struct {
	*EntryNode
	document *POIFSDocument
}

func (en *EntryNode) GetProperty() *Property {
	return en.property
}

// checkLive fails once the entry has been deleted from its storage.
func (en *EntryNode) checkLive() error {
	if en.property.index == _NO_INDEX {
		return util.StateErrorf("entry %q was deleted", en.property.GetName())
	}
	return nil
}

func (en *EntryNode) IsRoot() bool {
	return en.parent == nil
}

func (en *EntryNode) GetName() string {
	return en.property.GetName()
}

func (en *EntryNode) IsDirectory() bool {
	return en.property.IsDirectory()
}

func (en *EntryNode) IsDocument() bool {
	return !en.property.IsDirectory()
}

func (en *EntryNode) Parent() *DirectoryNode {
	return en.parent
}

// Delete removes the entry. Storages must be empty.
func (en *EntryNode) Delete() error {
	if en.IsRoot() {
		return util.StateErrorf("the root storage cannot be deleted")
	}
	if err := en.checkLive(); err != nil {
		return err
	}
	return en.parent.deleteEntry(en)
}

func (en *EntryNode) RenameTo(newName string) error {
	if en.IsRoot() {
		return util.StateErrorf("the root storage cannot be renamed")
	}
	if err := en.fs.checkWritable(); err != nil {
		return err
	}
	if err := en.checkLive(); err != nil {
		return err
	}
	return en.fs.properties.rename(en.parent.property, en.property, newName)
}

func (en *EntryNode) StorageClsID() ClassID {
	return en.property.GetStorageClsid()
}

func (en *EntryNode) SetStorageClsID(cid ClassID) error {
	if err := en.fs.checkWritable(); err != nil {
		return err
	}
	if err := en.checkLive(); err != nil {
		return err
	}
	en.property.SetStorageClsid(cid)
	return nil
}

func newDirectoryNode(prop *Property, fs *POIFSFileSystem, parent *DirectoryNode) *DirectoryNode {
	dn := &DirectoryNode{EntryNode: &EntryNode{property: prop, parent: parent, fs: fs}}
	if parent == nil {
		dn.path, _ = NewPOIFSDocumentPath(nil)
	} else {
		dn.path, _ = parent.path.Append(prop.GetName())
	}
	return dn
}

func newDocumentNode(prop *Property, fs *POIFSFileSystem, parent *DirectoryNode) *DocumentNode {
	return &DocumentNode{
		EntryNode: &EntryNode{property: prop, parent: parent, fs: fs},
		document:  &POIFSDocument{fs: fs, property: prop},
	}
}

func (dn *DirectoryNode) node(prop *Property) Entry {
	if prop.IsDirectory() {
		return newDirectoryNode(prop, dn.fs, dn)
	}
	return newDocumentNode(prop, dn.fs, dn)
}

func (dn *DirectoryNode) GetPath() *POIFSDocumentPath {
	return dn.path
}

func (dn *DirectoryNode) GetFileSystem() *POIFSFileSystem {
	return dn.fs
}

// Entries lists the children in directory order.
func (dn *DirectoryNode) Entries() []Entry {
	children := dn.fs.properties.children(dn.property)
	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entries = append(entries, dn.node(child))
	}
	return entries
}

func (dn *DirectoryNode) EntryNames() []string {
	children := dn.fs.properties.children(dn.property)
	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.GetName())
	}
	return names
}

func (dn *DirectoryNode) IsEmpty() bool {
	return dn.property.child == _NO_INDEX
}

func (dn *DirectoryNode) EntryCount() int {
	return len(dn.fs.properties.children(dn.property))
}

func (dn *DirectoryNode) HasEntry(name string) bool {
	_, ok := dn.fs.properties.find(dn.property, name)
	return ok
}

// GetEntry looks a child up by name, ignoring case.
func (dn *DirectoryNode) GetEntry(name string) (Entry, bool) {
	prop, ok := dn.fs.properties.find(dn.property, name)
	if !ok {
		return nil, false
	}
	return dn.node(prop), true
}

func (dn *DirectoryNode) GetDirectory(name string) (*DirectoryNode, bool) {
	entry, ok := dn.GetEntry(name)
	if !ok || !entry.IsDirectory() {
		return nil, false
	}
	return entry.(*DirectoryNode), true
}

func (dn *DirectoryNode) GetDocument(name string) (*DocumentNode, bool) {
	entry, ok := dn.GetEntry(name)
	if !ok || !entry.IsDocument() {
		return nil, false
	}
	return entry.(*DocumentNode), true
}

func (dn *DirectoryNode) CreateDirectory(name string) (*DirectoryNode, error) {
	if err := dn.fs.checkWritable(); err != nil {
		return nil, err
	}
	if err := dn.checkLive(); err != nil {
		return nil, err
	}
	prop, err := NewDirProperty(name)
	if err != nil {
		return nil, err
	}
	if err := dn.fs.properties.insert(dn.property, prop); err != nil {
		return nil, err
	}
	return newDirectoryNode(prop, dn.fs, dn), nil
}

// CreateDocument adds a stream holding everything r yields.
func (dn *DirectoryNode) CreateDocument(name string, r io.Reader) (*DocumentNode, error) {
	if err := dn.fs.checkWritable(); err != nil {
		return nil, err
	}
	if err := dn.checkLive(); err != nil {
		return nil, err
	}
	prop, err := NewDocProperty(name, 0)
	if err != nil {
		return nil, err
	}
	if _, exists := dn.fs.properties.find(dn.property, name); exists {
		return nil, util.StateErrorf("%q already contains an entry named %q", dn.GetName(), name)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading content of %q: %w", name, err)
	}
	if err := dn.fs.properties.insert(dn.property, prop); err != nil {
		return nil, err
	}
	doc := newDocumentNode(prop, dn.fs, dn)
	if err := doc.document.replace(data); err != nil {
		_ = dn.fs.properties.remove(dn.property, prop)
		dn.fs.properties.removeProperty(prop)
		return nil, fmt.Errorf("writing %q: %w", name, err)
	}
	return doc, nil
}

func (dn *DirectoryNode) deleteEntry(entry *EntryNode) error {
	if err := dn.fs.checkWritable(); err != nil {
		return err
	}
	if err := entry.checkLive(); err != nil {
		return err
	}
	prop := entry.property
	if prop.IsDirectory() && prop.child != _NO_INDEX {
		return util.StateErrorf("storage %q is not empty", prop.GetName())
	}
	if err := dn.fs.properties.remove(dn.property, prop); err != nil {
		return err
	}
	var err error
	if !prop.IsDirectory() {
		err = (&POIFSDocument{fs: dn.fs, property: prop}).free()
	}
	dn.fs.properties.removeProperty(prop)
	return err
}

func (dn *DocumentNode) GetDocument() *POIFSDocument {
	return dn.document
}

func (dn *DocumentNode) GetSize() int {
	return dn.property.GetSize()
}

// Open returns a reader positioned at the start of the stream.
func (dn *DocumentNode) Open() (*DocumentInputStream, error) {
	if err := dn.fs.checkOpen(); err != nil {
		return nil, err
	}
	if err := dn.checkLive(); err != nil {
		return nil, err
	}
	return newDocumentInputStream(dn.document)
}

func (dn *DocumentNode) Bytes() ([]byte, error) {
	if err := dn.fs.checkOpen(); err != nil {
		return nil, err
	}
	if err := dn.checkLive(); err != nil {
		return nil, err
	}
	return dn.document.Bytes()
}

// Replace swaps the content of the stream for data.
func (dn *DocumentNode) Replace(data []byte) error {
	if err := dn.fs.checkWritable(); err != nil {
		return err
	}
	if err := dn.checkLive(); err != nil {
		return err
	}
	if err := dn.document.replace(data); err != nil {
		return fmt.Errorf("writing %q: %w", dn.GetName(), err)
	}
	return nil
}

// Writer returns a stream whose content replaces this one on Close.
func (dn *DocumentNode) Writer() (*DocumentOutputStream, error) {
	if err := dn.fs.checkWritable(); err != nil {
		return nil, err
	}
	if err := dn.checkLive(); err != nil {
		return nil, err
	}
	return &DocumentOutputStream{node: dn}, nil
}
