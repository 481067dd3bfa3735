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

	"github.com/naqvis/poi4go/util"
)

const PATH_SEPARATOR = "/"

// POIFSDocumentPath names an entry by the storages leading to it. The empty
// path is the root storage.
type POIFSDocumentPath struct {
	components []string
}

func NewPOIFSDocumentPath(components []string) (*POIFSDocumentPath, error) {
	dp := &POIFSDocumentPath{components: make([]string, 0, len(components))}
	for _, comp := range components {
		if len(comp) == 0 {
			return nil, util.FormatErrorf("path components cannot be empty")
		}
		dp.components = append(dp.components, comp)
	}
	return dp, nil
}

// ParsePath splits a slash separated path. Leading and trailing slashes are
// ignored, an empty component in the middle is not.
func ParsePath(path string) (*POIFSDocumentPath, error) {
	trimmed := strings.Trim(path, PATH_SEPARATOR)
	if trimmed == "" {
		return NewPOIFSDocumentPath(nil)
	}
	dp, err := NewPOIFSDocumentPath(strings.Split(trimmed, PATH_SEPARATOR))
	if err != nil {
		return nil, util.FormatErrorf("invalid path %q: %v", path, err)
	}
	return dp, nil
}

// Append returns a new path with components added below dp.
func (dp *POIFSDocumentPath) Append(components ...string) (*POIFSDocumentPath, error) {
	all := make([]string, 0, len(dp.components)+len(components))
	all = append(all, dp.components...)
	all = append(all, components...)
	return NewPOIFSDocumentPath(all)
}

func (dp *POIFSDocumentPath) Length() int {
	return len(dp.components)
}

func (dp *POIFSDocumentPath) GetComponent(n int) string {
	if n < 0 || n >= len(dp.components) {
		return ""
	}
	return dp.components[n]
}

// GetParent returns nil for the root path.
func (dp *POIFSDocumentPath) GetParent() *POIFSDocumentPath {
	if len(dp.components) == 0 {
		return nil
	}
	parent := &POIFSDocumentPath{components: make([]string, len(dp.components)-1)}
	copy(parent.components, dp.components)
	return parent
}

// Name is the last component, empty for the root.
func (dp *POIFSDocumentPath) Name() string {
	if len(dp.components) == 0 {
		return ""
	}
	return dp.components[len(dp.components)-1]
}

// Equals compares paths the way entry names are compared, ignoring case.
func (dp *POIFSDocumentPath) Equals(other *POIFSDocumentPath) bool {
	if other == nil || len(dp.components) != len(other.components) {
		return false
	}
	for i := range dp.components {
		if compareNames(dp.components[i], other.components[i]) != 0 {
			return false
		}
	}
	return true
}

func (dp *POIFSDocumentPath) String() string {
	return PATH_SEPARATOR + strings.Join(dp.components, PATH_SEPARATOR)
}
