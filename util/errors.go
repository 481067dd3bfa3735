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

package util

import (
	"errors"
	"fmt"
)

// Error kinds shared by every codec in this module. Concrete failures wrap
// one of them, so callers test with errors.Is.
var (
	// ErrFormat reports malformed input: bad signatures, out of range
	// sector indices, cyclic chains, lengths running past the data.
	ErrFormat = errors.New("invalid format")
	// ErrCapacity reports a value that does not fit the on-disk layout.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrState reports an operation that is not allowed in the current
	// lifecycle state of the object.
	ErrState = errors.New("illegal state")
)

func FormatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func CapacityErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCapacity, fmt.Sprintf(format, args...))
}

func StateErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}
