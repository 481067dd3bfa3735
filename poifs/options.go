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
	"go.uber.org/zap"
)

type cfg struct {
	log          *zap.Logger
	bigBlockSize int
	cacheSize    int
}

type Option func(*cfg)

func defaultCfg() *cfg {
	return &cfg{
		log:          zap.L(),
		bigBlockSize: SMALLER_BIG_BLOCK_SIZE,
		cacheSize:    _default_cache_size,
	}
}

// WithLogger sets the sink for non-fatal anomalies found while reading.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBigBlockSize selects 512 or 4096 byte sectors for a new file system.
// Opened files always use the size their header declares.
func WithBigBlockSize(size int) Option {
	return func(c *cfg) {
		c.bigBlockSize = size
	}
}

// WithCacheSize sets the number of 4k pages OpenFile keeps cached.
func WithCacheSize(pages int) Option {
	return func(c *cfg) {
		c.cacheSize = pages
	}
}
