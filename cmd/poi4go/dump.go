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

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/naqvis/poi4go/poifs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Extract every stream",
		Long: `Extract every stream of a compound document into a directory tree named
after the root storage, or hex dump the streams with --screen.`,
		Args: cobra.ExactArgs(1),
		RunE: a.dump,
	}
	cmd.Flags().StringP("out", "o", ".", "directory to extract into")
	cmd.Flags().BoolP("screen", "s", false, "hex dump to stdout instead of writing files")
	return cmd
}

func (a *app) dump(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	screen, _ := cmd.Flags().GetBool("screen")

	fs, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer fs.Close()

	base := filepath.Join(out, fileName(fs.Root().GetName()))
	if !screen {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return err
		}
	}
	w := cmd.OutOrStdout()
	return fs.Walk(func(path *poifs.POIFSDocumentPath, entry poifs.Entry) error {
		doc, ok := entry.(*poifs.DocumentNode)
		if !ok {
			if screen {
				return nil
			}
			return os.MkdirAll(localPath(base, path), 0o755)
		}
		data, err := doc.GetDocument().Bytes()
		if err != nil {
			return fmt.Errorf("reading %s: %w", printable(path.String()), err)
		}
		if screen {
			fmt.Fprintf(w, "%s (%d bytes)\n", printable(path.String()), len(data))
			d := hex.Dumper(w)
			if _, err := d.Write(data); err != nil {
				return err
			}
			return d.Close()
		}
		target := localPath(base, path)
		a.log.Debug("extracting stream", zap.Stringer("path", path), zap.String("file", target))
		return os.WriteFile(target, data, 0o644)
	})
}

func localPath(base string, path *poifs.POIFSDocumentPath) string {
	parts := []string{base}
	for i := 0; i < path.Length(); i++ {
		parts = append(parts, fileName(path.GetComponent(i)))
	}
	return filepath.Join(parts...)
}

// fileName makes an entry name usable as a file name: control characters
// are dropped, separators replaced.
func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case !unicode.IsPrint(r):
			return -1
		case r == '/' || r == '\\':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
