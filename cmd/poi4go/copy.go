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
	"fmt"
	"os"

	"github.com/naqvis/poi4go/poifs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) copyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Rewrite a compound document",
		Long: `Read a compound document and write it out again. The copy has freshly
laid out allocation tables; unused sectors are dropped from the end.`,
		Args: cobra.ExactArgs(2),
		RunE: a.copy,
	}
	cmd.Flags().Bool("check", false, "verify every sector chain before writing")
	return cmd
}

func (a *app) copy(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")

	src, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()
	fs, err := poifs.FileSystemFromReader(src, poifs.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer fs.Close()

	if check {
		if err := fs.Check(); err != nil {
			return fmt.Errorf("checking %s: %w", args[0], err)
		}
	}
	if err := fs.WriteFile(args[1]); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	a.log.Info("file written", zap.String("src", args[0]), zap.String("dst", args[1]))
	return nil
}
