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

	"github.com/naqvis/poi4go/ddf"
	"github.com/naqvis/poi4go/hssf"
	"github.com/spf13/cobra"
)

// drawingRecord is implemented by MSODRAWING and MSODRAWINGGROUP.
type drawingRecord interface {
	EscherRecords(factory *ddf.EscherRecordFactory) ([]ddf.EscherRecord, error)
}

func (a *app) biffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biff <file>",
		Short: "List the BIFF records of a workbook",
		Long: `List the logical records of the Workbook stream of an Excel file, one per
line, continuations merged. With --escher the drawing records are dumped as
an escher tree below the record they belong to.`,
		Args: cobra.ExactArgs(1),
		RunE: a.biff,
	}
	cmd.Flags().BoolP("escher", "e", false, "dump the escher records of drawing records")
	return cmd
}

func (a *app) biff(cmd *cobra.Command, args []string) error {
	escher, _ := cmd.Flags().GetBool("escher")

	fs, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer fs.Close()

	w := cmd.OutOrStdout()
	factory := ddf.NewEscherRecordFactory(a.log)
	req := hssf.NewHSSFRequest()
	req.AddListenerForAllRecords(hssf.ListenerFunc(func(rec hssf.Record) error {
		if _, err := fmt.Fprintln(w, rec); err != nil {
			return err
		}
		drawing, ok := rec.(drawingRecord)
		if !escher || !ok {
			return nil
		}
		records, err := drawing.EscherRecords(factory)
		if err != nil {
			return fmt.Errorf("%s: %w", hssf.RecordName(rec.Sid()), err)
		}
		return ddf.Dump(w, records)
	}))
	return hssf.NewHSSFEventFactory(a.log).ProcessWorkbookEvents(req, fs)
}
