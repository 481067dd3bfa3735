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
	"strconv"

	"github.com/naqvis/poi4go/poifs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <file>",
		Short: "List storages and streams",
		Long:  `List every storage and stream of a compound document with its size and class id.`,
		Args:  cobra.ExactArgs(1),
		RunE:  a.list,
	}
}

func (a *app) list(cmd *cobra.Command, args []string) error {
	fs, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer fs.Close()

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Path", "Type", "Size", "Class ID"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	err = fs.Walk(func(path *poifs.POIFSDocumentPath, entry poifs.Entry) error {
		table.Append(entryRow(path, entry))
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func entryRow(path *poifs.POIFSDocumentPath, entry poifs.Entry) []string {
	name := printable(path.String())
	switch e := entry.(type) {
	case *poifs.DocumentNode:
		return []string{name, "stream", strconv.Itoa(e.GetSize()), ""}
	case *poifs.DirectoryNode:
		var clsid string
		if id := e.StorageClsID(); !id.IsZero() {
			clsid = id.String()
		}
		return []string{name, "storage", "", clsid}
	}
	return []string{name, "unknown", "", ""}
}
