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
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/naqvis/poi4go/ddf"
	"github.com/naqvis/poi4go/hssf"
	"github.com/naqvis/poi4go/poifs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const _excel_clsid = "{00020820-0000-0000-C000-000000000046}"

func drawing(t *testing.T) *hssf.DrawingRecord {
	sp := ddf.NewEscherContainerRecord(ddf.SP_CONTAINER)
	sp.AddChildRecord(ddf.NewEscherSpRecord(1, 0x401, ddf.FLAG_HAVEANCHOR))
	dg := ddf.NewEscherContainerRecord(ddf.DG_CONTAINER)
	dg.AddChildRecord(ddf.NewEscherDgRecord(1))
	dg.AddChildRecord(sp)
	rec := &hssf.DrawingRecord{}
	require.NoError(t, rec.SetEscherRecords([]ddf.EscherRecord{dg}))
	return rec
}

// writeWorkbook writes a compound document holding a small workbook, a
// property set stream and a nested storage, and returns its path and the
// workbook stream.
func writeWorkbook(t *testing.T) (string, []byte) {
	workbook, err := hssf.SerializeAll([]hssf.Record{
		hssf.NewBOFRecord(hssf.BOF_TYPE_WORKBOOK),
		&hssf.EOFRecord{},
		hssf.NewBOFRecord(hssf.BOF_TYPE_WORKSHEET),
		drawing(t),
		&hssf.EOFRecord{},
	})
	require.NoError(t, err)

	fs, err := poifs.NewFileSystem()
	require.NoError(t, err)
	_, err = fs.CreateDocument("Workbook", bytes.NewReader(workbook))
	require.NoError(t, err)
	_, err = fs.CreateDocument("\x05SummaryInformation", bytes.NewReader(bytes.Repeat([]byte{7}, 200)))
	require.NoError(t, err)
	macros, err := fs.CreateDirectory("Macros")
	require.NoError(t, err)
	clsid, err := poifs.ClassIDFromString(_excel_clsid)
	require.NoError(t, err)
	require.NoError(t, macros.SetStorageClsID(clsid))
	_, err = fs.CreateDocument("Macros/VBA/dir", bytes.NewReader(make([]byte, 5000)))
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "book.xls")
	require.NoError(t, fs.WriteFile(name))
	return name, workbook
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd(zaptest.NewLogger(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	name, workbook := writeWorkbook(t)
	out, err := run(t, "ls", name)
	require.NoError(t, err)
	assert.Contains(t, out, "/Workbook")
	assert.Contains(t, out, strconv.Itoa(len(workbook)))
	assert.Contains(t, out, `/\x05SummaryInformation`)
	assert.Contains(t, out, "/Macros/VBA/dir")
	assert.Contains(t, out, "5000")
	assert.Contains(t, out, "storage")
	assert.Contains(t, out, _excel_clsid)
}

func TestDumpWritesStreams(t *testing.T) {
	name, workbook := writeWorkbook(t)
	dir := t.TempDir()
	_, err := run(t, "dump", "--out", dir, name)
	require.NoError(t, err)

	root := filepath.Join(dir, "Root Entry")
	got, err := os.ReadFile(filepath.Join(root, "Workbook"))
	require.NoError(t, err)
	assert.Equal(t, workbook, got)
	got, err = os.ReadFile(filepath.Join(root, "SummaryInformation"))
	require.NoError(t, err)
	assert.Len(t, got, 200)
	info, err := os.Stat(filepath.Join(root, "Macros", "VBA", "dir"))
	require.NoError(t, err)
	assert.EqualValues(t, 5000, info.Size())
}

func TestDumpToScreen(t *testing.T) {
	name, workbook := writeWorkbook(t)
	out, err := run(t, "dump", "--screen", name)
	require.NoError(t, err)
	assert.Contains(t, out, "/Workbook ("+strconv.Itoa(len(workbook))+" bytes)")
	// BOF sid 0x0809, 16 bytes
	assert.Contains(t, out, "00000000  09 08 10 00")
}

func TestCopy(t *testing.T) {
	name, workbook := writeWorkbook(t)
	dst := filepath.Join(t.TempDir(), "copy.xls")
	_, err := run(t, "copy", "--check", name, dst)
	require.NoError(t, err)

	fs, err := poifs.OpenFile(dst, true, poifs.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer fs.Close()
	require.NoError(t, fs.Check())
	got, err := fs.ReadDocument("Workbook")
	require.NoError(t, err)
	assert.Equal(t, workbook, got)
	got, err = fs.ReadDocument("Macros/VBA/dir")
	require.NoError(t, err)
	assert.Len(t, got, 5000)
}

func TestCopyRejectsGarbage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "junk.xls")
	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte("junk"), 200), 0o644))
	_, err := run(t, "copy", src, filepath.Join(t.TempDir(), "out.xls"))
	require.Error(t, err)
}

func TestBiff(t *testing.T) {
	name, _ := writeWorkbook(t)
	out, err := run(t, "biff", name)
	require.NoError(t, err)
	assert.Contains(t, out, "[BOF]")
	assert.Contains(t, out, "[MSODRAWING]")
	assert.Contains(t, out, "[EOF]")
	assert.NotContains(t, out, "DgContainer")

	out, err = run(t, "biff", "--escher", name)
	require.NoError(t, err)
	assert.Contains(t, out, "DgContainer [0xF002]")
	assert.Contains(t, out, "  SpContainer [0xF004]")
}

func TestBiffWithoutWorkbook(t *testing.T) {
	fs, err := poifs.NewFileSystem()
	require.NoError(t, err)
	_, err = fs.CreateDocument("WordDocument", bytes.NewReader(make([]byte, 100)))
	require.NoError(t, err)
	name := filepath.Join(t.TempDir(), "doc.doc")
	require.NoError(t, fs.WriteFile(name))

	_, err = run(t, "biff", name)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig(t *testing.T) {
	name, _ := writeWorkbook(t)

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "ls", name)
	assert.Error(t, err)

	cfg := filepath.Join(t.TempDir(), "poi4go.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("cache-size: 4\nverbose: true\n"), 0o644))
	_, err = run(t, "--config", cfg, "ls", name)
	assert.NoError(t, err)

	t.Setenv("POI4GO_CACHE_SIZE", "2")
	_, err = run(t, "ls", name)
	assert.NoError(t, err)
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Workbook":               "Workbook",
		"\x05SummaryInformation": "SummaryInformation",
		"a/b\\c":                 "a_b_c",
		"\x01":                   "_",
		"..":                     "_",
		" Root Entry ":           "Root Entry",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileName(in), "%q", in)
	}
	assert.Equal(t, `\x01Ole`, printable("\x01Ole"))
}
