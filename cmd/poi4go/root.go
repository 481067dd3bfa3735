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
	"strings"
	"unicode"

	"github.com/naqvis/poi4go/poifs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Configuration keys. Each is a persistent flag, a POI4GO_* environment
// variable and a key of the config file.
const (
	_config_key     = "config"
	_verbose_key    = "verbose"
	_cache_size_key = "cache-size"

	_env_prefix = "POI4GO"
)

type app struct {
	v   *viper.Viper
	log *zap.Logger
}

// newRootCmd builds the command tree. A nil log is replaced by a console
// logger once the configuration is known.
func newRootCmd(log *zap.Logger) *cobra.Command {
	a := &app{v: viper.New(), log: log}
	cmd := &cobra.Command{
		Use:   "poi4go",
		Short: "Inspect OLE2 compound documents",
		Long: `poi4go lists, extracts and rewrites the storages and streams of OLE2
compound documents (.xls, .doc, .ppt, .msg) and dumps the BIFF records and
drawings of Excel workbooks.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringP(_config_key, "c", "", "config file (yaml, toml or json)")
	flags.BoolP(_verbose_key, "v", false, "log every decoding anomaly")
	flags.Int(_cache_size_key, 0, "4k pages cached per open file, 0 for the default")
	_ = a.v.BindPFlags(flags)

	cmd.AddCommand(a.lsCmd(), a.dumpCmd(), a.copyCmd(), a.biffCmd())
	return cmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix(_env_prefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if file := a.v.GetString(_config_key); file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	if a.log != nil {
		return nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if a.v.GetBool(_verbose_key) {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.log = log
	return nil
}

// open opens name read-only.
func (a *app) open(name string) (*poifs.POIFSFileSystem, error) {
	return poifs.OpenFile(name, true,
		poifs.WithLogger(a.log),
		poifs.WithCacheSize(a.v.GetInt(_cache_size_key)))
}

// printable escapes the control characters some stream names start with,
// as in "\x05SummaryInformation".
func printable(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		} else {
			fmt.Fprintf(&b, "\\x%02X", r)
		}
	}
	return b.String()
}
