package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/ingest"
	"github.com/teranos/atomspace/logger"
)

// LoadCmd seeds the store from a YAML document
var LoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Seed the atom store from a YAML document",
	Long: `Add the nodes and links of a YAML seed document to the store.

Atoms that already exist are reused, so loading the same file twice changes
nothing. With --watch the file is reloaded whenever it changes.

Document format:
  nodes:
    - {type: ConceptNode, name: a}
    - {type: ConceptNode, name: b}
  links:
    - {type: InheritanceLink, members: [a, b]}
    - {type: ListLink, members: ["#0", b]}   # "#0" is the first link

Examples:
  atomspace load seed.yaml
  atomspace load seed.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

var loadWatch bool

func init() {
	LoadCmd.Flags().BoolVarP(&loadWatch, "watch", "w", false, "Reload the file when it changes")
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]
	store, database, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if loadWatch {
		pterm.Info.Printfln("Watching %s (Ctrl-C to stop)", path)
		w := ingest.NewWatcher(path, store, func(res ingest.Result, err error) {
			if err != nil {
				pterm.Error.Printfln("Reload failed: %v", err)
				return
			}
			printLoaded(path, res)
		}, logger.Logger)
		return w.Run(cmd.Context())
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	res, err := ingest.Load(f, store)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	printLoaded(path, res)
	return nil
}

func printLoaded(path string, res ingest.Result) {
	pterm.Success.Printfln("Loaded %s: %d nodes, %d links", path, len(res.Nodes), len(res.Links))
}
