package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// ChaseCmd follows links of one type from an atom
var ChaseCmd = &cobra.Command{
	Use:   "chase",
	Short: "Follow links of one type from an atom",
	Long: `Follow every link of one type that holds the start atom at a given
position, and report the member at another position.

forward and backward are the binary cases (positions 0->1 and 1->0); at
takes explicit positions for links of any arity.

Examples:
  atomspace chase forward cat InheritanceLink      # what is cat a kind of?
  atomspace chase backward animal InheritanceLink  # what kinds of animal are there?
  atomspace chase at PredicateNode:likes EvaluationLink 0 2
  atomspace chase forward '#12' ListLink --first`,
}

var chaseForwardCmd = &cobra.Command{
	Use:   "forward <atom> <LinkType>",
	Short: "Chase from position 0 to position 1",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChase(cmd, args[0], args[1], chase.First, chase.Second)
	},
}

var chaseBackwardCmd = &cobra.Command{
	Use:   "backward <atom> <LinkType>",
	Short: "Chase from position 1 to position 0",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChase(cmd, args[0], args[1], chase.Second, chase.First)
	},
}

var chaseAtCmd = &cobra.Command{
	Use:   "at <atom> <LinkType> <from> <to>",
	Short: "Chase between explicit positions",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parsePositions(args[2], args[3])
		if err != nil {
			return err
		}
		return runChase(cmd, args[0], args[1], from, to)
	},
}

var (
	chaseFirst bool
	chaseJSON  bool
)

func init() {
	ChaseCmd.PersistentFlags().BoolVar(&chaseFirst, "first", false, "Stop at the first match")
	ChaseCmd.PersistentFlags().BoolVar(&chaseJSON, "json", false, "Print matches as JSON")

	ChaseCmd.AddCommand(chaseForwardCmd)
	ChaseCmd.AddCommand(chaseBackwardCmd)
	ChaseCmd.AddCommand(chaseAtCmd)
}

func parsePositions(fromArg, toArg string) (int, int, error) {
	from, err1 := strconv.Atoi(fromArg)
	to, err2 := strconv.Atoi(toArg)
	if err := errors.CombineErrors(err1, err2); err != nil {
		return 0, 0, errors.Wrap(errors.WithSecondaryError(errors.ErrInvalidRequest, err), "positions")
	}
	if from < 0 || to < 0 {
		return 0, 0, errors.NewInvalidRequestError("positions must be >= 0, got %d and %d", from, to)
	}
	return from, to, nil
}

func parseLinkType(name string) (atom.Type, error) {
	t, err := atom.ParseType(name)
	if err != nil {
		return atom.NoType, err
	}
	if !t.IsLink() {
		return atom.NoType, errors.NewInvalidRequestError("%s is not a link type", t)
	}
	return t, nil
}

func runChase(cmd *cobra.Command, ref, typeName string, from, to int) error {
	linkType, err := parseLinkType(typeName)
	if err != nil {
		return err
	}

	store, database, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	start, err := atom.ResolveRef(store, ref)
	if err != nil {
		return err
	}

	chaser := chase.New(store,
		chase.WithLogger(logger.Logger),
		chase.WithVerbosity(verbosity(cmd)),
	)

	var matches []chase.Match
	for m, err := range chaser.All(start, linkType, from, to) {
		if err != nil {
			return errors.Wrapf(err, "chase from %s", start)
		}
		matches = append(matches, m)
		if chaseFirst {
			break
		}
	}

	if chaseJSON {
		if matches == nil {
			matches = []chase.Match{}
		}
		out, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal matches")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(matches) == 0 {
		pterm.Info.Printfln("No %s from %s at %d->%d", linkType, start, from, to)
		return nil
	}

	data := pterm.TableData{{"Target", "Type", "Atom", "Via"}}
	for _, m := range matches {
		target, err := store.Resolve(m.Target)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", m.Target)
		}
		data = append(data, []string{m.Target.String(), target.Type.String(), label(target), m.Link.String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// label is the node name, or the rendered link
func label(a *atom.Atom) string {
	if a.IsLink() {
		return a.String()
	}
	return a.Name
}
