package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-t | -s | -p) <object>",
	Short: "Show type, size or content of a stored object",
	Long: `Read an object from .gogit/objects, check its hash and print information about it.

  -t  print the object type
  -s  print the body size in bytes
  -p  pretty-print the content: blobs and commits verbatim,
      trees as "<mode> <type> <oid><TAB><name>" lines`,
	SilenceUsage: true,
	Args:         exactArgs(1, "object"),
	RunE:         runCatFile,
}

var (
	catTypeFlag   bool
	catSizeFlag   bool
	catPrettyFlag bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catTypeFlag, "type", "t", false, "Show object type")
	catFileCmd.Flags().BoolVarP(&catSizeFlag, "size", "s", false, "Show object size")
	catFileCmd.Flags().BoolVarP(&catPrettyFlag, "pretty", "p", false, "Pretty-print object content")
	catFileCmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	catFileCmd.MarkFlagsOneRequired("type", "size", "pretty")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	oid, err := parseOidArg(args[0])
	if err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case catTypeFlag:
		objectType, _, err := repo.Store.ReadRaw(oid)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, objectType)

	case catSizeFlag:
		_, body, err := repo.Store.ReadRaw(oid)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, len(body))

	case catPrettyFlag:
		obj, err := repo.Store.Read(oid)
		if err != nil {
			return err
		}
		return prettyPrint(out, obj)
	}
	return nil
}

func prettyPrint(out io.Writer, obj objects.Object) error {
	switch o := obj.(type) {
	case *objects.Tree:
		for _, name := range o.SortedNames() {
			entry, _ := o.FindEntry(name)
			fmt.Fprintf(out, "%s %s %s\t%s\n", displayMode(entry.Mode), entry.Mode.ObjectType(), entry.Oid, name)
		}
		return nil
	case *objects.Blob, *objects.Commit:
		_, err := out.Write(obj.Body())
		return err
	default:
		return errors.New("unsupported object")
	}
}

// displayMode pads modes to six digits the way ls-tree shows them.
func displayMode(mode objects.FileMode) string {
	if len(mode) < 6 {
		return "0" + string(mode)
	}
	return string(mode)
}
