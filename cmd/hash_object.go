package cmd

import (
	"fmt"
	"os"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <filepath>",
	Short: "Compute object hash and optionally store the object from a file",
	Long: `Compute the object hash (SHA-1 hash) for a file's content.
Optionally write the resulting object into the objects folder.
With -t tree or -t commit the content must be a valid object body and is parsed first.

Examples:
  # Compute hash without storing
  gogit hash-object myfile.txt

  # Compute hash and store in .gogit/objects
  gogit hash-object -w myfile.txt

  # Check and store a raw commit body
  gogit hash-object -t commit -w commit.txt`,
	SilenceUsage: true,
	Args:         exactArgs(1, "filepath"),
	RunE:         runHashObject,
}

var (
	writeFlag      bool
	objectTypeFlag string
)

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	// Add flag using Cobra's flag system
	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the objects folder")
	hashObjectCmd.Flags().StringVarP(&objectTypeFlag, "type", "t", string(objects.BlobObjectType), "Object type: blob, tree or commit")
}

// runHashObject computes hash and optionally stores the object.
func runHashObject(cmd *cobra.Command, args []string) error {
	obj, err := readObjectFile(objectTypeFlag, args[0])
	if err != nil {
		return err
	}

	// Print hash to stdout
	fmt.Fprintln(cmd.OutOrStdout(), obj.Oid())

	if writeFlag {
		repo, err := openRepository()
		if err != nil {
			return err
		}

		if err := repo.Store.Store(obj); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	return nil
}

// readObjectFile builds an object of the given type from a file's bytes.
func readObjectFile(typeName, path string) (objects.Object, error) {
	objectType, err := objects.ParseObjectType(typeName)
	if err != nil {
		return nil, err
	}

	if objectType == objects.BlobObjectType {
		// Create blob from file's contents
		return objects.NewBlobFromFile(path)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	obj, err := objects.ParseObject(objectType, body)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid %s: %w", path, objectType, err)
	}
	return obj, nil
}
