package cmd

import (
	"fmt"
	"io"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/spf13/cobra"
)

var inspectEntry string

// inspectCmd lists the entries of a package or source bundle
var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "List the entries of a solution package, flow package or source bundle",
	Long: `Inspect prints the format, sha256 and entries of an archive. When a
<archive>.sha256 or <archive>.sha512 file exists next to it, the archive is
verified against it. --entry prints the content of a single entry instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectEntry != "" {
			data, err := compression.ReadArchiveEntry(args[0], inspectEntry)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return inspectArchive(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectEntry, "entry", "", "print the content of this entry")
}

func inspectArchive(out io.Writer, path string) error {
	format, names, err := compression.ListArchiveEntries(path)
	if err != nil {
		return err
	}

	sum, err := cryptoutil.FileChecksum(path, cryptoutil.SHA256)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s, %d entries)\n", path, format, len(names))
	fmt.Fprintf(out, "sha256 %s\n", sum)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}

	return verifySidecars(out, path)
}

// verifySidecars checks path against every checksum file written next to it.
func verifySidecars(out io.Writer, path string) error {
	for _, algorithm := range []cryptoutil.HashAlgorithm{cryptoutil.SHA256, cryptoutil.SHA512} {
		sidecar := path + "." + string(algorithm)
		if !fsutil.FileExists(sidecar) {
			continue
		}
		ok, err := cryptoutil.VerifyChecksumFile(path, sidecar)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "checksum %s: MISMATCH\n", sidecar)
			return fmt.Errorf("%w: %s", errors.ErrChecksumMismatch, sidecar)
		}
		fmt.Fprintf(out, "checksum %s: OK\n", sidecar)
	}
	return nil
}
