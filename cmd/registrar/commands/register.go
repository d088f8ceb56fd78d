package commands

import (
	"github.com/spf13/cobra"

	"github.com/owlback/registrar/cmd/registrar/handlers"
	"github.com/owlback/registrar/internal/config"
)

// Register returns the command that runs a registration workbook.
//
// Required flags:
//
//	--file, -f: Path to the registration workbook (.xlsx)
//	--env, -e:  Environment name from the configuration file
//
// Optional flags:
//
//	--config, -c:  Path to the configuration file (default: registrar.yaml)
//	--verbose, -v: Enable debug output
func Register() *cobra.Command {
	var opts handlers.RegisterOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Provision one community from a registration workbook",
		Long: `Provision one community and its caretakers from an Excel workbook.

The workbook must contain a "Community Info" sheet with exactly one community
and a "Users" sheet with zero or more caretakers. The run creates the
community record, its identity group, every caretaker on both backends, and a
community administrator whose password you are prompted for interactively.

The workbook is updated in place: the created community ID is written back,
and the admin credentials are stored on a new sheet. A workbook that carries
either is treated as already processed and refused.

Examples:
  # Provision from a workbook against the staging environment
  registrar register -f oak-manor.xlsx -e staging

  # Same, with debug output
  registrar register -f oak-manor.xlsx -e staging -v`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Register(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the registration workbook")
	cmd.Flags().StringVarP(&opts.Environment, "env", "e", "", "Target environment name")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFile, "Path to the configuration file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug output")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}
