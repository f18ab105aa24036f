package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-chat-parser/internal/adapters/source"
)

func detectCmd(configPath *string) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the platform and language of a chat export without parsing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			base, err := a.cfg.ParseOptions()
			if err != nil {
				return err
			}
			opts, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}

			data, err := source.NewFileSource(args[0]).Fetch()
			if err != nil {
				return err
			}

			det, err := a.parser.Detect(context.Background(), data, opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(det)
		},
	}

	flags.register(cmd)
	return cmd
}
