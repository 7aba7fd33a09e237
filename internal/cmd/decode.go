package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <image>",
	Short: "Print the text of the QR code in an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()
		gen, err := newGenerator(cfg, log)
		if err != nil {
			return err
		}
		text, err := gen.Decode(args[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}
