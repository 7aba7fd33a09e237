package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyriemtx/qrsrv/internal/qr"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode --text as a QR code (PNG file, SVG on stdout, or terminal)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		dir, _ := cmd.Flags().GetString("dir")
		name, _ := cmd.Flags().GetString("name")
		format, _ := cmd.Flags().GetString("format")

		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()
		gen, err := newGenerator(cfg, log)
		if err != nil {
			return err
		}

		switch format {
		case "png":
			path, err := gen.GenerateToFile(text, dir, name)
			if errors.Is(err, qr.ErrBlankContent) {
				fmt.Println("Nothing to encode: --text is blank, no file written")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("Wrote:", filepath.Clean(path))
		case "svg":
			ppm, _ := cmd.Flags().GetInt("module-size")
			b, err := gen.SVG(text, ppm)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		case "terminal":
			s, err := gen.Terminal(text)
			if err != nil {
				return err
			}
			fmt.Print(s)
		default:
			return fmt.Errorf("unknown --format %q (want png, svg or terminal)", format)
		}
		return nil
	},
}

func init() {
	encodeCmd.Flags().String("text", "", "content to encode")
	encodeCmd.Flags().String("dir", "", "target directory (default from config: outputDir)")
	encodeCmd.Flags().String("name", "", "file name, .png added when missing (default <millis>-<random>.png)")
	encodeCmd.Flags().String("format", "png", "png (file), svg (stdout) or terminal")
	encodeCmd.Flags().Int("module-size", 8, "SVG pixels per module")
}
