package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/kuttab/kuttab/internal/pdf"
)

// CountPagesCommand prints the page count of a local PDF, using the same
// reader the upload endpoint uses. Handy for checking a file before import.
type CountPagesCommand struct {
	Path string
}

func NewCountPagesCommand() *CountPagesCommand {
	return &CountPagesCommand{}
}

func (cmd *CountPagesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("count-pages", flag.ExitOnError)

	fs.StringVar(&cmd.Path, "file", "", "Path to the PDF file (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s count-pages -file <path>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the page count of a local PDF file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Path == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *CountPagesCommand) Run() error {
	if _, err := os.Stat(cmd.Path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", cmd.Path)
	}

	pages, err := pdf.CountPages(cmd.Path)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	fmt.Printf("%d\n", pages)
	return nil
}
