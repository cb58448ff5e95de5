package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-qualifier/internal/model"
)

var qualifyFile string

// qualifyCmd runs the full pipeline once for a message supplied on the
// command line, useful for testing extraction and scoring without Slack.
var qualifyCmd = &cobra.Command{
	Use:   "qualify [message]",
	Short: "Qualify a single lead message and print the outcome",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		text, err := qualifyInput(args)
		if err != nil {
			return err
		}

		env, err := initService()
		if err != nil {
			return err
		}

		entry := env.Pipeline.Run(ctx, "cli", "", text)
		return printEntry(entry)
	},
}

// qualifyInput resolves the message text from the positional argument, the
// --file flag, or stdin, in that order.
func qualifyInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if qualifyFile != "" {
		data, err := os.ReadFile(qualifyFile)
		if err != nil {
			return "", eris.Wrap(err, "read message file")
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", eris.Wrap(err, "read stdin")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", eris.New("no message provided: pass it as an argument, --file, or stdin")
	}
	return text, nil
}

func printEntry(entry model.ActivityEntry) error {
	out, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal outcome")
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	qualifyCmd.Flags().StringVar(&qualifyFile, "file", "", "read the message from a file")
	rootCmd.AddCommand(qualifyCmd)
}
