package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardoC/padchat/internal/chat"
	"github.com/RichardoC/padchat/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export <conversation-id>",
	Short: "Write a conversation as a standalone HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	logger, err := newLogger(viper.GetString("log-file"), viper.GetString("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	page := render.NewPage("padchat")
	ctrl := chat.New(newClient(logger), page, logger, chat.Options{})
	ctx := cmd.Context()

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	if err := ctrl.SelectConversation(ctx, id); err != nil {
		return fmt.Errorf("load conversation %d: %w", id, err)
	}
	for _, conv := range ctrl.Snapshot().Conversations {
		if conv.ID == id {
			page.Title = conv.Title
		}
	}

	path, _ := cmd.Flags().GetString("output")
	logger.Info("Exporting conversation", zap.Int64("conversationID", id), zap.String("output", path))
	if path == "" {
		return page.WriteHTML(cmd.OutOrStdout())
	}
	return writeFile(path, page.WriteHTML)
}

// writeFile creates path and hands it to write. An error from closing the
// file is reported like a write error.
func writeFile(path string, write func(io.Writer) error) (err error) {
	var f *os.File
	f, err = os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return write(f)
}
