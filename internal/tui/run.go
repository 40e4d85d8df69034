package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/RichardoC/padchat/internal/chat"
)

// Run drives the chat UI in the terminal until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, b chat.Backend, logger *zap.Logger, opts Options) error {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	box := newMailbox()
	view := &programView{box: box, done: ctx.Done()}
	ctrl := chat.New(b, view, logger, chat.Options{
		Breakpoint:     opts.Breakpoint,
		MaxInputHeight: opts.MaxInputHeight,
	})

	p := tea.NewProgram(NewModel(ctx, ctrl, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	go box.pump(ctx, p.Send)

	logger.Info("starting terminal ui", zap.Int("breakpoint", opts.Breakpoint))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
