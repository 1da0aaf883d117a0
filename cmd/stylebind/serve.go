package main

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnana997/stylebind/pkg/bridge"
	mcpserver "github.com/gnana997/stylebind/pkg/mcp"
	"github.com/gnana997/stylebind/pkg/mcplog"
)

// uiCommand speaks the UI message protocol as JSON lines over stdin/stdout.
func (a *app) uiCommand() *cobra.Command {
	var watchFile, save bool
	cmd := &cobra.Command{
		Use:   "ui DOCUMENT",
		Short: "Run the UI bridge over JSON lines on stdin/stdout",
		Long: `Run the UI bridge over JSON lines on stdin/stdout.

Each input line is a message such as {"type":"convert"}. Replies and
selection updates are written one JSON object per line. The session ends on
{"type":"close"} or end of input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}

			post := bridge.NewJSONPoster(a.stdout)
			b := a.newBridge(w, post, bridge.Options{})

			if watchFile {
				wt, err := a.startWatcher(w, b)
				if err != nil {
					return err
				}
				defer wt.Stop()
			}

			b.Enqueue(bridge.Message{Type: bridge.TypeCheckSelection})
			go a.readMessages(ctx, a.stdin, b, post)

			err = b.Run(ctx)
			if save && w.session.Dirty() {
				if saveErr := w.session.SaveFile(""); saveErr != nil {
					return saveErr
				}
				a.logger.Info("document saved", "path", w.session.Path())
			}
			if errors.Is(err, bridge.ErrClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload the document when its file changes")
	cmd.Flags().BoolVar(&save, "save", false, "write the document back on exit when it changed")
	return cmd
}

// readMessages feeds decoded input lines to b until EOF, then requests close.
// Lines that do not decode are answered with an error message.
func (a *app) readMessages(ctx context.Context, r io.Reader, b *bridge.Bridge, post bridge.Poster) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := bridge.DecodeMessage(line)
		if err != nil {
			a.logger.Warn("bad message", "error", err)
			_ = post.Post(ctx, bridge.ErrorMessage{Type: bridge.TypeError, Message: err.Error()})
			continue
		}
		b.Enqueue(msg)
	}
	if err := scanner.Err(); err != nil {
		a.logger.Warn("read input", "error", err)
	}
	b.Enqueue(bridge.Message{Type: bridge.TypeClose})
}

// serveCommand starts the MCP server on stdin/stdout.
func (a *app) serveCommand() *cobra.Command {
	var (
		watchFile bool
		logPath   string
	)
	cmd := &cobra.Command{
		Use:   "serve DOCUMENT",
		Short: "Start the MCP server for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}

			callLog, err := mcplog.NewLogger(resolveLogPath(logPath, a.cfg))
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
				a.logger.Info("logging tool calls", "session", callLog.Session())
			}

			// Tools read replies through their own recorders; anything posted to
			// the bridge's default poster is only logged.
			post := bridge.PosterFunc(func(ctx context.Context, msg any) error {
				a.logger.Debug("unsolicited bridge message", "message", msg)
				return nil
			})

			b := a.newBridge(w, post, bridge.Options{})
			if watchFile {
				wt, err := a.startWatcher(w, b)
				if err != nil {
					return err
				}
				defer wt.Stop()
			}

			srv := mcpserver.NewServer(mcpserver.Deps{
				Session:    w.session,
				Bridge:     b,
				Converter:  w.converter,
				Variables:  w.vars,
				Convention: a.cfg.convention(),
			}, callLog)
			return srv.ServeStdio()
		},
	}
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload the document when its file changes")
	cmd.Flags().StringVar(&logPath, "log", "", "append MCP tool calls as JSONL to this file")
	return cmd
}

// watchCommand prints a selection update each time the document changes.
func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch DOCUMENT",
		Short: "Watch a document and print selection updates as it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}
			b := a.newBridge(w, bridge.NewJSONPoster(a.stdout), bridge.Options{})
			wt, err := a.startWatcher(w, b)
			if err != nil {
				return err
			}
			defer wt.Stop()

			b.Enqueue(bridge.Message{Type: bridge.TypeCheckSelection})

			err = b.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
