package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/chat"
	"github.com/worksdev/portal/internal/events"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/workflows"
)

var ThreadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Read and chat in support threads",
}

func init() {
	ThreadsCmd.AddCommand(threadsShowCmd)
	ThreadsCmd.AddCommand(threadsChatCmd)
}

func parseThreadID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id %q", args[0])
	}
	return id, nil
}

func printMessage(out io.Writer, m api.Message) {
	fmt.Fprintf(out, "%s %s: %s\n",
		ui.Muted.Sprint(m.CreatedAt.Local().Format("2006-01-02 15:04")),
		ui.Highlight.Sprint(m.User.Name),
		m.Content)
}

var threadsShowCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Print a thread and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseThreadID(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.RequireLogin(); err != nil {
			return reportError(cmd, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		thread, err := a.API.Thread(ctx, id)
		if err != nil {
			return reportError(cmd, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", ui.Heading.Sprint(thread.Name), ui.Muted.Sprint(api.ThreadStatusName(thread.Status)))
		for _, m := range thread.Messages {
			printMessage(out, m)
		}
		return nil
	},
}

var threadsChatCmd = &cobra.Command{
	Use:   "chat [thread-id]",
	Short: "Chat live; each line typed is sent as a message",
	Long: `Connects to the chat and sends every line read from stdin. Messages
from others are printed as they arrive. Type /quit or press Ctrl-D to leave.

The connection is retried with exponential backoff when it drops.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseThreadID(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		out := cmd.OutOrStdout()
		opened, err := workflows.OpenChat(ctx, a, workflows.OpenChatOptions{
			ThreadID: id,
			OnEvent: func(e chat.Event) {
				switch {
				case e.Message != nil:
					printMessage(out, *e.Message)
				case len(e.Messages) > 0:
					for _, m := range e.Messages {
						printMessage(out, m)
					}
				case e.Error != "":
					cmd.PrintErrln(ui.Error.Sprint("✗") + " " + e.Error)
				}
			},
			OnStatus: func(s chat.Status) {
				Logger.Infof("chat %s", s)
			},
		})
		if err != nil {
			return reportError(cmd, err)
		}
		client := opened.Client
		defer client.Close()

		closed := make(chan struct{})
		var closeOnce sync.Once
		unsubscribe := a.Events.ChatClosed.Subscribe(func(events.ChatClosed) {
			fmt.Fprintln(out, ui.Muted.Sprint("Chat closed"))
			closeOnce.Do(func() { close(closed) })
		})
		defer unsubscribe()

		if opened.Thread != nil {
			fmt.Fprintln(out, ui.Heading.Sprint(opened.Thread.Name))
			for _, m := range opened.Thread.Messages {
				printMessage(out, m)
			}
		}

		done := make(chan error, 1)
		go func() {
			done <- client.Run(ctx)
		}()

		lines := make(chan string)
		go func(lines chan<- string) {
			defer close(lines)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-closed:
					return
				}
			}
		}(lines)

		for {
			select {
			case err := <-done:
				if err == nil || errors.Is(err, context.Canceled) {
					return nil
				}
				return reportError(cmd, err)
			case <-closed:
				if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
					return reportError(cmd, err)
				}
				return nil
			case line, ok := <-lines:
				if !ok {
					lines = nil
					client.Close()
					continue
				}
				if strings.TrimSpace(line) == "/quit" {
					client.Close()
					continue
				}
				if err := client.Send(line); err != nil {
					if msg, ok := formatError(err); ok {
						cmd.PrintErrln(msg)
					} else {
						cmd.PrintErrln(ui.Error.Sprint("✗") + " " + err.Error())
					}
				}
			}
		}
	},
}
