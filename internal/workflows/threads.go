package workflows

import (
	"context"
	"fmt"

	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/chat"
)

// OpenChatOptions configures the chat workflow.
type OpenChatOptions struct {
	// ThreadID loads the thread history before connecting. Zero skips it.
	ThreadID int64

	// MaxAttempts bounds consecutive reconnects. Zero uses the default.
	MaxAttempts int

	OnEvent  func(chat.Event)
	OnStatus func(chat.Status)
}

// OpenChatResult holds an unstarted chat connection.
type OpenChatResult struct {
	// Thread is nil when no ThreadID was given.
	Thread *api.Thread

	// Client is ready to Run; the caller owns it and must Close it.
	Client *chat.Client
}

// OpenChat prepares a chat connection authenticated with the stored access
// token. ChatClosed is published on the app's hub when the client closes.
func OpenChat(ctx context.Context, a *app.App, opts OpenChatOptions) (*OpenChatResult, error) {
	token, err := a.API.AccessToken()
	if err != nil {
		return nil, err
	}

	result := &OpenChatResult{}
	if opts.ThreadID != 0 {
		thread, err := a.API.Thread(ctx, opts.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch thread %d: %w", opts.ThreadID, err)
		}
		result.Thread = thread
	}

	result.Client = chat.New(chat.Options{
		URL:         chat.URL(a.API.BaseURL()),
		Token:       token,
		MaxAttempts: opts.MaxAttempts,
		Logger:      a.Logger,
		Hub:         a.Events,
		OnEvent:     opts.OnEvent,
		OnStatus:    opts.OnStatus,
	})
	return result, nil
}
