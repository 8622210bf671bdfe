package main

import (
	"context"
	"errors"
	"log"
	"time"

	"screen-ascii-lens/src/messages"
	"screen-ascii-lens/src/singleinstance"
)

const snapshotTimeout = 2 * time.Second

var errNothingRendered = errors.New("nothing rendered yet")

// fetchFunc returns the current mosaic text from the event loop.
type fetchFunc func(ctx context.Context) (string, error)

// loopFetcher asks the event loop for a snapshot through post.
func loopFetcher(post func(messages.Message)) fetchFunc {
	return func(ctx context.Context) (string, error) {
		reply := make(chan string, 1)
		post(messages.Snapshot{Reply: reply})

		ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		defer cancel()
		select {
		case text := <-reply:
			if text == "" {
				return "", errNothingRendered
			}
			return text, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// serveSnapshots answers clients until the server closes or ctx ends.
func serveSnapshots(ctx context.Context, srv singleinstance.Server, fetch fetchFunc, copyText func(string) error) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		go answerSnapshot(ctx, conn, fetch, copyText)
	}
}

func answerSnapshot(ctx context.Context, conn singleinstance.Conn, fetch fetchFunc, copyText func(string) error) {
	defer conn.Close()

	text, err := fetch(ctx)
	if err != nil {
		log.Printf("SNAPSHOT: %v", err)
		_ = conn.RespondError(err.Error())
		return
	}
	if conn.Request().ToStdout {
		_ = conn.RespondSuccess(text)
		return
	}
	if err := copyText(text); err != nil {
		log.Printf("SNAPSHOT: clipboard write failed: %v", err)
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondSuccess("")
}
