package service

import (
	"context"
	"quizlive/internal/model"
)

// LivePublisher fans snapshots out to stream subscribers (avoids import cycle)
type LivePublisher interface {
	Publish(live *model.Live)
}

// CompletionNotifier is told once a completed live has been flushed
type CompletionNotifier interface {
	LiveCompleted(ctx context.Context, live *model.Live) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(*model.Live) {}

type nopNotifier struct{}

func (nopNotifier) LiveCompleted(context.Context, *model.Live) error { return nil }
