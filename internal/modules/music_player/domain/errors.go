package domain

import "errors"

var (
	// ErrEmptyQueue is returned when taking an entry from an empty queue.
	ErrEmptyQueue = errors.New("there are no tracks in the queue")

	// ErrIndexOutOfRange is returned when a queue position does not exist.
	ErrIndexOutOfRange = errors.New("queue position out of range")
)
