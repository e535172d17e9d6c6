package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrRootNotFound      = errors.New("root element not found")
	ErrAlreadyStarted    = errors.New("watcher already started")
	ErrOutputUnavailable = errors.New("speech output unavailable")
	ErrEmptyText         = errors.New("empty announcement text")
)
