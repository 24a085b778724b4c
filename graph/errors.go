package graph

import "errors"

var (
	ErrEngineClosed   = errors.New("graph engine is closed")
	ErrNoStatement    = errors.New("empty statement")
	ErrUnknownTable   = errors.New("unknown table")
	ErrBadStatement   = errors.New("unsupported statement")
	ErrEmptyQuestion  = errors.New("question is empty")
	ErrQueryLayerOff  = errors.New("query generation is not configured")
	ErrExportNotFound = errors.New("export object not found")
)
