package server

import (
	"time"

	uuid "github.com/nu7hatch/gouuid"
)

// Error is the body of every failed response. ErrorId ties it to the log entry.
type Error struct {
	Time    time.Time `json:"time"`
	Path    string    `json:"path"`
	Message string    `json:"error"`
	ErrorId string    `json:"errorId"`
}

func NewError(path, message string) Error {
	errorId := ""
	if u, err := uuid.NewV4(); err == nil {
		errorId = u.String()
	}

	return Error{
		Time:    time.Now().UTC(),
		Path:    path,
		Message: message,
		ErrorId: errorId,
	}
}
