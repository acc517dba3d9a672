package domain

import (
	"fmt"
	"time"
)

type ServiceID int64

type Status string

const (
	StatusOK      Status = "OK"      // last probe got a response
	StatusFail    Status = "FAIL"    // last probe got no response
	StatusUnknown Status = "UNKNOWN" // not probed yet
)

// ParseStatus maps a persisted value back onto the enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOK, StatusFail, StatusUnknown:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown service status %q", s)
}

type Service struct {
	ID          ServiceID `json:"id"`
	Status      Status    `json:"status"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewService builds a record for creation. The id is left for the store to
// assign and the status always starts UNKNOWN.
func NewService(name, url string, now time.Time) Service {
	now = now.UTC()
	return Service{
		Status:      StatusUnknown,
		Name:        name,
		URL:         url,
		Created:     now,
		LastUpdated: now,
	}
}

// RestoreService rebuilds a record read back from storage with every field as
// persisted.
func RestoreService(id ServiceID, name, url string, status Status, created, lastUpdated time.Time) Service {
	return Service{
		ID:          id,
		Status:      status,
		Name:        name,
		URL:         url,
		Created:     created.UTC(),
		LastUpdated: lastUpdated.UTC(),
	}
}
