package models

import (
	"fmt"
	"strings"
	"time"
)

// Accuracy is the requested positioning accuracy.
type Accuracy int

const (
	AccuracyHigh Accuracy = iota
	AccuracyBalanced
	AccuracyLow
	AccuracyPassive
)

var accuracyNames = map[Accuracy]string{
	AccuracyHigh:     "high",
	AccuracyBalanced: "balanced",
	AccuracyLow:      "low",
	AccuracyPassive:  "passive",
}

func (a Accuracy) String() string {
	if name, ok := accuracyNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAccuracy parses a case-insensitive accuracy name.
func ParseAccuracy(s string) (Accuracy, error) {
	for a, name := range accuracyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown accuracy %q", s)
}

// LocationRequest configures a location request or subscription.
type LocationRequest struct {
	// MinInterval is the desired cadence of updates.
	MinInterval time.Duration
	// FastestInterval is the shortest gap at which updates are delivered.
	FastestInterval time.Duration
	Accuracy        Accuracy
}
