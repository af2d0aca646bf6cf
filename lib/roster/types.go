// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"time"
)

// ServerConfig is the game server's public configuration.
type ServerConfig struct {
	Competition CompetitionConfig `json:"competition"`
}

// CompetitionConfig carries the competition timing parameters. Together
// with the current tick they define which records are still within the
// flag validity window.
type CompetitionConfig struct {
	// Start is the competition start time in RFC 3339 form.
	Start string `json:"start"`

	// Tick is the tick length in seconds.
	Tick float64 `json:"tick"`

	// TickStart is the number of the first tick.
	TickStart int `json:"tickStart"`

	// FlagValidity is the number of ticks a flag remains acceptable
	// after being placed.
	FlagValidity int `json:"flagValidity"`

	// FlagFormat is the regular expression flags match.
	FlagFormat string `json:"flagFormat"`
}

// StartTime parses the competition start timestamp.
func (config CompetitionConfig) StartTime() (time.Time, error) {
	start, err := time.Parse(time.RFC3339, config.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("roster: parsing competition start %q: %w", config.Start, err)
	}
	return start, nil
}

// TickDuration returns the tick length as a duration.
func (config CompetitionConfig) TickDuration() time.Duration {
	return time.Duration(config.Tick * float64(time.Second))
}

// Team is one competing team. Name and IPAddress are nil when the game
// server has not published them.
type Team struct {
	Name      *string `json:"name"`
	IPAddress *string `json:"ipAddress"`

	// Services maps service names to this team's per-service
	// connection strings.
	Services map[string]string `json:"services"`
}

// Service is one attackable service.
type Service struct {
	Name    string `json:"name"`
	HasHint bool   `json:"hasHint"`
}

// Exploit is a registered exploit and its deployment manifest.
type Exploit struct {
	Manifest ExploitManifest `json:"manifest"`
	Image    string          `json:"image"`
}

// ExploitManifest describes how an exploit runs and which service it
// targets.
type ExploitManifest struct {
	Name      string           `json:"name"`
	Service   string           `json:"service"`
	Replicas  int              `json:"replicas"`
	Workers   *int             `json:"workers"`
	Enabled   bool             `json:"enabled"`
	Resources ExploitResources `json:"resources"`
}

// ExploitResources are the scheduling limits for an exploit's workers.
type ExploitResources struct {
	CPURequest *string `json:"cpuRequest"`
	MemRequest *string `json:"memRequest"`
	CPULimit   string  `json:"cpuLimit"`
	MemLimit   string  `json:"memLimit"`

	// Timeout is the per-execution timeout in seconds.
	Timeout int `json:"timeout"`
}
