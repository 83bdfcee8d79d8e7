package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RawRequest is an unprocessed message from the request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// HotStartOutput selects checkpoint generation for a prepared run:
// Kind is the NHSTAR file type and IntervalSteps the NHSINC write
// frequency in model time steps.
type HotStartOutput struct {
	Kind          int `json:"kind"`
	IntervalSteps int `json:"interval_steps"`
}

// PrepRequest asks for one subdomain run directory to be prepared from a
// full-domain template. Directories are resolved against the service data
// root, and Shape names the geometry file kind ("circle" or "ellipse")
// expected next to the subdomain's run-control file. The optional fields
// apply the corresponding run-control mutations after the rewrite.
type PrepRequest struct {
	RunID          string          `json:"run_id"`
	FullDir        string          `json:"full_dir"`
	SubDir         string          `json:"sub_dir"`
	Shape          string          `json:"shape"`
	HotStart       *int            `json:"hot_start,omitempty"`
	HotStartOutput *HotStartOutput `json:"hot_start_output,omitempty"`
}

// ParsePrepRequest deserializes a raw message into a PrepRequest. A missing
// run ID falls back to the message key, then to a digest of the payload so
// that replays of the same request carry the same ID.
func ParsePrepRequest(raw RawRequest) (PrepRequest, error) {
	var req PrepRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return PrepRequest{}, fmt.Errorf("parse prep request: %w", err)
	}
	if req.RunID == "" {
		req.RunID = string(raw.Key)
	}
	if req.RunID == "" {
		req.RunID = deriveRunID(raw.Value)
	}
	if err := req.Validate(); err != nil {
		return PrepRequest{}, err
	}
	return req, nil
}

// Validate checks the fields every preparation needs. Shape spelling is left
// to the geometry loader, which owns the kind names.
func (r PrepRequest) Validate() error {
	if r.FullDir == "" {
		return errors.New("prep request: full_dir is required")
	}
	if r.SubDir == "" {
		return errors.New("prep request: sub_dir is required")
	}
	if r.Shape == "" {
		return errors.New("prep request: shape is required")
	}
	if r.HotStartOutput != nil && r.HotStartOutput.IntervalSteps < 1 {
		return errors.New("prep request: hot_start_output.interval_steps must be positive")
	}
	return nil
}

// deriveRunID produces a deterministic ID from the request payload, so a
// reprocessed message yields the same result key downstream.
func deriveRunID(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "run-" + hex.EncodeToString(hash[:8])
}

// StationTrim reports how one station list fared against the subdomain
// geometry.
type StationTrim struct {
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// PrepResult is the serialized outcome of one preparation, destined for the
// result topic.
type PrepResult struct {
	RunID          string                 `json:"run_id"`
	Shape          string                 `json:"shape"`
	SubDir         string                 `json:"sub_dir"`
	RunDays        float64                `json:"run_days"`
	Stations       map[string]StationTrim `json:"stations"`
	Observations   map[string]int         `json:"observations"`
	HotStart       *int                   `json:"hot_start,omitempty"`
	HotStartOutput *HotStartOutput        `json:"hot_start_output,omitempty"`
	PreparedAt     time.Time              `json:"prepared_at"`
}

// OutputMessage is the serialized form destined for the result topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializePrepResult renders a result for publication, keyed by run ID so
// consumers can compact per run.
func SerializePrepResult(res PrepResult) (OutputMessage, error) {
	value, err := json.Marshal(res)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize prep result: %w", err)
	}
	return OutputMessage{
		Key:   []byte(res.RunID),
		Value: value,
		Headers: map[string]string{
			"shape":       res.Shape,
			"prepared_at": res.PreparedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

// BuildPrepResult assembles the result event for a finished preparation.
// full is the scan of the template document, sub the scan-equivalent view
// produced by the rewrite; station counts are compared per channel to report
// how many stations the geometry kept and dropped.
func BuildPrepResult(req PrepRequest, full, sub *Document) PrepResult {
	res := PrepResult{
		RunID:          req.RunID,
		Shape:          req.Shape,
		SubDir:         req.SubDir,
		RunDays:        sub.Timing.Duration,
		Stations:       make(map[string]StationTrim),
		Observations:   make(map[string]int),
		HotStart:       req.HotStart,
		HotStartOutput: req.HotStartOutput,
		PreparedAt:     clock.Now(),
	}
	for ch, kept := range sub.Stations {
		trim := StationTrim{Kept: len(kept)}
		if full != nil {
			if orig, ok := full.Stations[ch]; ok && len(orig) >= len(kept) {
				trim.Dropped = len(orig) - len(kept)
			}
		}
		res.Stations[string(ch)] = trim
	}
	for ch, rec := range sub.Recording {
		res.Observations[string(ch)] = rec.Observations
	}
	return res
}
