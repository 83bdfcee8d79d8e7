package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrepRequest(t *testing.T) {
	t.Run("complete request", func(t *testing.T) {
		data := []byte(`{"run_id":"run-42","full_dir":"fulldomain","sub_dir":"sub01","shape":"circle","hot_start":67,"hot_start_output":{"kind":1,"interval_steps":3600}}`)
		req, err := ParsePrepRequest(RawRequest{Value: data})

		require.NoError(t, err)
		assert.Equal(t, "run-42", req.RunID)
		assert.Equal(t, "fulldomain", req.FullDir)
		assert.Equal(t, "sub01", req.SubDir)
		assert.Equal(t, "circle", req.Shape)
		require.NotNil(t, req.HotStart)
		assert.Equal(t, 67, *req.HotStart)
		require.NotNil(t, req.HotStartOutput)
		assert.Equal(t, 1, req.HotStartOutput.Kind)
		assert.Equal(t, 3600, req.HotStartOutput.IntervalSteps)
	})

	t.Run("run ID falls back to message key", func(t *testing.T) {
		data := []byte(`{"full_dir":"full","sub_dir":"sub","shape":"ellipse"}`)
		req, err := ParsePrepRequest(RawRequest{Key: []byte("key-7"), Value: data})

		require.NoError(t, err)
		assert.Equal(t, "key-7", req.RunID)
	})

	t.Run("run ID derived from payload", func(t *testing.T) {
		data := []byte(`{"full_dir":"full","sub_dir":"sub","shape":"circle"}`)

		req1, err := ParsePrepRequest(RawRequest{Value: data})
		require.NoError(t, err)
		req2, err := ParsePrepRequest(RawRequest{Value: data})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(req1.RunID, "run-"))
		assert.Equal(t, req1.RunID, req2.RunID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParsePrepRequest(RawRequest{Value: []byte("{not json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse prep request")
	})

	t.Run("missing directories", func(t *testing.T) {
		_, err := ParsePrepRequest(RawRequest{Value: []byte(`{"shape":"circle"}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "full_dir")
	})
}

func TestPrepRequestValidate(t *testing.T) {
	valid := PrepRequest{RunID: "r", FullDir: "full", SubDir: "sub", Shape: "circle"}

	tests := []struct {
		name    string
		mutate  func(*PrepRequest)
		wantErr string
	}{
		{"valid", func(*PrepRequest) {}, ""},
		{"missing full_dir", func(r *PrepRequest) { r.FullDir = "" }, "full_dir"},
		{"missing sub_dir", func(r *PrepRequest) { r.SubDir = "" }, "sub_dir"},
		{"missing shape", func(r *PrepRequest) { r.Shape = "" }, "shape"},
		{
			"zero hot start interval",
			func(r *PrepRequest) { r.HotStartOutput = &HotStartOutput{Kind: 1} },
			"interval_steps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildPrepResult(t *testing.T) {
	fixedTime := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	t.Cleanup(func() { SetClock(nil) })

	full := NewDocument()
	full.Stations[ElevStations] = []Location{{X: 1}, {X: 2}, {X: 3}}
	full.Stations[VelStations] = []Location{{X: 1}, {X: 2}}

	sub := NewDocument()
	sub.Timing = Timing{Step: 10, Start: 0, Duration: 9.95}
	sub.Stations[ElevStations] = []Location{{X: 2}}
	sub.Stations[VelStations] = []Location{}
	sub.Recording[ElevStations] = Recording{Stations: 1, Observations: 288, Columns: 1}
	sub.Recording[VelStations] = Recording{Stations: 0, Observations: 288, Columns: 2}

	hot := 67
	req := PrepRequest{RunID: "run-9", Shape: "circle", SubDir: "sub01", HotStart: &hot}

	res := BuildPrepResult(req, full, sub)

	assert.Equal(t, "run-9", res.RunID)
	assert.Equal(t, "circle", res.Shape)
	assert.Equal(t, "sub01", res.SubDir)
	assert.Equal(t, 9.95, res.RunDays)
	assert.Equal(t, StationTrim{Kept: 1, Dropped: 2}, res.Stations["fort61"])
	assert.Equal(t, StationTrim{Kept: 0, Dropped: 2}, res.Stations["fort62"])
	assert.Equal(t, 288, res.Observations["fort61"])
	assert.Equal(t, &hot, res.HotStart)
	assert.Equal(t, fixedTime, res.PreparedAt)

	t.Run("nil full document", func(t *testing.T) {
		res := BuildPrepResult(req, nil, sub)
		assert.Equal(t, StationTrim{Kept: 1, Dropped: 0}, res.Stations["fort61"])
	})
}

func TestSerializePrepResult(t *testing.T) {
	res := PrepResult{
		RunID:   "run-11",
		Shape:   "ellipse",
		SubDir:  "sub02",
		RunDays: 4.975,
		Stations: map[string]StationTrim{
			"fort61": {Kept: 3, Dropped: 1},
		},
		Observations: map[string]int{"fort61": 144},
		PreparedAt:   time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
	}

	out, err := SerializePrepResult(res)
	require.NoError(t, err)
	assert.Equal(t, []byte("run-11"), out.Key)
	assert.Equal(t, "ellipse", out.Headers["shape"])
	assert.Equal(t, "2026-05-02T08:00:00Z", out.Headers["prepared_at"])

	var roundtrip PrepResult
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	if diff := cmp.Diff(res, roundtrip); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}
