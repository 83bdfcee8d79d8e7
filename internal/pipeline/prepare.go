package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/couchcryptid/storm-surge-prep/internal/fort15"
	"github.com/couchcryptid/storm-surge-prep/internal/geometry"
	"github.com/couchcryptid/storm-surge-prep/internal/observability"
)

// RunPreparer implements Preparer over run directories beneath a data root.
type RunPreparer struct {
	dataDir string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPreparer creates a RunPreparer rooted at dataDir.
func NewPreparer(dataDir string, logger *slog.Logger, metrics *observability.Metrics) *RunPreparer {
	return &RunPreparer{
		dataDir: dataDir,
		logger:  logger,
		metrics: metrics,
	}
}

// Prepare rewrites one subdomain run-control file as the request asks and
// reports the outcome.
func (p *RunPreparer) Prepare(_ context.Context, raw domain.RawRequest) (domain.OutputMessage, error) {
	req, err := domain.ParsePrepRequest(raw)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	kind, err := geometry.ParseKind(req.Shape)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	fullDir, err := p.resolveDir(req.FullDir)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	subDir, err := p.resolveDir(req.SubDir)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	full, err := fort15.Scan(fullDir, nil)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("scan full domain: %w", err)
	}

	sub, err := fort15.Subdomain(kind, fullDir, subDir)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("prepare subdomain: %w", err)
	}

	if req.HotStart != nil {
		if err := fort15.SetHotStart(*req.HotStart, subDir); err != nil {
			return domain.OutputMessage{}, fmt.Errorf("set hot start: %w", err)
		}
	}
	if req.HotStartOutput != nil {
		if err := fort15.SetHotStartOutput(req.HotStartOutput.Kind, req.HotStartOutput.IntervalSteps, subDir); err != nil {
			return domain.OutputMessage{}, fmt.Errorf("set hot start output: %w", err)
		}
	}

	res := domain.BuildPrepResult(req, full, sub)
	for ch, trim := range res.Stations {
		p.metrics.StationsTrimmed.WithLabelValues(ch, "kept").Add(float64(trim.Kept))
		p.metrics.StationsTrimmed.WithLabelValues(ch, "dropped").Add(float64(trim.Dropped))
	}

	p.logger.Info("run prepared",
		"run_id", req.RunID,
		"shape", req.Shape,
		"sub_dir", req.SubDir,
		"run_days", res.RunDays,
	)

	return domain.SerializePrepResult(res)
}

// resolveDir joins a request-supplied directory onto the data root,
// rejecting absolute paths and parent traversal.
func (p *RunPreparer) resolveDir(dir string) (string, error) {
	if !filepath.IsLocal(dir) {
		return "", fmt.Errorf("prep request: directory %q escapes the data root", dir)
	}
	return filepath.Join(p.dataDir, dir), nil
}
