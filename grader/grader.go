package grader

import (
	"path/filepath"

	"github.com/elmanelman/sqlite-grader/config"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Grader wires the grading engine to its runtime dependencies: a logger
// and a directory of dataset scripts. Reference databases are loaded
// lazily by dataset name and cached, so many problems can share one
// read-only reference copy.
type Grader struct {
	logger *zap.Logger

	datasetDir string
	datasets   map[string]*sqlx.DB
}

func NewGrader(cfg config.GraderConfig) (*Grader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := cfg.LoggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Grader{
		logger:     logger,
		datasetDir: cfg.DatasetDir,
		datasets:   map[string]*sqlx.DB{},
	}, nil
}

// Dataset returns the reference database for the named dataset, loading
// it from the configured directory on first use.
func (g *Grader) Dataset(name string) (*sqlx.DB, error) {
	if db, ok := g.datasets[name]; ok {
		return db, nil
	}

	path := filepath.Join(g.datasetDir, name+datasetExtension)
	db, err := CreateDatabase(path)
	if err != nil {
		g.logger.Error(
			"failed to load dataset",
			zap.String("dataset", name),
			zap.String("error_message", err.Error()),
		)
		return nil, err
	}

	g.datasets[name] = db
	g.logger.Info(
		"dataset loaded",
		zap.String("dataset", name),
		zap.String("path", path),
	)
	return db, nil
}

// Datasets lists the dataset names available in the configured directory.
func (g *Grader) Datasets() ([]string, error) {
	return AllDatasets(g.datasetDir)
}

// NewProblem constructs a problem on the named dataset. The Database and
// DatasetPath fields of cfg are ignored; the dataset name decides the
// reference database.
func (g *Grader) NewProblem(dataset string, cfg ProblemConfig) (*Problem, error) {
	db, err := g.Dataset(dataset)
	if err != nil {
		return nil, err
	}

	cfg.Database = db
	cfg.DatasetPath = ""
	p, err := NewProblem(cfg)
	if err != nil {
		g.logger.Error(
			"failed to construct problem",
			zap.String("dataset", dataset),
			zap.String("error_message", err.Error()),
		)
		return nil, err
	}

	g.logger.Info(
		"problem constructed",
		zap.String("dataset", dataset),
		zap.Bool("ordered", cfg.Ordered),
		zap.Int("answer_row_count", len(p.AnswerResult())),
	)
	return p, nil
}

// Grade evaluates a submission against a problem, logging the outcome.
func (g *Grader) Grade(p *Problem, submission string) Attempt {
	attempt := p.Attempt(submission)
	g.logger.Info(
		"submission graded",
		zap.Bool("correct", attempt.Correct),
		zap.String("error_message", attempt.ErrorMessage),
	)
	return attempt
}

// Close releases every cached reference database.
func (g *Grader) Close() error {
	var firstErr error
	for name, db := range g.datasets {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.datasets, name)
	}
	return firstErr
}
