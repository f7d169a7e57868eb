package grader

import (
	"errors"
	"fmt"

	"github.com/go-ozzo/ozzo-validation/v3"
	"github.com/jmoiron/sqlx"
)

// ProblemConfig describes a single grading problem. Exactly one of
// Database and DatasetPath must be set: either an already-open reference
// database or the path of a dataset script to load one from.
//
// AnswerQuery defines the correct result. VerifyQuery, when set, is run
// after every evaluated query to produce the rows that actually get
// compared; it must be a single statement. ModificationQuery, when set
// alongside VerifyQuery, runs between the evaluated query and the
// verification step. Ordered controls whether row order matters.
type ProblemConfig struct {
	Database    *sqlx.DB
	DatasetPath string

	AnswerQuery       string
	VerifyQuery       string
	ModificationQuery string
	Ordered           bool
}

func (c *ProblemConfig) Validate() error {
	if (c.Database == nil) == (c.DatasetPath == "") {
		return errors.New("exactly one of Database and DatasetPath must be set")
	}
	return validation.ValidateStruct(
		c,
		validation.Field(&c.AnswerQuery, validation.Required),
	)
}

// Problem is an immutable problem definition bound to one reference
// database. The answer result is computed once, at construction, and
// every attempt is graded against that cached copy.
type Problem struct {
	db *sqlx.DB

	answerQuery       string
	verifyQuery       string
	modificationQuery string
	ordered           bool

	answerResult []Row
}

// Attempt is the outcome of grading one submission.
type Attempt struct {
	SubmissionResult []Row
	AnswerResult     []Row
	ErrorMessage     string
	Correct          bool
}

// NewProblem validates the configuration, resolves the reference
// database and computes the answer result. Any failure here means the
// problem itself is misconfigured and is returned to the caller; it is
// never folded into a gradeable attempt outcome.
func NewProblem(cfg ProblemConfig) (*Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := cfg.Database
	if cfg.DatasetPath != "" {
		var err error
		if db, err = CreateDatabase(cfg.DatasetPath); err != nil {
			return nil, err
		}
	}

	p := &Problem{
		db:                db,
		answerQuery:       cfg.AnswerQuery,
		verifyQuery:       cfg.VerifyQuery,
		modificationQuery: cfg.ModificationQuery,
		ordered:           cfg.Ordered,
	}

	answerResult, err := p.queryResult(cfg.AnswerQuery)
	if err != nil {
		return nil, fmt.Errorf("computing answer result: %w", err)
	}
	p.answerResult = answerResult

	return p, nil
}

// AnswerResult returns the cached result of the answer query chain.
func (p *Problem) AnswerResult() []Row {
	return p.answerResult
}

// Attempt grades one submission. The submission may contain several
// statements; they run in sequence against a private sandbox. If any
// step of the chain fails, the attempt carries the error message, no
// submission rows, and a false comparison.
func (p *Problem) Attempt(query string) Attempt {
	submissionResult, err := p.queryResult(query)
	attempt := Attempt{
		SubmissionResult: submissionResult,
		AnswerResult:     p.answerResult,
	}
	if err != nil {
		attempt.ErrorMessage = err.Error()
		return attempt
	}
	attempt.Correct = CompareRows(p.answerResult, submissionResult, p.ordered)
	return attempt
}

// queryResult clones the reference database and runs the full query
// chain inside the clone: the given query, then the optional
// modification query, then the verification query, whose rows replace
// the original result. The sandbox is discarded before returning, so
// nothing the chain does can reach the reference database or any other
// evaluation.
func (p *Problem) queryResult(query string) ([]Row, error) {
	sandbox, err := CloneDatabase(p.db)
	if err != nil {
		return nil, err
	}
	defer sandbox.Close()

	result, err := Execute(sandbox, query, true)
	if err != nil {
		return nil, err
	}
	if p.verifyQuery == "" {
		return result, nil
	}

	if p.modificationQuery != "" {
		if _, err := Execute(sandbox, p.modificationQuery, true); err != nil {
			return nil, err
		}
	}
	return Execute(sandbox, p.verifyQuery, false)
}
