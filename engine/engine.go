/*
Package engine orchestrates leave request evaluation.

PURPOSE:
  Sequences the evaluation pipeline for a proposed leave request:

    validate range -> resolve employee -> manager fast-path
    -> balance check -> rule evaluation -> blackout -> frequency
    -> aggregate -> decision + remediation options

  Evaluation is side-effect-free for non-managers: the decision comes back
  advisory ("pending") and the caller commits it through Commit based on
  the user's choice among the options. Only the manager fast-path
  auto-commits.

PIPELINE NOTES:
  - Unknown employee is fatal: an error, not a violation. Everything else
    produces a fully populated decision.
  - All applicable violations are reported together; checks never
    short-circuit each other.
  - The blackout calendar is fetched once per evaluation and treated as a
    static list for that call.

SEE ALSO:
  - decision.go: Decision object, analysis checks, option assembly
  - policy package: The individual rule checks
  - ledger package: Balance reads and request commits
*/
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
)

// BlackoutSource provides the blackout calendar for one evaluation.
// Implemented by the sqlite/memory stores and by static config lists.
type BlackoutSource interface {
	ListBlackouts(ctx context.Context) ([]leave.BlackoutPeriod, error)
}

// StaticBlackouts adapts a fixed period list to BlackoutSource.
type StaticBlackouts []leave.BlackoutPeriod

func (s StaticBlackouts) ListBlackouts(context.Context) ([]leave.BlackoutPeriod, error) {
	return s, nil
}

// Engine is the decision orchestrator.
type Engine struct {
	ledger    *ledger.Ledger
	blackouts BlackoutSource
	log       *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(l *ledger.Ledger, blackouts BlackoutSource, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{ledger: l, blackouts: blackouts, log: log}
}

// EvaluateRequest is the input to one evaluation.
type EvaluateRequest struct {
	EmployeeID  string
	Type        leave.Type
	Start       time.Time
	End         time.Time
	RequestDate time.Time // defaults to today when zero
}

// =============================================================================
// EVALUATION PIPELINE
// =============================================================================

// Evaluate runs the full pipeline and returns an advisory decision.
// Fatal conditions (invalid range, unknown employee, invalid leave type)
// return an error with no decision.
func (e *Engine) Evaluate(ctx context.Context, req EvaluateRequest) (*Decision, error) {
	if !req.Type.Valid() {
		return nil, leave.ErrInvalidLeaveType
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}

	r, err := leave.NewRequest(req.EmployeeID, req.Type, req.Start, req.End, req.RequestDate)
	if err != nil {
		return nil, err
	}
	if r.DaysRequested <= 0 {
		return nil, leave.ErrInvalidRange
	}

	emp, err := e.ledger.Store().GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &leave.NotFoundError{EmployeeID: req.EmployeeID}
	}

	if emp.Manager() {
		return e.managerFastPath(ctx, *emp, r)
	}

	sufficient, bal, err := e.ledger.HasSufficientBalance(ctx, emp.ID, r.DaysRequested, r.Type)
	if err != nil {
		return nil, err
	}

	var violations, warnings []leave.Violation
	if !sufficient {
		violations = append(violations, insufficientBalanceViolation(bal, r.DaysRequested))
	}

	res := policy.Evaluate(policy.Context{
		LeaveType:       r.Type,
		DaysRequested:   r.DaysRequested,
		AnnualQuotaDays: emp.AnnualQuotaDays,
		NoticeDays:      r.NoticeDays(),
	})
	violations = append(violations, res.Violations...)
	warnings = append(warnings, res.Warnings...)

	periods, err := e.blackouts.ListBlackouts(ctx)
	if err != nil {
		return nil, err
	}
	blackoutV := policy.NewCalendar(periods).Conflict(r.Start, r.End, r.DaysRequested)
	if blackoutV != nil {
		violations = append(violations, *blackoutV)
	}

	var frequencyV *leave.Violation
	if r.LongVacation() {
		history, err := e.ledger.LongVacations(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		frequencyV = policy.CheckFrequency(history, r.Start, r.End)
		if frequencyV != nil {
			violations = append(violations, *frequencyV)
		}
	}

	d := &Decision{
		Status:       leave.StatusPending,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		LeaveType:    r.Type,
		Start:        r.Start,
		End:          r.End,
		Days:         r.DaysRequested,
		NoticeDays:   r.NoticeDays(),
		RequestDate:  r.RequestDate,
		Balance:      bal,
		Violations:   violations,
		Warnings:     warnings,
		Eligible:     len(violations) == 0,
	}
	d.Checks = buildChecks(d, sufficient, blackoutV, frequencyV, res, *emp)
	d.Message = buildMessage(d)
	if !d.Eligible {
		d.Options = buildOptions(d, sufficient)
	}

	e.log.Info("request evaluated",
		zap.String("employee_id", emp.ID),
		zap.String("leave_type", string(r.Type)),
		zap.Int("days", r.DaysRequested),
		zap.Bool("eligible", d.Eligible),
		zap.Int("violations", len(violations)),
		zap.Int("warnings", len(warnings)),
	)
	return d, nil
}

// managerFastPath commits the request as approved without rule checks.
// This bypass is business policy: managers self-approve. The balance
// snapshot is refreshed after the commit for display.
func (e *Engine) managerFastPath(ctx context.Context, emp leave.Employee, r leave.Request) (*Decision, error) {
	r.Status = leave.StatusApproved
	recorded, err := e.ledger.Record(ctx, r)
	if err != nil {
		return nil, err
	}

	bal, err := e.ledger.GetBalance(ctx, emp.ID, r.Type)
	if err != nil {
		return nil, err
	}

	d := &Decision{
		Status:        leave.StatusApproved,
		EmployeeID:    emp.ID,
		EmployeeName:  emp.Name,
		LeaveType:     r.Type,
		Start:         r.Start,
		End:           r.End,
		Days:          r.DaysRequested,
		NoticeDays:    r.NoticeDays(),
		RequestDate:   r.RequestDate,
		Balance:       bal,
		Eligible:      true,
		AutoCommitted: true,
		RequestID:     recorded.ID,
	}
	d.Message = managerMessage(d)

	e.log.Info("manager request auto-approved",
		zap.String("employee_id", emp.ID),
		zap.String("request_id", recorded.ID),
		zap.Int("days", r.DaysRequested),
	)
	return d, nil
}

// =============================================================================
// COMMIT
// =============================================================================

// CommitRequest carries the caller's choice after reviewing a decision.
type CommitRequest struct {
	EmployeeID  string
	Type        leave.Type
	Start       time.Time
	End         time.Time
	RequestDate time.Time
	Approve     bool
}

// Commit records a reviewed request. Approvals consume balance; denials
// record history only.
func (e *Engine) Commit(ctx context.Context, req CommitRequest) (leave.Request, error) {
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}
	r, err := leave.NewRequest(req.EmployeeID, req.Type, req.Start, req.End, req.RequestDate)
	if err != nil {
		return leave.Request{}, err
	}
	if req.Approve {
		r.Status = leave.StatusApproved
	} else {
		r.Status = leave.StatusDenied
	}

	recorded, err := e.ledger.Record(ctx, r)
	if err != nil {
		return leave.Request{}, err
	}

	e.log.Info("request committed",
		zap.String("employee_id", recorded.EmployeeID),
		zap.String("request_id", recorded.ID),
		zap.String("status", string(recorded.Status)),
	)
	return recorded, nil
}
