package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/mission"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// handlePlan plans the mission in the request body.
//
// Responses:
//   - 200 with the plan report
//   - 400 when the mission or its overrides are malformed
//   - 413 when the body exceeds MaxBodyBytes
//   - 422 when no feasible plan exists or the search budget ran out
func (s *Server) handlePlan(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, errors.NewMissionInvalidError("request body too large", err))
			return
		}
		s.fail(c, http.StatusBadRequest, errors.NewMissionInvalidError("read request body", err))
		return
	}

	m, err := parseMission(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	report, err := s.plan(c.Request.Context(), m, nil)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseMission(body []byte) (*mission.Mission, error) {
	m, err := mission.Parse(body)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeUnknown {
			return nil, errors.NewMissionInvalidError("request body", err)
		}
		return nil, err
	}
	return m, nil
}

// plan runs m on the shared planner, or on a one-off planner when the
// mission overrides planner settings or rec must observe the run.
func (s *Server) plan(ctx context.Context, m *mission.Mission, rec trace.Recorder) (*ux.PlanReport, error) {
	p := s.planner
	cfg, err := m.PlannerConfig(p.Config())
	if err != nil {
		return nil, err
	}
	if cfg != p.Config() || rec != nil {
		cfg.CacheSize = 0
		opts := []planner.Option{planner.WithLogger(s.logger)}
		if s.metrics != nil {
			opts = append(opts, planner.WithMetrics(s.metrics))
		}
		if rec != nil {
			opts = append(opts, planner.WithRecorder(rec))
		}
		if p, err = planner.New(cfg, opts...); err != nil {
			return nil, err
		}
	}

	res, err := p.Plan(ctx, m.Tree, m.Root, m.Pool)
	if err != nil {
		return nil, err
	}
	return &ux.PlanReport{
		Mission: m.Name,
		Result:  *res,
		Steps:   res.Leaves(m.Tree),
		Pool:    m.Pool,
	}, nil
}

// statusFor maps planning errors onto HTTP status codes
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	switch errors.CodeOf(err) {
	case errors.ErrCodeNoFeasiblePlan, errors.ErrCodeBudgetExceeded:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCircularDependency,
		errors.ErrCodeUnknownNode,
		errors.ErrCodeDuplicateNode,
		errors.ErrCodeInvalidEdge,
		errors.ErrCodeInvalidNode,
		errors.ErrCodeInvalidPool,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeMissionInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if s.metrics != nil {
		s.metrics.RecordError(string(errors.CodeOf(err)), "server")
	}
	if status >= http.StatusInternalServerError {
		s.logger.LogError(c.Request.Context(), "plan request failed", err)
	}
	c.JSON(status, ux.NewErrorReport(err))
}
