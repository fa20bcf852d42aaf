package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service probes the store and the two model providers. The assistant
// can limp along with a dead provider (requests fail with an apology),
// so provider failures degrade rather than kill readiness.
type Service struct {
	db        DBPinger
	providers []namedChecker
}

type namedChecker struct {
	name    string
	checker ProviderChecker
}

// New creates a Service. Either provider checker can be nil, in which
// case that check is skipped entirely.
func New(db DBPinger, embedder, chatModel ProviderChecker) *Service {
	s := &Service{db: db}
	if embedder != nil {
		s.providers = append(s.providers, namedChecker{"embedding", embedder})
	}
	if chatModel != nil {
		s.providers = append(s.providers, namedChecker{"chat_model", chatModel})
	}
	return s
}

// Check runs all wired health checks and aggregates the outcome.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"database": toResult(s.db.Ping(ctx)),
	}
	for _, p := range s.providers {
		checks[p.name] = toResult(p.checker.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

func toResult(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
