package backend

import "github.com/rise-and-shine/entityrepo/fixtures"

// Fixture kinds, loaded in this order.
const (
	KindAPIKey       = "api_key"
	KindSubscription = "subscription"
	KindPlan         = "plan"
	KindEvent        = "event"
	KindPage         = "page"
	KindAudit        = "audit"
	KindMonitoring   = "monitoring"
)

// Fixtures returns a registry creating every entity kind through the set's repositories.
func (s *Set) Fixtures() *fixtures.Registry {
	r := fixtures.NewRegistry()
	fixtures.Register(r, KindAPIKey, s.APIKeys.Create)
	fixtures.Register(r, KindSubscription, s.Subscriptions.Create)
	fixtures.Register(r, KindPlan, s.Plans.Create)
	fixtures.Register(r, KindEvent, s.Events.Create)
	fixtures.Register(r, KindPage, s.Pages.Create)
	fixtures.Register(r, KindAudit, s.Audits.Create)
	fixtures.Register(r, KindMonitoring, s.Monitoring.Create)
	return r
}
