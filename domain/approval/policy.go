package approval

import (
	"sort"

	"reliefops/authority"
	"reliefops/domain"
)

// OnBehalfRule widens the eligible approver set when the submitter acted in
// one of the given roles. The canonical case: a logistics submitter would
// otherwise be judged by the same logistics role that submitted, so an
// elevated role class may approve in its place.
type OnBehalfRule struct {
	SubmitterRoles  authority.Roles `json:"submitterRoles"`
	AdditionalRoles authority.Roles `json:"additionalRoles"`
}

type MethodPolicy struct {
	PrimaryApproverRoles authority.Roles `json:"primaryApproverRoles"`
	OnBehalf             []OnBehalfRule  `json:"onBehalf"`
}

// PolicyDescription is the whole approval policy as data. Today the only
// source is the compiled-in default; a data-defined source can replace it
// without touching the router.
type PolicyDescription struct {
	Methods map[domain.Method]MethodPolicy `json:"methods"`
}

type PolicyEngine struct {
	desc PolicyDescription
}

func NewPolicyEngine(desc PolicyDescription) *PolicyEngine {
	return &PolicyEngine{desc: desc}
}

// DefaultPolicyDescription is the built-in approval policy.
//   - Transfer: logistics managers approve; when the submitter is a
//     logistics role, the director class may approve on their behalf.
//   - Donation: the director class approves, whoever submitted.
//   - Procurement: the director class approves the in-system step only. The
//     executive sign-off that follows happens outside this system and is
//     neither authorized nor verified here.
func DefaultPolicyDescription() PolicyDescription {
	return PolicyDescription{
		Methods: map[domain.Method]MethodPolicy{
			domain.MethodTransfer: {
				PrimaryApproverRoles: authority.Roles{authority.RoleLogisticsManager.ID},
				OnBehalf: []OnBehalfRule{
					{
						SubmitterRoles:  authority.Roles{authority.RoleLogisticsManager.ID},
						AdditionalRoles: authority.DirectorRoles,
					},
				},
			},
			domain.MethodDonation: {
				PrimaryApproverRoles: authority.DirectorRoles,
			},
			domain.MethodProcurement: {
				PrimaryApproverRoles: authority.DirectorRoles,
			},
		},
	}
}

var DefaultPolicyEngine = NewPolicyEngine(DefaultPolicyDescription())

// EligibleApproverRoles lists every role that may approve a request of the
// method submitted by the given role. Unknown methods yield an empty set.
func (e *PolicyEngine) EligibleApproverRoles(method domain.Method, submitterRole string) authority.Roles {
	policy, found := e.desc.Methods[method]
	if !found {
		return authority.Roles{}
	}

	merged := map[string]bool{}
	for _, role := range policy.PrimaryApproverRoles {
		merged[role] = true
	}
	for _, rule := range policy.OnBehalf {
		if rule.SubmitterRoles.HasRole(submitterRole) {
			for _, role := range rule.AdditionalRoles {
				merged[role] = true
			}
		}
	}

	eligible := make(authority.Roles, 0, len(merged))
	for role := range merged {
		eligible = append(eligible, role)
	}
	sort.Strings(eligible)
	return eligible
}

// CanApprove holds when the actor's roles intersect the eligible set.
// Self-approval is an identity concern, rejected by the router regardless of
// what this judgment returns.
func (e *PolicyEngine) CanApprove(method domain.Method, submitterRole string, actorRoles authority.Roles) bool {
	return actorRoles.HasAnyRole(e.EligibleApproverRoles(method, submitterRole))
}
