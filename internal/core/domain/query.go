package domain

import "github.com/google/uuid"

// QueryKind identifies which store lookup serves a ticket listing.
type QueryKind uint8

const (
	QueryNone QueryKind = iota
	QueryAll
	QueryByOwner
	QueryByFilter
	QueryByFilterAndOwner
	QueryByFilterAndAssignee
	QueryByNumber
)

func (k QueryKind) String() string {
	switch k {
	case QueryAll:
		return "all"
	case QueryByOwner:
		return "by_owner"
	case QueryByFilter:
		return "by_filter"
	case QueryByFilterAndOwner:
		return "by_filter_and_owner"
	case QueryByFilterAndAssignee:
		return "by_filter_and_assignee"
	case QueryByNumber:
		return "by_number"
	default:
		return "none"
	}
}

// QuerySpec is the resolved shape of a listing: which lookup to run, the
// filters it applies and the user it is scoped to, if any.
type QuerySpec struct {
	Kind    QueryKind
	Filters FilterSet
	ScopeID uuid.UUID
}

// ResolveQuery decides which tickets a caller may see for the given filters.
//
// An exact number lookup wins over everything else and is not scoped by
// role. Technicians see every ticket unless they ask for their assigned
// ones. Customers and admins only see tickets they own. Any other role gets
// an empty result.
func ResolveQuery(role Role, callerID uuid.UUID, filters FilterSet, assignedOnly bool) QuerySpec {
	if filters.HasNumber() {
		return QuerySpec{Kind: QueryByNumber, Filters: FilterSet{Number: filters.Number}}
	}

	triple := filters.TripleOnly()

	switch role {
	case RoleTechnician:
		if assignedOnly {
			return QuerySpec{Kind: QueryByFilterAndAssignee, Filters: triple, ScopeID: callerID}
		}
		if !triple.HasTriple() {
			return QuerySpec{Kind: QueryAll}
		}
		return QuerySpec{Kind: QueryByFilter, Filters: triple}
	case RoleCustomer, RoleAdmin:
		if !triple.HasTriple() {
			return QuerySpec{Kind: QueryByOwner, ScopeID: callerID}
		}
		return QuerySpec{Kind: QueryByFilterAndOwner, Filters: triple, ScopeID: callerID}
	default:
		return QuerySpec{Kind: QueryNone}
	}
}
