package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

func strp(s string) *string { return &s }

func TestNormalizeFilters(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		status   string
		priority string
		number   int
		want     domain.FilterSet
	}{
		{
			name: "all uninformed",
			title: "uninformed", status: "uninformed", priority: "uninformed",
			want: domain.FilterSet{},
		},
		{
			name: "blank tokens",
			title: "", status: "   ", priority: "\t",
			want: domain.FilterSet{},
		},
		{
			name: "each field independent",
			title: "uninformed", status: "New", priority: "uninformed",
			want: domain.FilterSet{Status: strp("New")},
		},
		{
			name: "title only",
			title: "printer", status: "uninformed", priority: "",
			want: domain.FilterSet{Title: strp("printer")},
		},
		{
			name: "full triple",
			title: "vpn", status: "Assigned", priority: "High",
			want: domain.FilterSet{Title: strp("vpn"), Status: strp("Assigned"), Priority: strp("High")},
		},
		{
			name: "zero number is no filter",
			title: "uninformed", status: "uninformed", priority: "uninformed", number: 0,
			want: domain.FilterSet{},
		},
		{
			name: "negative number is no filter",
			number: -3,
			want:   domain.FilterSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NormalizeFilters(tt.title, tt.status, tt.priority, tt.number)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeFilters_Number(t *testing.T) {
	got := domain.NormalizeFilters("vpn", "New", "High", 1234)
	require.NotNil(t, got.Number)
	assert.Equal(t, 1234, *got.Number)
	assert.True(t, got.HasNumber())
	assert.True(t, got.HasTriple())
	assert.False(t, got.TripleOnly().HasNumber())
}

func TestResolveQuery(t *testing.T) {
	caller := uuid.New()
	empty := domain.FilterSet{}
	byStatus := domain.FilterSet{Status: strp("New")}
	num := 77
	byNumber := domain.FilterSet{Title: strp("vpn"), Number: &num}

	tests := []struct {
		name         string
		role         domain.Role
		filters      domain.FilterSet
		assignedOnly bool
		wantKind     domain.QueryKind
		wantScope    uuid.UUID
	}{
		{"technician unfiltered sees all", domain.RoleTechnician, empty, false, domain.QueryAll, uuid.Nil},
		{"technician filtered", domain.RoleTechnician, byStatus, false, domain.QueryByFilter, uuid.Nil},
		{"technician assigned only", domain.RoleTechnician, empty, true, domain.QueryByFilterAndAssignee, caller},
		{"technician assigned and filtered", domain.RoleTechnician, byStatus, true, domain.QueryByFilterAndAssignee, caller},
		{"customer unfiltered", domain.RoleCustomer, empty, false, domain.QueryByOwner, caller},
		{"customer filtered", domain.RoleCustomer, byStatus, false, domain.QueryByFilterAndOwner, caller},
		{"customer ignores assigned flag", domain.RoleCustomer, byStatus, true, domain.QueryByFilterAndOwner, caller},
		{"admin unfiltered lists own", domain.RoleAdmin, empty, false, domain.QueryByOwner, caller},
		{"admin filtered", domain.RoleAdmin, byStatus, false, domain.QueryByFilterAndOwner, caller},
		{"number wins for customer", domain.RoleCustomer, byNumber, false, domain.QueryByNumber, uuid.Nil},
		{"number wins for technician", domain.RoleTechnician, byNumber, true, domain.QueryByNumber, uuid.Nil},
		{"unknown role sees nothing", domain.RoleUnknown, byStatus, false, domain.QueryNone, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := domain.ResolveQuery(tt.role, caller, tt.filters, tt.assignedOnly)
			assert.Equal(t, tt.wantKind, spec.Kind)
			assert.Equal(t, tt.wantScope, spec.ScopeID)
		})
	}
}

func TestResolveQuery_NumberDropsTriple(t *testing.T) {
	num := 77
	spec := domain.ResolveQuery(domain.RoleCustomer, uuid.New(), domain.FilterSet{Title: strp("vpn"), Number: &num}, false)

	require.NotNil(t, spec.Filters.Number)
	assert.Equal(t, 77, *spec.Filters.Number)
	assert.False(t, spec.Filters.HasTriple())
}

func TestResolveQuery_TripleCarried(t *testing.T) {
	filters := domain.FilterSet{Title: strp("vpn"), Priority: strp("High")}
	spec := domain.ResolveQuery(domain.RoleTechnician, uuid.New(), filters, false)

	assert.Equal(t, filters, spec.Filters)
	assert.Equal(t, "by_filter", spec.Kind.String())
}
