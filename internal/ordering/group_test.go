package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baiirun/backlog/internal/model"
)

func TestFilterFor_NeverAny(t *testing.T) {
	assert.True(t, FilterFor(nil).IsNull())
	assert.False(t, FilterFor(nil).IsAny())

	f := FilterFor(sp("sprint-1"))
	v, ok := f.Value()
	assert.True(t, ok)
	assert.Equal(t, "sprint-1", v)
	assert.False(t, f.IsAny())
}

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		value  *string
		want   bool
	}{
		{"eq hit", Eq("a"), sp("a"), true},
		{"eq miss", Eq("a"), sp("b"), false},
		{"eq vs null", Eq("a"), nil, false},
		{"null hit", IsNull(), nil, true},
		{"null vs value", IsNull(), sp("a"), false},
		{"any value", Any(), sp("a"), true},
		{"any null", Any(), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.value))
		})
	}
}

func TestGroup_KeySeparatesNullFromValue(t *testing.T) {
	// "no sprint, no parent" must not equal "no parent, sprint s1", nor
	// a parent whose ID happens to be the empty string.
	base := Group{Scope: "p"}
	inSprint := Group{Scope: "p", ContainerID: sp("s1")}
	emptyParent := Group{Scope: "p", ParentID: sp("")}

	assert.NotEqual(t, base.Key(), inSprint.Key())
	assert.NotEqual(t, base.Key(), emptyParent.Key())
	assert.Equal(t, base.Key(), Group{Scope: "p"}.Key())
	assert.NotEqual(t, base.Key(), Group{Scope: "q"}.Key())
}

func TestGroup_Contains(t *testing.T) {
	g := Group{Scope: "p", ParentID: sp("ep-1"), ContainerID: sp("s1")}

	in := model.Item{Project: "p", ParentID: sp("ep-1"), ContainerID: sp("s1")}
	otherSprint := model.Item{Project: "p", ParentID: sp("ep-1"), ContainerID: sp("s2")}
	noSprint := model.Item{Project: "p", ParentID: sp("ep-1")}

	assert.True(t, g.Contains(in))
	assert.False(t, g.Contains(otherSprint))
	assert.False(t, g.Contains(noSprint))
	assert.Equal(t, g.Key(), KeyOf(in))
}

func TestGroup_QueryUsesExactFilters(t *testing.T) {
	q := Group{Scope: "p", ContainerID: sp("s1")}.Query()
	assert.Equal(t, "p", q.Scope)
	assert.True(t, q.Parent.IsNull())
	v, ok := q.Container.Value()
	assert.True(t, ok)
	assert.Equal(t, "s1", v)
	assert.False(t, q.Descending)
	assert.Zero(t, q.Limit)
}

func TestGroup_String(t *testing.T) {
	g := Group{Scope: "p", ParentID: sp("ep-1")}
	assert.Equal(t, "p/parent=ep-1/container=null", g.String())
}
