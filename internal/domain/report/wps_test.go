package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) Today() time.Time { return time.Time(c) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWPSFilters_Layout(t *testing.T) {
	filters := WPSFilters(Env{Clock: fixedClock(day(2024, time.March, 15))})

	require.Len(t, filters, 6)
	assert.Equal(t,
		[]string{"company", "from_date", "to_date", "department", "from_range", "to_range"},
		Fieldnames(filters))
	assert.NoError(t, Validate(filters))
}

func TestWPSFilters_Required(t *testing.T) {
	filters := WPSFilters(Env{Clock: fixedClock(day(2024, time.March, 15))})

	want := map[string]bool{
		"company":    true,
		"from_date":  true,
		"to_date":    true,
		"department": false,
		"from_range": false,
		"to_range":   false,
	}
	for _, f := range filters {
		assert.Equal(t, want[f.Fieldname], f.Reqd, f.Fieldname)
	}
}

func TestWPSFilters_Types(t *testing.T) {
	filters := WPSFilters(Env{})

	byName := make(map[string]FilterDescriptor)
	for _, f := range filters {
		byName[f.Fieldname] = f
	}

	assert.Equal(t, FieldTypeLink, byName["company"].Fieldtype)
	assert.Equal(t, "Company", byName["company"].Options)
	assert.Equal(t, FieldTypeDate, byName["from_date"].Fieldtype)
	assert.Equal(t, FieldTypeDate, byName["to_date"].Fieldtype)
	assert.Equal(t, FieldTypeLink, byName["department"].Fieldtype)
	assert.Equal(t, "Department", byName["department"].Options)
	assert.Equal(t, FieldTypeFloat, byName["from_range"].Fieldtype)
	assert.Equal(t, FieldTypeFloat, byName["to_range"].Fieldtype)
}

func TestWPSFilters_Defaults(t *testing.T) {
	env := Env{
		Clock:    fixedClock(day(2024, time.March, 15)),
		Defaults: MapDefaults{"Company": "Teciza Trading W.L.L."},
	}
	filters := WPSFilters(env)

	assert.Equal(t, "Teciza Trading W.L.L.", filters[0].Default)
	assert.Equal(t, "2024-02-15", filters[1].Default)
	assert.Equal(t, "2024-03-15", filters[2].Default)
	assert.Nil(t, filters[3].Default)
	assert.Nil(t, filters[4].Default)
	assert.Nil(t, filters[5].Default)
}

func TestWPSFilters_NoCompanyDefault(t *testing.T) {
	filters := WPSFilters(Env{Clock: fixedClock(day(2024, time.March, 15)), Defaults: MapDefaults{}})
	assert.Nil(t, filters[0].Default)
}

func TestWPSFilters_DefaultsFollowClock(t *testing.T) {
	clock := fixedClock(day(2024, time.March, 31))
	filters := WPSFilters(Env{Clock: clock})

	assert.Equal(t, "2024-02-29", filters[1].Default)
	assert.Equal(t, "2024-03-31", filters[2].Default)
}

type labelTranslator map[string]string

func (l labelTranslator) Translate(msg string) string {
	if v, ok := l[msg]; ok {
		return v
	}
	return msg
}

func TestWPSFilters_LocalizedLabels(t *testing.T) {
	filters := WPSFilters(Env{Translator: labelTranslator{"Company": "الشركة"}})

	assert.Equal(t, "الشركة", filters[0].Label)
	assert.Equal(t, "From Date", filters[1].Label)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"mid month back", day(2024, time.March, 15), -1, day(2024, time.February, 15)},
		{"clamp leap february", day(2024, time.March, 31), -1, day(2024, time.February, 29)},
		{"clamp february", day(2023, time.March, 30), -1, day(2023, time.February, 28)},
		{"across year", day(2024, time.January, 10), -1, day(2023, time.December, 10)},
		{"forward", day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{"zero", day(2024, time.May, 5), 0, day(2024, time.May, 5)},
		{"twelve back", day(2024, time.February, 29), -12, day(2023, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.in, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters []FilterDescriptor
		wantErr error
	}{
		{"empty list", nil, nil},
		{"empty fieldname", []FilterDescriptor{{Fieldtype: FieldTypeData}}, ErrEmptyFieldname},
		{"duplicate", []FilterDescriptor{
			{Fieldname: "a", Fieldtype: FieldTypeData},
			{Fieldname: "a", Fieldtype: FieldTypeData},
		}, ErrDuplicateFieldname},
		{"bad type", []FilterDescriptor{{Fieldname: "a", Fieldtype: "Blob"}}, ErrInvalidFieldType},
		{"link without options", []FilterDescriptor{{Fieldname: "a", Fieldtype: FieldTypeLink}}, ErrMissingOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.filters)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterWPS(r))

	err := RegisterWPS(r)
	assert.ErrorIs(t, err, ErrReportExists)

	assert.ErrorIs(t, r.Register(Definition{Name: "Empty"}), ErrInvalidReport)

	def, ok := r.Lookup("WPS")
	require.True(t, ok)
	assert.Len(t, def.Filters(Env{}), 6)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"WPS"}, r.Names())
}
