package report

import "github.com/teciza/desk/internal/domain/entity"

// WPSFilters declares the WPS report panel. Defaults are read from env
// when the panel is built, not when it is submitted.
func WPSFilters(env Env) []FilterDescriptor {
	today := env.Today()

	return []FilterDescriptor{
		{
			Fieldname: "company",
			Label:     env.T("Company"),
			Fieldtype: FieldTypeLink,
			Options:   entity.DoctypeCompany,
			Default:   env.UserDefault(entity.DefaultKeyCompany),
			Reqd:      true,
		},
		{
			Fieldname: "from_date",
			Label:     env.T("From Date"),
			Fieldtype: FieldTypeDate,
			Reqd:      true,
			Default:   FormatDate(AddMonths(today, -1)),
		},
		{
			Fieldname: "to_date",
			Label:     env.T("To Date"),
			Fieldtype: FieldTypeDate,
			Reqd:      true,
			Default:   FormatDate(today),
		},
		{
			Fieldname: "department",
			Label:     env.T("Department"),
			Fieldtype: FieldTypeLink,
			Options:   entity.DoctypeDepartment,
		},
		{
			Fieldname: "from_range",
			Label:     env.T("From range"),
			Fieldtype: FieldTypeFloat,
		},
		{
			Fieldname: "to_range",
			Label:     env.T("To range"),
			Fieldtype: FieldTypeFloat,
		},
	}
}

// RegisterWPS adds the WPS report declaration to r
func RegisterWPS(r *Registry) error {
	return r.Register(Definition{
		Name:    entity.ReportWPS,
		Filters: WPSFilters,
	})
}
