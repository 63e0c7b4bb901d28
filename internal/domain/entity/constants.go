package entity

// Doctype and report names
const (
	DoctypeWPS        = "WPS"
	DoctypeCompany    = "Company"
	DoctypeDepartment = "Department"

	ReportWPS = "WPS"
)

// CmdGetWPSCSV is the server-side procedure that streams the WPS salary
// information file for one document.
const CmdGetWPSCSV = "teciza.teciza.doctype.wps.wps.get_wps_csv"

// Default keys looked up per user
const (
	DefaultKeyCompany = "Company"
)

// GlobalDefaultsParent is the parent key holding defaults shared by all users
const GlobalDefaultsParent = "__default"

// GuestUser is the session user when no identity is presented
const GuestUser = "Guest"
