package domain

// FileType describes one uploadable dataset. Slug is the backend's upload
// path segment, StatusKey the field name in UploadStatusMap. The set is
// closed; the required flag is operator guidance, not enforced client-side.
type FileType struct {
	Slug        string `json:"slug"`
	StatusKey   string `json:"status_key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

var fileTypes = []FileType{
	{
		Slug:        "transactions",
		StatusKey:   "transactions",
		Label:       "Transaction Data",
		Description: "Upload customer transaction records in Excel format.",
		Required:    true,
	},
	{
		Slug:        "watchlist",
		StatusKey:   "watchlist",
		Label:       "Suspicious Persons / Organizations Watchlist",
		Description: "Upload the sanctions and watchlist data for screening against transactions.",
		Required:    true,
	},
	{
		Slug:        "high-risk-countries",
		StatusKey:   "high_risk_countries",
		Label:       "High-Risk Countries",
		Description: "Upload the list of high-risk countries with their risk classifications.",
		Required:    true,
	},
	{
		Slug:        "work-instructions",
		StatusKey:   "work_instructions",
		Label:       "Work Instructions",
		Description: "Upload any existing work instructions associated with customers.",
		Required:    false,
	},
}

// FileTypes returns the registered upload slots in display order.
func FileTypes() []FileType {
	out := make([]FileType, len(fileTypes))
	copy(out, fileTypes)
	return out
}

// FileTypeBySlug resolves an upload path segment to its file type.
func FileTypeBySlug(slug string) (FileType, bool) {
	for _, ft := range fileTypes {
		if ft.Slug == slug {
			return ft, true
		}
	}
	return FileType{}, false
}

// EmptyUploadStatus returns a status map with every dataset absent.
func EmptyUploadStatus() UploadStatusMap {
	m := make(UploadStatusMap, len(fileTypes))
	for _, ft := range fileTypes {
		m[ft.StatusKey] = false
	}
	return m
}
