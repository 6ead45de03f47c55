package crm

// PageParams are the decoded list query parameters. Zero means "use the default".
type PageParams struct {
	Page  int `mapstructure:"page"`
	Limit int `mapstructure:"limit"`
}

// Meta describes the page that was returned.
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Page is the list response envelope.
type Page[T any] struct {
	Data []T   `json:"data"`
	Meta Meta `json:"meta"`
}

// Resolve applies defaults and returns the effective page, limit and row offset.
func (p PageParams) Resolve(defaultLimit int) (page, limit, offset int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}
