package models

// PageSize is the number of records the backend returns per list page.
const PageSize = 20

// FormListResponse is one page of submitted forms.
type FormListResponse struct {
	Count    Count                 `json:"count"`
	Next     *string               `json:"next"`
	Previous *string               `json:"previous"`
	Results  []SubmittedFormRecord `json:"results"`
}

// TotalPages is ceil(count / PageSize).
func TotalPages(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}

// TotalPages of the list this page belongs to.
func (r FormListResponse) TotalPages() int {
	return TotalPages(int(r.Count))
}
