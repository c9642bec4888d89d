package dto

// CreateDocumentRequest is the payload for creating a document
type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// UpdateDocumentRequest is the payload for partially updating a document
type UpdateDocumentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListDocumentsQuery holds list filters and pagination. When neither page
// parameter is set the full list is returned unpaginated.
type ListDocumentsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Title    string `form:"title"`
	OwnerID  string `form:"owner_id"`
	Expand   string `form:"expand"`
}

// Paginated reports whether pagination was requested.
func (q *ListDocumentsQuery) Paginated() bool {
	return q.Page > 0 || q.PageSize > 0
}
