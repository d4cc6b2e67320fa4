package chi

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeInvalidArgument    ErrorCode = "invalid_argument"
	ErrorCodeCursorNotFound     ErrorCode = "cursor_not_found"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeTimeout            ErrorCode = "timeout"
	ErrorCodeCanceled           ErrorCode = "canceled"
	ErrorCodeStorageUnavailable ErrorCode = "storage_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CursorErrorResponse is returned when the resume cursor is not a hit of the job.
type CursorErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	JobID   string    `json:"job_id"`
	After   int64     `json:"after"`
}

// HitResponse is one ranked hit.
type HitResponse struct {
	Name           string  `json:"name"`
	StructureID    int64   `json:"structure_id"`
	PrimaryScore   float64 `json:"primary_score"`
	SecondaryScore float64 `json:"secondary_score"`
	AuxPath        *string `json:"aux_path"`
	ClusterIndex   int     `json:"cluster_index"`
	ChildIndex     int     `json:"child_index"`
}

// PageResponse is one page of hits in ranking order.
type PageResponse struct {
	Items      []HitResponse `json:"items"`
	TotalCount int           `json:"total_count"`
	Limit      int           `json:"limit"`
	NextAfter  *int64        `json:"next_after,omitempty"`
}

// JobResponse summarises a job for result viewers.
type JobResponse struct {
	JobID           string `json:"job_id"`
	TotalCount      int    `json:"total_count"`
	DefaultPageSize int    `json:"default_page_size"`
	MaxPageSize     int    `json:"max_page_size"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetResultsParams are the query parameters of GET /api/results/{jobID}.
type GetResultsParams struct {
	After    *int64 `form:"after" json:"after,omitempty"`
	Limit    *int   `form:"limit" json:"limit,omitempty"`
	PageSize *int   `form:"page_size" json:"page_size,omitempty"`
}
