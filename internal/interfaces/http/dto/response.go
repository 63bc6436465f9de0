package dto

import "time"

// defaultPageSize applies when a list is requested with a non-positive page size
const defaultPageSize = 20

// Response is the envelope every API endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Meta describes the page a list response holds
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// OK wraps data in a success envelope
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Page wraps one page of a list together with its paging metadata
func Page(data any, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int(pages),
		},
	}
}

// Fail builds an error envelope. Domain codes are normalized first.
func Fail(code, message, requestID string) Response {
	return Response{
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now(),
		},
	}
}

// Invalid builds a validation error envelope with per-field details
func Invalid(message, requestID string, details []ValidationDetail) Response {
	resp := Fail(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
