package dto

import "golang-stock-watchlist/internal/entity"

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// AddStockRequest adds a stock to the caller's watchlist. Name is optional.
type AddStockRequest struct {
	Symbol string `json:"symbol"`
	Market string `json:"market"`
	Name   string `json:"name,omitempty"`
}

type TimerRequest struct {
	Time string `json:"time"`
}

type TimerResponse struct {
	Time    string `json:"time"`
	NextRun string `json:"next_run,omitempty"`
}

type ChartResponse struct {
	Symbol string          `json:"symbol"`
	Market string          `json:"market"`
	Points []IntradayPoint `json:"points"`
}

type ReportListResponse struct {
	Reports []entity.AnalysisReport `json:"reports"`
}

// TriggerMessage is the payload published to the manual trigger stream.
type TriggerMessage struct {
	RequestedAt string `json:"requested_at"`
	RequestedBy string `json:"requested_by,omitempty"`
}
