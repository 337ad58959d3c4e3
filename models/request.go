package models

type QueryRequest struct {
	Query   string `json:"query" binding:"required"`
	Persona string `json:"persona,omitempty"`
}
