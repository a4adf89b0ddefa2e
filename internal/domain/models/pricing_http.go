package models

// Requests for pricing HTTP endpoints. Defined in domain for consistency and reuse.

type RecommendRequest struct {
	Product     string             `json:"product"`
	Date        string             `json:"date" validate:"required,datetime=2006-01-02"`
	Cost        *float64           `json:"cost" validate:"omitempty,gt=0"`
	Competitors map[string]float64 `json:"competitors" validate:"omitempty,dive,gt=0"`
	LastPrice   *float64           `json:"last_price" validate:"omitempty,gt=0"`
	Count       int                `json:"count" default:"41" validate:"gte=2,lte=1001"`
	Guardrails  *GuardrailConfig   `json:"guardrails"`
}

type RecommendationQuery struct {
	Product string `query:"product" json:"product"`
	Date    string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type HistoryAppendRequest struct {
	Product     string             `json:"product"`
	Date        string             `json:"date" validate:"required,datetime=2006-01-02"`
	Price       float64            `json:"price" validate:"required,gt=0"`
	Cost        float64            `json:"cost" validate:"required,gt=0"`
	Volume      float64            `json:"volume" validate:"gte=0"`
	Competitors map[string]float64 `json:"competitors" validate:"omitempty,dive,gt=0"`
}

type FeatureRebuildRequest struct {
	Product string `query:"product" json:"product"`
}
