package model

// Company 房产公司
type Company struct {
	ID          int64  `json:"id,string" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}
