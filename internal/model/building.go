package model

// Building 楼栋
type Building struct {
	ID          int64   `json:"id,string" db:"id"`
	CompanyID   int64   `json:"company_id,string" db:"company_id"`
	Name        string  `json:"name" db:"name"`
	Address     string  `json:"address" db:"address"`
	Description string  `json:"description" db:"description"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	FloorsCount int     `json:"floors_count" db:"floors_count"`
	FlatsCount  int     `json:"flats_count" db:"flats_count"`
}

// Floor 楼层，(building_id, floor_number) 唯一
// floor_number 从 0 开始（0 = 底层）
type Floor struct {
	ID          int64 `json:"id,string" db:"id"`
	BuildingID  int64 `json:"building_id,string" db:"building_id"`
	FloorNumber int   `json:"floor_number" db:"floor_number"`
}

// Flat 房间，(floor_id, number) 唯一
type Flat struct {
	ID      int64   `json:"id,string" db:"id"`
	FloorID int64   `json:"floor_id,string" db:"floor_id"`
	Number  string  `json:"number" db:"number"`
	Area    float64 `json:"area" db:"area"`
}
