package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/snowflake"
)

// EstateRepository 楼栋/楼层/房间数据访问
type EstateRepository struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

// NewEstateRepository 创建房产仓库
func NewEstateRepository(db *pgxpool.Pool, node *snowflake.Node) *EstateRepository {
	return &EstateRepository{db: db, node: node}
}

// isUniqueViolation Postgres 唯一约束冲突
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateBuilding 创建楼栋
func (r *EstateRepository) CreateBuilding(ctx context.Context, b *model.Building) error {
	b.ID = r.node.Generate().Int64()
	_, err := r.db.Exec(ctx, `
		INSERT INTO buildings (id, company_id, name, address, description, latitude, longitude, floors_count, flats_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.ID, b.CompanyID, b.Name, b.Address, b.Description, b.Latitude, b.Longitude, b.FloorsCount, b.FlatsCount)
	return err
}

// GetBuilding 通过 ID 获取楼栋
func (r *EstateRepository) GetBuilding(ctx context.Context, id int64) (*model.Building, error) {
	b := &model.Building{}
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, name, address, description, latitude, longitude, floors_count, flats_count
		FROM buildings WHERE id = $1
	`, id).Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &b.Description,
		&b.Latitude, &b.Longitude, &b.FloorsCount, &b.FlatsCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBuildingNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListBuildings 楼栋列表，companyID 为 0 时返回全部
func (r *EstateRepository) ListBuildings(ctx context.Context, companyID int64) ([]model.Building, error) {
	query := `
		SELECT id, company_id, name, address, description, latitude, longitude, floors_count, flats_count
		FROM buildings
	`
	var args []any
	if companyID != 0 {
		query += ` WHERE company_id = $1`
		args = append(args, companyID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []model.Building
	for rows.Next() {
		var b model.Building
		err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &b.Description,
			&b.Latitude, &b.Longitude, &b.FloorsCount, &b.FlatsCount)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

// UpdateBuilding 更新楼栋信息
func (r *EstateRepository) UpdateBuilding(ctx context.Context, b *model.Building) error {
	result, err := r.db.Exec(ctx, `
		UPDATE buildings
		SET name = $2, address = $3, description = $4, latitude = $5, longitude = $6,
		    floors_count = $7, flats_count = $8
		WHERE id = $1
	`, b.ID, b.Name, b.Address, b.Description, b.Latitude, b.Longitude, b.FloorsCount, b.FlatsCount)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrBuildingNotFound
	}
	return nil
}

// DeleteBuilding 删除楼栋，级联删除楼层和房间
func (r *EstateRepository) DeleteBuilding(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrBuildingNotFound
	}
	return nil
}

// CreateFloor 创建楼层，(building_id, floor_number) 冲突时返回重复错误
func (r *EstateRepository) CreateFloor(ctx context.Context, f *model.Floor) error {
	f.ID = r.node.Generate().Int64()
	_, err := r.db.Exec(ctx,
		`INSERT INTO floors (id, building_id, floor_number) VALUES ($1, $2, $3)`,
		f.ID, f.BuildingID, f.FloorNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// GetFloor 通过 ID 获取楼层
func (r *EstateRepository) GetFloor(ctx context.Context, id int64) (*model.Floor, error) {
	f := &model.Floor{}
	err := r.db.QueryRow(ctx,
		`SELECT id, building_id, floor_number FROM floors WHERE id = $1`, id,
	).Scan(&f.ID, &f.BuildingID, &f.FloorNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFloorNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListFloors 楼栋的全部楼层，按层号升序
func (r *EstateRepository) ListFloors(ctx context.Context, buildingID int64) ([]model.Floor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, building_id, floor_number
		FROM floors WHERE building_id = $1
		ORDER BY floor_number
	`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var floors []model.Floor
	for rows.Next() {
		var f model.Floor
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.FloorNumber); err != nil {
			return nil, err
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

// DeleteFloor 删除楼层，级联删除房间
func (r *EstateRepository) DeleteFloor(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM floors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrFloorNotFound
	}
	return nil
}

// CreateFlat 创建房间，(floor_id, number) 冲突时返回重复错误
func (r *EstateRepository) CreateFlat(ctx context.Context, f *model.Flat) error {
	f.ID = r.node.Generate().Int64()
	_, err := r.db.Exec(ctx,
		`INSERT INTO flats (id, floor_id, number, area) VALUES ($1, $2, $3, $4)`,
		f.ID, f.FloorID, f.Number, f.Area)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// GetFlat 通过 ID 获取房间
func (r *EstateRepository) GetFlat(ctx context.Context, id int64) (*model.Flat, error) {
	f := &model.Flat{}
	err := r.db.QueryRow(ctx,
		`SELECT id, floor_id, number, area FROM flats WHERE id = $1`, id,
	).Scan(&f.ID, &f.FloorID, &f.Number, &f.Area)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFlatNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListFlats 楼层的全部房间
func (r *EstateRepository) ListFlats(ctx context.Context, floorID int64) ([]model.Flat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, floor_id, number, area
		FROM flats WHERE floor_id = $1
		ORDER BY number
	`, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flats []model.Flat
	for rows.Next() {
		var f model.Flat
		if err := rows.Scan(&f.ID, &f.FloorID, &f.Number, &f.Area); err != nil {
			return nil, err
		}
		flats = append(flats, f)
	}
	return flats, rows.Err()
}

// DeleteFlat 删除房间
func (r *EstateRepository) DeleteFlat(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM flats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrFlatNotFound
	}
	return nil
}

// BuildingOwner 楼栋所属公司
func (r *EstateRepository) BuildingOwner(ctx context.Context, buildingID int64) (int64, error) {
	var companyID int64
	err := r.db.QueryRow(ctx,
		`SELECT company_id FROM buildings WHERE id = $1`, buildingID,
	).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrBuildingNotFound
		}
		return 0, err
	}
	return companyID, nil
}

// FloorOwner 楼层所属公司
func (r *EstateRepository) FloorOwner(ctx context.Context, floorID int64) (int64, error) {
	var companyID int64
	err := r.db.QueryRow(ctx, `
		SELECT b.company_id
		FROM floors f JOIN buildings b ON b.id = f.building_id
		WHERE f.id = $1
	`, floorID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrFloorNotFound
		}
		return 0, err
	}
	return companyID, nil
}
