package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/snowflake"
)

// CompanyRepository 公司数据访问
type CompanyRepository struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

// NewCompanyRepository 创建公司仓库
func NewCompanyRepository(db *pgxpool.Pool, node *snowflake.Node) *CompanyRepository {
	return &CompanyRepository{db: db, node: node}
}

// Create 创建公司
func (r *CompanyRepository) Create(ctx context.Context, company *model.Company) error {
	company.ID = r.node.Generate().Int64()
	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, name, description) VALUES ($1, $2, $3)`,
		company.ID, company.Name, company.Description)
	return err
}

// GetByID 通过 ID 获取公司
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	company := &model.Company{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description FROM companies WHERE id = $1`, id,
	).Scan(&company.ID, &company.Name, &company.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// List 公司列表
func (r *CompanyRepository) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Update 更新公司信息
func (r *CompanyRepository) Update(ctx context.Context, company *model.Company) error {
	result, err := r.db.Exec(ctx,
		`UPDATE companies SET name = $2, description = $3 WHERE id = $1`,
		company.ID, company.Name, company.Description)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}
